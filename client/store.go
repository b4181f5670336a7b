package client

import (
	"context"
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
)

// fetchAttempts is the total number of tries per board fetch.
const fetchAttempts = 3

// ErrUnknownJob is returned by a mutation naming a job that is not on the board.
var ErrUnknownJob = errors.New("job is not on the board")

// Snapshot is one immutable state of the board as seen by the client.
type Snapshot struct {
	Version        uint64
	Query          models.DispatchQuery
	Jobs           []models.DispatchJob
	Technicians    []models.DispatchTechnician
	Crews          []models.DispatchCrew
	Stats          models.DispatchStats
	DispatchStatus models.DispatchStatus
	IsLoading      bool
	Error          error
}

// StoreOptions tunes fetch retries and polling.
type StoreOptions struct {
	// RetryBaseInterval is the delay before the second attempt; the third
	// waits twice as long.
	RetryBaseInterval time.Duration
	// PollInterval re-runs the current query periodically. Zero disables it.
	PollInterval time.Duration
}

// ClientDispatchStore keeps the latest board snapshot for one query at a time
// and applies dispatcher edits optimistically.
type ClientDispatchStore struct {
	api     DispatchAPI
	logger  logger.Logger
	options StoreOptions

	ctx    context.Context
	stop   context.CancelFunc
	poller *cron.Cron
	wg     sync.WaitGroup

	mu          sync.Mutex
	snapshot    Snapshot
	querySet    bool
	hasData     bool
	generation  uint64
	cancelFetch context.CancelFunc

	notifyMu       sync.Mutex
	published      uint64
	subscribers    map[int]func(Snapshot)
	nextSubscriber int
}

func NewClientDispatchStore(api DispatchAPI, options StoreOptions, log logger.Logger) *ClientDispatchStore {
	ctx, stop := context.WithCancel(context.Background())
	return &ClientDispatchStore{
		api:         api,
		logger:      log,
		options:     options,
		ctx:         ctx,
		stop:        stop,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (s *ClientDispatchStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers fn for every new snapshot and returns its cancel func.
// Snapshots are delivered in version order; fn must not block for long.
func (s *ClientDispatchStore) Subscribe(fn func(Snapshot)) func() {
	s.notifyMu.Lock()
	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = fn
	s.notifyMu.Unlock()

	return func() {
		s.notifyMu.Lock()
		delete(s.subscribers, id)
		s.notifyMu.Unlock()
	}
}

// SetQuery makes q the effective query. A query equal by value to the current
// one is a no-op; anything else cancels the in-flight fetch and starts anew.
func (s *ClientDispatchStore) SetQuery(q models.DispatchQuery) {
	s.mu.Lock()
	if s.querySet && s.snapshot.Query.Equal(q) {
		s.mu.Unlock()
		return
	}
	s.querySet = true
	s.snapshot.Query = q
	snap := s.startFetchLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Refresh refetches the current query, superseding any in-flight fetch.
func (s *ClientDispatchStore) Refresh() {
	s.mu.Lock()
	if !s.querySet {
		s.mu.Unlock()
		return
	}
	snap := s.startFetchLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Start begins polling the current query when a poll interval is configured.
func (s *ClientDispatchStore) Start() {
	if s.options.PollInterval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller != nil {
		return
	}
	s.poller = cron.New()
	s.poller.Schedule(cron.Every(s.options.PollInterval), cron.FuncJob(s.poll))
	s.poller.Start()
	s.logger.Infof("Polling dispatch board every %s", s.options.PollInterval)
}

// Close stops polling, cancels the in-flight fetch and waits for background work.
func (s *ClientDispatchStore) Close() {
	s.mu.Lock()
	if s.poller != nil {
		s.poller.Stop()
		s.poller = nil
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
}

// poll refetches unless a fetch is already outstanding.
func (s *ClientDispatchStore) poll() {
	s.mu.Lock()
	if !s.querySet || s.snapshot.IsLoading {
		s.mu.Unlock()
		return
	}
	snap := s.startFetchLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// startFetchLocked supersedes the current fetch. Caller holds s.mu.
func (s *ClientDispatchStore) startFetchLocked() Snapshot {
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	q := s.snapshot.Query
	s.wg.Add(1)
	go s.fetch(ctx, gen, q)

	s.snapshot.IsLoading = true
	return s.bumpLocked()
}

func (s *ClientDispatchStore) fetch(ctx context.Context, gen uint64, q models.DispatchQuery) {
	defer s.wg.Done()

	var (
		board *models.DispatchResponse
		err   error
	)
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			delay := s.options.RetryBaseInterval * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		board, err = s.api.FetchBoard(ctx, q)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		s.logger.Warnf("Dispatch board fetch attempt %d/%d failed: %v", attempt+1, fetchAttempts, err)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.cancelFetch = nil
	s.snapshot.IsLoading = false
	if err != nil {
		s.snapshot.Error = err
		if !s.hasData {
			s.snapshot.Jobs = nil
			s.snapshot.Technicians = nil
			s.snapshot.Crews = nil
			s.snapshot.Stats = models.DispatchStats{}
			s.snapshot.DispatchStatus = models.DispatchStatus{}
		}
	} else {
		s.hasData = true
		s.snapshot.Error = nil
		s.snapshot.Jobs = board.Jobs
		s.snapshot.Technicians = board.Technicians
		s.snapshot.Crews = board.Crews
		s.snapshot.Stats = board.Stats
		s.snapshot.DispatchStatus = board.DispatchStatus
	}
	snap := s.bumpLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// bumpLocked versions the current state. Caller holds s.mu.
func (s *ClientDispatchStore) bumpLocked() Snapshot {
	s.snapshot.Version++
	return s.snapshot
}

func (s *ClientDispatchStore) publish(snap Snapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snap.Version <= s.published {
		return
	}
	s.published = snap.Version
	for _, fn := range s.subscribers {
		fn(snap)
	}
}

// SetStatus changes a job's status.
func (s *ClientDispatchStore) SetStatus(jobID string, status models.JobStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return s.mutate(jobID, &models.JobUpdates{Status: &status}, func(job *models.DispatchJob) {
		job.Status = status
	})
}

// AssignTechnician assigns a technician by display id; "" unassigns.
func (s *ClientDispatchStore) AssignTechnician(jobID, technicianID string) error {
	updates := &models.JobUpdates{AssignedTo: models.Null()}
	if technicianID != "" {
		updates.AssignedTo = models.Some(technicianID)
	}

	return s.mutate(jobID, updates, func(job *models.DispatchJob) {
		if technicianID == "" {
			job.AssignedTechnicianID = nil
			job.TechnicianName = nil
		} else {
			id := technicianID
			job.AssignedTechnicianID = &id
			job.TechnicianName = s.technicianNameLocked(technicianID)
		}
		job.Status = models.ApplyAssignmentTransition(job.Status, job.AssignedTechnicianID != nil, job.AssignedCrewID != nil)
	})
}

// AssignCrew assigns a crew by id; "" unassigns.
func (s *ClientDispatchStore) AssignCrew(jobID, crewID string) error {
	updates := &models.JobUpdates{AssignedCrewID: models.Null()}
	if crewID != "" {
		updates.AssignedCrewID = models.Some(crewID)
	}

	return s.mutate(jobID, updates, func(job *models.DispatchJob) {
		if crewID == "" {
			job.AssignedCrewID = nil
			job.CrewName = nil
		} else {
			id := crewID
			job.AssignedCrewID = &id
			job.CrewName = s.crewNameLocked(crewID)
		}
		job.Status = models.ApplyAssignmentTransition(job.Status, job.AssignedTechnicianID != nil, job.AssignedCrewID != nil)
	})
}

// Reschedule moves a job. An empty date keeps the current day; an unset
// timeOfDay keeps the current time and a null one clears it.
func (s *ClientDispatchStore) Reschedule(jobID, date string, timeOfDay models.OptionalString) error {
	if date == "" && !timeOfDay.Set {
		return fmt.Errorf("reschedule needs a date or a time")
	}
	if date != "" && !utils.IsValidDate(date) {
		return fmt.Errorf("invalid date %q", date)
	}
	if timeOfDay.Set && !timeOfDay.IsClear() && !utils.IsValidTimeOfDay(*timeOfDay.Value) {
		return fmt.Errorf("invalid time %q", *timeOfDay.Value)
	}

	updates := &models.JobUpdates{ScheduledTime: timeOfDay}
	if date != "" {
		updates.ScheduledDate = &date
	}

	return s.mutate(jobID, updates, func(job *models.DispatchJob) {
		if date != "" {
			job.ScheduledDate = date
		}
		if timeOfDay.Set {
			if timeOfDay.IsClear() {
				job.ScheduledTime = nil
			} else {
				t := *timeOfDay.Value
				job.ScheduledTime = &t
			}
		}
	})
}

// mutate patches a copy of the job into a new snapshot, then sends the update
// in the background. A failed update triggers a full refetch.
func (s *ClientDispatchStore) mutate(jobID string, updates *models.JobUpdates, patch func(*models.DispatchJob)) error {
	s.mu.Lock()
	idx := -1
	for i := range s.snapshot.Jobs {
		if s.snapshot.Jobs[i].ID == jobID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}

	jobs := make([]models.DispatchJob, len(s.snapshot.Jobs))
	copy(jobs, s.snapshot.Jobs)
	patch(&jobs[idx])

	var stats models.DispatchStats
	for _, j := range jobs {
		stats.Add(j.Status)
	}
	s.snapshot.Jobs = jobs
	s.snapshot.Stats = stats
	snap := s.bumpLocked()
	s.wg.Add(1)
	s.mu.Unlock()

	s.publish(snap)

	go s.send(&models.JobUpdateRequest{JobID: jobID, Updates: updates})
	return nil
}

func (s *ClientDispatchStore) send(req *models.JobUpdateRequest) {
	defer s.wg.Done()

	if _, err := s.api.UpdateJob(s.ctx, req); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Warnf("Update of job %s failed, refetching board: %v", req.JobID, err)
		s.Refresh()
	}
}

func (s *ClientDispatchStore) technicianNameLocked(id string) *string {
	for _, t := range s.snapshot.Technicians {
		if t.DisplayID == id || t.ID == id {
			name := t.Name
			return &name
		}
	}
	return nil
}

func (s *ClientDispatchStore) crewNameLocked(id string) *string {
	for _, c := range s.snapshot.Crews {
		if c.DisplayID == id || c.ID == id {
			name := c.Name
			return &name
		}
	}
	return nil
}
