package services

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DispatchAggregator assembles the dispatch board for a date range.
//
// Reads run in three phases. Phase 1 reads jobs, technicians, crews and the
// day's dispatch log in parallel; a pushed crew filter makes the jobs read
// wait for the crews. Phase 2 needs the job and crew identities
// from phase 1 and reads photos, the day's roster and customers in parallel.
// Phase 3 reads permanent crew membership for crews without roster rows.
// Jobs and technicians are required; every other source degrades to empty.
// A degraded board is returned but never cached.
type DispatchAggregator struct {
	jobs      repository.JobRepositoryInterface
	techs     repository.TechnicianRepositoryInterface
	crews     repository.CrewRepositoryInterface
	roster    repository.RosterRepositoryInterface
	logs      repository.DispatchLogRepositoryInterface
	photos    repository.PhotoRepositoryInterface
	customers repository.CustomerRepositoryInterface
	resolver  *RosterResolver
	cache     *dal.ResponseCache
	logger    logger.Logger

	location         *time.Location
	now              func() time.Time
	photoConcurrency int
}

func NewDispatchAggregator(repos repository.RepositoryContainerInterface, cache *dal.ResponseCache, log logger.Logger, cfg *models.Config) *DispatchAggregator {
	concurrency := cfg.PhotoReadConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &DispatchAggregator{
		jobs:             repos.GetJobRepository(),
		techs:            repos.GetTechnicianRepository(),
		crews:            repos.GetCrewRepository(),
		roster:           repos.GetRosterRepository(),
		logs:             repos.GetDispatchLogRepository(),
		photos:           repos.GetPhotoRepository(),
		customers:        repos.GetCustomerRepository(),
		resolver:         NewRosterResolver(repos.GetCrewRepository(), log),
		cache:            cache,
		logger:           log,
		location:         utils.LoadLocation(cfg.Timezone),
		now:              time.Now,
		photoConcurrency: concurrency,
	}
}

// WithClock replaces the time source used to decide what today is.
func (a *DispatchAggregator) WithClock(now func() time.Time) *DispatchAggregator {
	a.now = now
	return a
}

// phaseOne holds the results of the independent reads.
type phaseOne struct {
	jobs     []*models.Job
	techs    []*models.Technician
	crews    []*models.Crew
	logs     []*models.DispatchLogEntry
	degraded atomic.Bool
}

// phaseTwo holds the reads keyed by phase one identities.
type phaseTwo struct {
	photos    map[string][]models.Photo
	roster    []*models.RosterEntry
	customers map[string]*models.Customer
	degraded  atomic.Bool
}

func (a *DispatchAggregator) Aggregate(ctx context.Context, orgID string, q models.DispatchQuery) (*models.DispatchResponse, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	today := utils.TodayIn(a.now(), a.location)
	day := q.ReferenceDate(today)
	cacheKey := q.Key() + "|today=" + today

	if cached := a.cache.Get(ctx, orgID, cacheKey); cached != nil {
		a.logger.Debugf("Serving cached board for %s", orgID)
		return cached, nil
	}

	log := logger.With(a.logger, map[string]interface{}{"org_id": orgID, "day": day})

	p1, err := a.readPhaseOne(ctx, log, orgID, day, q)
	if err != nil {
		return nil, err
	}

	jobs := keepTechnicians(p1.jobs, q.TechnicianIDs)
	jobs = keepCrews(jobs, p1.crews, q.CrewIDs)

	crewIDs := make([]string, 0, len(p1.crews))
	for _, c := range p1.crews {
		crewIDs = append(crewIDs, c.CrewID)
	}

	p2 := a.readPhaseTwo(ctx, log, orgID, day, jobs, crewIDs)

	membership := a.resolver.Resolve(ctx, orgID, day, today, crewIDs, p2.roster)

	joiner := newJobJoiner(p1.techs, p1.crews, p2.customers, p2.photos)
	rows := make([]models.DispatchJob, 0, len(jobs))
	for _, job := range jobs {
		row := joiner.join(job)
		if matchesSearch(&row, q.Search) {
			rows = append(rows, row)
		}
	}
	sortJobs(rows)

	status, err := EvaluateDispatchStatus(p1.logs, rows)
	if err != nil {
		log.Errorf("Dispatch log for %s is ambiguous: %v", day, err)
		return nil, err
	}

	techs := make([]models.DispatchTechnician, 0, len(p1.techs))
	for _, t := range p1.techs {
		techs = append(techs, models.NewDispatchTechnician(t))
	}

	resp := &models.DispatchResponse{
		Jobs:           rows,
		Technicians:    techs,
		Crews:          synthesizeCrews(p1.crews, p1.techs, membership, rows, day, joiner),
		Stats:          computeStats(rows),
		DispatchStatus: status,
	}

	if p1.degraded.Load() || p2.degraded.Load() {
		log.Warnf("Board assembled from degraded sources, not caching it")
	} else {
		a.cache.Set(ctx, orgID, cacheKey, resp)
	}
	log.Infof("Board assembled: %d jobs, %d technicians, %d crews", len(rows), len(techs), len(resp.Crews))
	return resp, nil
}

func (a *DispatchAggregator) readPhaseOne(ctx context.Context, log logger.Logger, orgID, day string, q models.DispatchQuery) (*phaseOne, error) {
	out := &phaseOne{}
	g, gctx := errgroup.WithContext(ctx)

	filter := models.JobFilter{
		OrgID:    orgID,
		FromDate: q.StartDate,
		ToDate:   q.EndDate,
		Statuses: q.Statuses,
	}
	pushCrews := crewFilterPushable(q.CrewIDs)
	crewsRead := make(chan struct{})

	g.Go(func() error {
		if pushCrews {
			// Jobs may carry either crew identity, so the pushed filter needs
			// the display identities of the requested crews.
			select {
			case <-crewsRead:
			case <-gctx.Done():
				return gctx.Err()
			}
			filter.CrewIDs = withDisplayIDs(q.CrewIDs, out.crews)
		}
		jobs, err := a.jobs.ListJobsInRange(gctx, filter)
		if err != nil {
			return models.NewUpstreamError("failed to read jobs", err)
		}
		out.jobs = jobs
		return nil
	})
	g.Go(func() error {
		techs, err := a.techs.ListActive(gctx, orgID)
		if err != nil {
			return models.NewUpstreamError("failed to read technicians", err)
		}
		out.techs = techs
		return nil
	})
	g.Go(func() error {
		defer close(crewsRead)
		crews, err := a.crews.ListActive(gctx, orgID)
		if err != nil {
			log.Warnf("Crews unavailable, continuing without crews: %v", err)
			out.degraded.Store(true)
			return nil
		}
		out.crews = crews
		return nil
	})
	g.Go(func() error {
		entries, err := a.logs.ListForDate(gctx, orgID, day)
		if err != nil {
			log.Warnf("Dispatch log unavailable, reporting the day as not dispatched: %v", err)
			out.degraded.Store(true)
			return nil
		}
		out.logs = entries
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Board read failed: %v", err)
		return nil, err
	}
	return out, nil
}

func (a *DispatchAggregator) readPhaseTwo(ctx context.Context, log logger.Logger, orgID, day string, jobs []*models.Job, crewIDs []string) *phaseTwo {
	out := &phaseTwo{photos: make(map[string][]models.Photo, len(jobs))}
	var g errgroup.Group

	g.Go(func() error {
		out.photos = a.readPhotos(ctx, log, jobs, &out.degraded)
		return nil
	})
	g.Go(func() error {
		rows, err := a.roster.ListForDate(ctx, orgID, day, crewIDs)
		if err != nil {
			log.Warnf("Roster unavailable, falling back to permanent membership: %v", err)
			out.degraded.Store(true)
			return nil
		}
		out.roster = rows
		return nil
	})
	g.Go(func() error {
		ids := make([]string, 0, len(jobs))
		for _, job := range jobs {
			ids = append(ids, job.CustomerID)
		}
		customers, err := a.customers.GetCustomers(ctx, orgID, ids)
		if err != nil {
			log.Warnf("Customers unavailable, rows will carry no customer details: %v", err)
			out.degraded.Store(true)
			return nil
		}
		out.customers = customers
		return nil
	})

	// every phase two read degrades instead of failing
	_ = g.Wait()
	return out
}

func (a *DispatchAggregator) readPhotos(ctx context.Context, log logger.Logger, jobs []*models.Job, degraded *atomic.Bool) map[string][]models.Photo {
	photos := make(map[string][]models.Photo, len(jobs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(a.photoConcurrency)
	for _, job := range jobs {
		jobID := job.JobID
		g.Go(func() error {
			list, err := a.photos.ListForJob(ctx, jobID)
			if err != nil {
				log.Warnf("Photos unavailable for job %s: %v", jobID, err)
				degraded.Store(true)
				return nil
			}
			mu.Lock()
			photos[jobID] = list
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return photos
}

// crewFilterPushable reports whether every requested crew is named by its
// storage identity, so the filter can run in the job read.
func crewFilterPushable(crewIDs []string) bool {
	if len(crewIDs) == 0 {
		return false
	}
	for _, id := range crewIDs {
		if !repository.IsCrewStorageID(id) {
			return false
		}
	}
	return true
}

// withDisplayIDs extends the requested storage identities with the display
// identities of the matching crews.
func withDisplayIDs(crewIDs []string, crews []*models.Crew) []string {
	out := append([]string(nil), crewIDs...)
	seen := stringSet(crewIDs)
	for _, c := range crews {
		if _, wanted := seen[c.CrewID]; !wanted {
			continue
		}
		display := c.DisplayID()
		if _, dup := seen[display]; dup || display == "" {
			continue
		}
		seen[display] = struct{}{}
		out = append(out, display)
	}
	return out
}
