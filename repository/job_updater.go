package repository

import (
	"context"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"time"
)

// JobUpdater is the job-update routine behind PATCH /dispatch. It checks that
// the caller's company owns the job, keeps status consistent with the
// assignment fields and stamps lifecycle timestamps before writing.
type JobUpdater struct {
	jobs   JobRepositoryInterface
	logs   DispatchLogRepositoryInterface
	logger logger.Logger
	now    func() time.Time
}

func NewJobUpdater(jobs JobRepositoryInterface, logs DispatchLogRepositoryInterface, log logger.Logger) *JobUpdater {
	return &JobUpdater{
		jobs:   jobs,
		logs:   logs,
		logger: log,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (u *JobUpdater) WithClock(now func() time.Time) *JobUpdater {
	u.now = now
	return u
}

func (u *JobUpdater) Apply(ctx context.Context, claims *models.JWTClaims, jobID string, updates *models.JobUpdates) (*models.Job, error) {
	if claims == nil || claims.OrgID == "" {
		return nil, models.NewAuthError(models.ErrNotAuthenticated, "authentication required")
	}

	job, err := u.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OrgID != claims.OrgID {
		u.logger.Warnf("User %s denied update of job %s owned by another organization", claims.UserID, jobID)
		return nil, models.NewAuthError(models.ErrNotAuthorized, "job belongs to another organization")
	}

	fields := updates.ToPersistence()
	now := u.now().UTC()

	status := job.JobStatus
	if updates.Status != nil {
		status = *updates.Status
	} else if updates.TouchesAssignment() {
		hasTech := job.HasTechnician()
		if updates.AssignedTo.Set {
			hasTech = !updates.AssignedTo.IsClear()
		}
		hasCrew := job.HasCrew()
		if updates.AssignedCrewID.Set {
			hasCrew = !updates.AssignedCrewID.IsClear()
		}
		status = models.ApplyAssignmentTransition(job.JobStatus, hasTech, hasCrew)
		if status != job.JobStatus {
			fields[models.AttrJobStatus] = string(status)
		}
	}

	statusChanged := status != job.JobStatus
	if statusChanged {
		switch status {
		case models.JobStatusInProgress:
			fields[models.AttrJobStartedAt] = now
		case models.JobStatusCompleted:
			fields[models.AttrJobEndedAt] = now
		}
	}

	replaced := statusChanged || updates.TouchesAssignment() || updates.ScheduledDate != nil || updates.ScheduledTime.Set
	if replaced {
		date := job.ScheduledDate
		if updates.ScheduledDate != nil {
			date = *updates.ScheduledDate
		}
		if u.dayDispatched(ctx, claims.OrgID, date) {
			fields[models.AttrDispatchedAt] = now
		}
	}

	fields[models.AttrUpdatedAt] = now
	fields[models.AttrUpdatedBy] = claims.UserID

	return u.jobs.UpdateJobFields(ctx, jobID, fields)
}

// dayDispatched reports whether the company's day already has a log entry.
// A failed read is logged and treated as not dispatched.
func (u *JobUpdater) dayDispatched(ctx context.Context, orgID, date string) bool {
	if date == "" {
		return false
	}
	entries, err := u.logs.ListForDate(ctx, orgID, date)
	if err != nil {
		u.logger.Warnf("Could not read dispatch log for %s: %v", date, err)
		return false
	}
	return len(entries) > 0
}
