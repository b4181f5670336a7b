package repository

import (
	"context"
	"errors"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
)

// JobsByDateIndex is the GSI of the jobs table keyed by company and scheduled date.
const JobsByDateIndex = "orgID-scheduledDate-index"

type JobRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewJobRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *JobRepository {
	return &JobRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// ListJobsInRange reads a company's jobs scheduled between FromDate and ToDate,
// both inclusive. Status and crew filters are evaluated by DynamoDB.
func (r *JobRepository) ListJobsInRange(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	if filter.OrgID == "" {
		return nil, errors.New("organization ID is required")
	}

	r.logger.Infof("Reading jobs for %s from %q to %q", filter.OrgID, filter.FromDate, filter.ToDate)

	query := models.RangeQuery{
		TableName:      r.config.TableName(JobsTable),
		IndexName:      JobsByDateIndex,
		PartitionKey:   "orgID",
		PartitionValue: filter.OrgID,
		SortKey:        models.AttrScheduledDate,
		SortFrom:       filter.FromDate,
		SortTo:         filter.ToDate,
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query.Filters = append(query.Filters, models.AttributeFilter{Name: models.AttrJobStatus, Values: statuses})
	}
	if len(filter.CrewIDs) > 0 {
		query.Filters = append(query.Filters, models.AttributeFilter{Name: models.AttrAssignedCrewID, Values: filter.CrewIDs})
	}

	var jobs []*models.Job
	if err := r.db.Query(ctx, query, &jobs); err != nil {
		r.logger.Errorf("Failed to read jobs: %v", err)
		return nil, storageError("failed to read jobs", err)
	}

	r.logger.Infof("Found %d jobs", len(jobs))
	return jobs, nil
}

// GetJob returns the job or a NotFound error.
func (r *JobRepository) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	if jobID == "" {
		return nil, models.NewValidationError("jobId", "jobId is required")
	}

	job := models.Job{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.config.TableName(JobsTable),
		KeyName:   "jobID",
		KeyValue:  jobID,
		KeyType:   models.StringType,
	}, &job)
	if err != nil {
		r.logger.Errorf("Failed to get job %s: %v", jobID, err)
		return nil, storageError("failed to get job", err)
	}

	if job.JobID == "" {
		return nil, models.NewNotFoundError("job not found")
	}
	return &job, nil
}

// UpdateJobFields writes the given persistence fields (nil removes the
// attribute) and returns the updated job.
func (r *JobRepository) UpdateJobFields(ctx context.Context, jobID string, fields map[string]interface{}) (*models.Job, error) {
	r.logger.Infof("Updating job %s fields: %d", jobID, len(fields))

	updated := models.Job{}
	err := r.db.UpdateItem(ctx, models.QueryConfig{
		TableName: r.config.TableName(JobsTable),
		KeyName:   "jobID",
		KeyValue:  jobID,
		KeyType:   models.StringType,
	}, fields, &updated)
	if errors.Is(err, dal.ErrConditionFailed) {
		return nil, models.NewNotFoundError("job not found")
	}
	if err != nil {
		r.logger.Errorf("Failed to update job %s: %v", jobID, err)
		return nil, storageError("failed to update job", err)
	}

	r.logger.Infof("Job updated successfully: %s", jobID)
	return &updated, nil
}
