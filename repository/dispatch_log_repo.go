package repository

import (
	"context"
	"errors"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
)

type DispatchLogRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewDispatchLogRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *DispatchLogRepository {
	return &DispatchLogRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// ListForDate returns the log rows of the company's day. The table key allows
// at most one; callers treat anything else as corrupt.
func (r *DispatchLogRepository) ListForDate(ctx context.Context, orgID, logDate string) ([]*models.DispatchLogEntry, error) {
	var entries []*models.DispatchLogEntry
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(DispatchLogsTable),
		PartitionKey:   "orgID",
		PartitionValue: orgID,
		SortKey:        "logDate",
		SortEquals:     logDate,
	}, &entries)
	if err != nil {
		r.logger.Errorf("Failed to read dispatch log for %s: %v", logDate, err)
		return nil, storageError("failed to read dispatch log", err)
	}
	return entries, nil
}

// Create writes the day's log entry unless one already exists.
func (r *DispatchLogRepository) Create(ctx context.Context, entry *models.DispatchLogEntry) (*models.DispatchLogEntry, error) {
	r.logger.Infof("Marking %s dispatched for %s", entry.LogDate, entry.OrgID)

	if entry.LogID == "" {
		entry.LogID = utils.GenerateUUID()
	}

	err := r.db.PutItemIfAbsent(ctx, r.config.TableName(DispatchLogsTable), "orgID", entry)
	if errors.Is(err, dal.ErrConditionFailed) {
		return nil, models.NewConflictError("day " + entry.LogDate + " is already dispatched")
	}
	if err != nil {
		r.logger.Errorf("Failed to write dispatch log: %v", err)
		return nil, storageError("failed to write dispatch log", err)
	}

	r.logger.Infof("Dispatch log written: %s", entry.LogID)
	return entry, nil
}
