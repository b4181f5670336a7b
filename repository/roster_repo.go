package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
)

type RosterRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewRosterRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *RosterRepository {
	return &RosterRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// ListForDate returns every roster row recorded for the crews on workDate,
// present or not.
func (r *RosterRepository) ListForDate(ctx context.Context, orgID, workDate string, crewIDs []string) ([]*models.RosterEntry, error) {
	if len(crewIDs) == 0 {
		return nil, nil
	}

	var entries []*models.RosterEntry
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(RosterEntriesTable),
		PartitionKey:   "workDate",
		PartitionValue: workDate,
		Filters: []models.AttributeFilter{
			{Name: "orgID", Values: []string{orgID}},
			{Name: "crewID", Values: crewIDs},
		},
	}, &entries)
	if err != nil {
		r.logger.Errorf("Failed to read roster for %s: %v", workDate, err)
		return nil, storageError("failed to read roster", err)
	}

	r.logger.Infof("Found %d roster rows for %s", len(entries), workDate)
	return entries, nil
}
