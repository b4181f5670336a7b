package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"sort"
)

// OrgIndex is the company GSI shared by the technicians, crews and crew member tables.
const OrgIndex = "orgID-index"

type TechnicianRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewTechnicianRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *TechnicianRepository {
	return &TechnicianRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// ListActive returns the company's active technicians ordered by name.
func (r *TechnicianRepository) ListActive(ctx context.Context, orgID string) ([]*models.Technician, error) {
	var techs []*models.Technician
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(TechniciansTable),
		IndexName:      OrgIndex,
		PartitionKey:   "orgID",
		PartitionValue: orgID,
		BoolFilters:    []models.BoolFilter{{Name: "isActive", Value: true}},
	}, &techs)
	if err != nil {
		r.logger.Errorf("Failed to read technicians: %v", err)
		return nil, storageError("failed to read technicians", err)
	}

	sort.SliceStable(techs, func(i, j int) bool {
		return techs[i].FullName() < techs[j].FullName()
	})

	r.logger.Infof("Found %d active technicians", len(techs))
	return techs, nil
}
