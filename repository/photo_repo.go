package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
)

type PhotoRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewPhotoRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *PhotoRepository {
	return &PhotoRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *PhotoRepository) ListForJob(ctx context.Context, jobID string) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(PhotosTable),
		PartitionKey:   "jobID",
		PartitionValue: jobID,
	}, &photos)
	if err != nil {
		r.logger.Errorf("Failed to read photos for job %s: %v", jobID, err)
		return nil, storageError("failed to read photos", err)
	}
	return photos, nil
}
