package worker

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"time"
)

// Service wraps the provisioning worker for main.
type Service struct {
	worker *Worker
	logger logger.Logger
}

// NewService creates the worker service on its own DynamoDB client.
func NewService(ctx context.Context, cfg *models.Config, log logger.Logger) (*Service, error) {
	dbClient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewServiceWithAdmin(ctx, dbClient, DefaultWorkerConfig(cfg), log)
}

// NewServiceWithAdmin creates the worker service over an existing table admin.
func NewServiceWithAdmin(ctx context.Context, db models.TableAdmin, workerConfig *models.WorkerConfig, log logger.Logger) (*Service, error) {
	w, err := NewWorker(ctx, db, workerConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create infrastructure worker: %w", err)
	}
	log.Debugf("Worker configuration: %s", utils.PrintPrettyJSON(workerConfig))
	return &Service{worker: w, logger: log}, nil
}

// StartInBackground starts the infrastructure worker in the background
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting infrastructure worker service in background")
	return s.worker.Start()
}

// Stop stops the infrastructure worker service
func (s *Service) Stop() {
	s.logger.Info("Stopping infrastructure worker service")
	s.worker.Stop()
}

// GetStatus returns the latest provisioning result
func (s *Service) GetStatus() *models.ExecutionResult {
	return s.worker.Status()
}

// IsSetupCompleted reports whether the latest run succeeded
func (s *Service) IsSetupCompleted() bool {
	status := s.worker.Status()
	return status != nil && status.Success
}

// GetHealthStatus returns a health summary for the health endpoint
func (s *Service) GetHealthStatus() map[string]interface{} {
	health := map[string]interface{}{
		"worker_running": s.worker.IsRunning(),
		"status":         string(models.StatusIdle),
	}

	status := s.worker.Status()
	if status == nil {
		return health
	}

	health["status"] = string(status.Status)
	health["setup_completed"] = status.Success
	health["tables_created"] = len(status.TablesCreated)
	health["tables_existing"] = len(status.TablesExisting)
	if status.EndTime != nil {
		health["last_run"] = status.EndTime.Format(time.RFC3339)
	}
	if status.ErrorMessage != "" {
		health["last_error"] = status.ErrorMessage
	}
	return health
}
