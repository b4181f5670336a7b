package worker

import (
	"context"
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

const runTimeout = 15 * time.Minute

// Worker runs table provisioning once at start and then on a cron schedule.
// Runs never overlap within a process; the lock file keeps processes on the
// same host from racing each other.
type Worker struct {
	config  *models.WorkerConfig
	logger  logger.Logger
	setup   *InfrastructureSetup
	locks   *LockManager
	status  *StatusManager
	cronJob *cron.Cron
	ownerID string

	runMu sync.Mutex

	mu         sync.RWMutex
	running    bool
	lastResult *models.ExecutionResult

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// DefaultWorkerConfig derives the worker configuration from the application config.
func DefaultWorkerConfig(cfg *models.Config) *models.WorkerConfig {
	return &models.WorkerConfig{
		CronSchedule:       cfg.ProvisionSchedule,
		LockTimeout:        30 * time.Minute,
		MaxRetries:         3,
		RetryDelay:         2 * time.Second,
		BackoffMultiplier:  2.0,
		ActivePollInterval: 2 * time.Second,
		ActiveMaxPolls:     60,
		Environment:        cfg.AppEnv,
		TablePrefix:        cfg.DynamoDBTablePrefix,
		RequiredTables:     cfg.Tables,
		LockFilePath:       fmt.Sprintf("%s/fieldfuze-dispatch-infrastructure-%s.lock", os.TempDir(), cfg.AppEnv),
		StatusFilePath:     fmt.Sprintf("%s/fieldfuze-dispatch-status-%s.json", os.TempDir(), cfg.AppEnv),
		DryRun:             cfg.ProvisionDryRun,
	}
}

// NewWorker creates a provisioning worker over db.
func NewWorker(ctx context.Context, db models.TableAdmin, workerConfig *models.WorkerConfig, log logger.Logger) (*Worker, error) {
	if db == nil {
		return nil, fmt.Errorf("table admin cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w := &Worker{
		config:  workerConfig,
		logger:  log,
		setup:   NewInfrastructureSetup(db, workerConfig, log),
		locks:   NewLockManager(workerConfig.LockFilePath, workerConfig.LockTimeout, workerConfig.Environment),
		status:  NewStatusManager(workerConfig.StatusFilePath),
		cronJob: cron.New(),
		ownerID: fmt.Sprintf("worker-%s-%s", hostname, uuid.NewString()[:8]),
		ctx:     workerCtx,
		cancel:  cancel,
	}

	if previous, err := w.status.LoadStatus(); err == nil {
		w.lastResult = previous
	}
	return w, nil
}

func validateWorkerConfig(config *models.WorkerConfig) error {
	if config == nil {
		return fmt.Errorf("worker config cannot be nil")
	}
	if config.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if config.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if config.BackoffMultiplier < 1.0 {
		return fmt.Errorf("backoff multiplier must be at least 1.0")
	}
	if config.ActiveMaxPolls <= 0 {
		return fmt.Errorf("active max polls must be positive")
	}
	if len(config.RequiredTables) == 0 {
		return fmt.Errorf("at least one required table must be specified")
	}
	if config.CronSchedule != "" {
		if _, err := cron.Parse(config.CronSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", config.CronSchedule, err)
		}
	}
	return nil
}

// Start runs provisioning immediately in the background and schedules
// later runs. An empty schedule means a single run.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker already running")
	}

	if w.config.CronSchedule != "" {
		if err := w.cronJob.AddFunc(w.config.CronSchedule, w.scheduledRun); err != nil {
			return fmt.Errorf("failed to add cron job: %w", err)
		}
		w.cronJob.Start()
	}
	w.running = true

	go w.scheduledRun()

	w.logger.Infof("Infrastructure worker %s started (schedule %q)", w.ownerID, w.config.CronSchedule)
	return nil
}

func (w *Worker) scheduledRun() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("Infrastructure setup panicked: %v", r)
		}
	}()

	if _, err := w.RunOnce(w.ctx); err != nil && !errors.Is(err, ErrLockHeld) && !errors.Is(err, context.Canceled) {
		w.logger.Errorf("Infrastructure setup failed: %v", err)
	}
}

// RunOnce performs one provisioning pass under the lock and records the result.
func (w *Worker) RunOnce(ctx context.Context) (*models.ExecutionResult, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lockInfo, err := w.locks.AcquireLock(w.ownerID)
	if err != nil {
		w.logger.Debugf("Skipping infrastructure setup: %v", err)
		return nil, err
	}
	defer func() {
		if err := w.locks.ReleaseLock(lockInfo); err != nil {
			w.logger.Warnf("Failed to release lock: %v", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	result := &models.ExecutionResult{
		Status:    models.StatusIdle,
		OwnerID:   w.ownerID,
		StartTime: time.Now(),
	}

	setupErr := w.setup.Execute(runCtx, result)

	end := time.Now()
	result.EndTime = &end
	result.Duration = end.Sub(result.StartTime)
	if setupErr != nil {
		result.Status = models.StatusFailed
		result.ErrorMessage = setupErr.Error()
	} else {
		result.Status = models.StatusCompleted
		result.Success = true
		w.logger.Infof("Infrastructure ready: %d created, %d existing", len(result.TablesCreated), len(result.TablesExisting))
	}

	if err := w.status.SaveStatus(result); err != nil {
		w.logger.Warnf("Failed to save status: %v", err)
	}

	w.mu.Lock()
	w.lastResult = result
	w.mu.Unlock()

	return result, setupErr
}

// Status returns a copy of the latest result, or nil before the first run.
func (w *Worker) Status() *models.ExecutionResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastResult == nil {
		return nil
	}
	result := *w.lastResult
	return &result
}

func (w *Worker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stop cancels any in-flight run and stops the schedule.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.cancel()
		w.cronJob.Stop()

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()

		w.logger.Info("Infrastructure worker stopped")
	})
}
