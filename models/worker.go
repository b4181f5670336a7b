package models

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// TableAdmin is the slice of the database client the provisioning worker needs.
type TableAdmin interface {
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
}

// WorkerConfig holds configuration for the table provisioning worker
type WorkerConfig struct {
	// Cron schedule, e.g. "@every 10m"
	CronSchedule string `json:"cron_schedule"`

	// Lock settings
	LockTimeout time.Duration `json:"lock_timeout"`

	// Retry settings
	MaxRetries        int           `json:"max_retries"`
	RetryDelay        time.Duration `json:"retry_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`

	// Waiting for CREATING tables to become ACTIVE
	ActivePollInterval time.Duration `json:"active_poll_interval"`
	ActiveMaxPolls     int           `json:"active_max_polls"`

	Environment    string   `json:"environment"`
	TablePrefix    string   `json:"table_prefix"`
	RequiredTables []string `json:"required_tables"`

	// Paths
	LockFilePath   string `json:"lock_file_path"`
	StatusFilePath string `json:"status_file_path"`

	DryRun bool `json:"dry_run"`
}

// LockInfo represents provisioning lock information
type LockInfo struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Environment string    `json:"environment"`
}

// WorkerStatus represents the current status of the provisioning worker
type WorkerStatus string

const (
	StatusIdle             WorkerStatus = "idle"
	StatusCreatingTables   WorkerStatus = "creating_tables"
	StatusWaitingForTables WorkerStatus = "waiting_for_tables"
	StatusValidating       WorkerStatus = "validating"
	StatusCompleted        WorkerStatus = "completed"
	StatusFailed           WorkerStatus = "failed"
)

// ExecutionResult holds the outcome of one provisioning run
type ExecutionResult struct {
	Success   bool          `json:"success"`
	Status    WorkerStatus  `json:"status"`
	OwnerID   string        `json:"owner_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration"`

	TablesCreated  []string `json:"tables_created,omitempty"`
	TablesExisting []string `json:"tables_existing,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	RetryCount   int    `json:"retry_count"`
}
