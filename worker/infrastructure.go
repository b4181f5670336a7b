package worker

import (
	"context"
	"errors"
	"fieldfuze-dispatch/infrastructure"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// InfrastructureSetup creates and validates the tables the dispatch
// services read from.
type InfrastructureSetup struct {
	db     models.TableAdmin
	config *models.WorkerConfig
	logger logger.Logger
}

// NewInfrastructureSetup creates a new infrastructure setup handler
func NewInfrastructureSetup(db models.TableAdmin, cfg *models.WorkerConfig, log logger.Logger) *InfrastructureSetup {
	return &InfrastructureSetup{db: db, config: cfg, logger: log}
}

func (is *InfrastructureSetup) tableName(base string) string {
	if is.config.TablePrefix == "" {
		return base
	}
	return is.config.TablePrefix + "_" + base
}

// Execute makes sure every required table exists and is ACTIVE with the
// indexes its schema declares. Existing tables are left untouched.
func (is *InfrastructureSetup) Execute(ctx context.Context, result *models.ExecutionResult) error {
	is.logger.Infof("Starting infrastructure setup for %d tables", len(is.config.RequiredTables))

	result.Status = models.StatusCreatingTables
	var created []string
	for _, base := range is.config.RequiredTables {
		name := is.tableName(base)

		exists, err := is.tableExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", name, err)
		}
		if exists {
			is.logger.Debugf("Table %s already exists, skipping creation", name)
			result.TablesExisting = append(result.TablesExisting, name)
			continue
		}

		if is.config.DryRun {
			is.logger.Infof("Dry run: would create table %s", name)
			continue
		}

		if err := is.createTableWithRetry(ctx, name, result); err != nil {
			return err
		}
		created = append(created, name)
		result.TablesCreated = append(result.TablesCreated, name)
		is.logger.Infof("Created table %s", name)
	}

	if is.config.DryRun {
		return nil
	}

	if len(created) > 0 {
		result.Status = models.StatusWaitingForTables
		if err := is.waitForTablesActive(ctx, created); err != nil {
			return err
		}
	}

	result.Status = models.StatusValidating
	return is.validateInfrastructure(ctx)
}

// retryDelay grows the base delay by the backoff multiplier per attempt.
func (is *InfrastructureSetup) retryDelay(attempt int) time.Duration {
	multiplier := math.Pow(is.config.BackoffMultiplier, float64(attempt-1))
	return time.Duration(float64(is.config.RetryDelay) * multiplier)
}

func (is *InfrastructureSetup) createTableWithRetry(ctx context.Context, name string, result *models.ExecutionResult) error {
	input, err := infrastructure.GetTableInput(is.config.TablePrefix, name)
	if err != nil {
		return fmt.Errorf("failed to get table input: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= is.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := is.retryDelay(attempt)
			result.RetryCount++
			is.logger.Infof("Retrying table creation for %s in %v (attempt %d/%d)", name, delay, attempt+1, is.config.MaxRetries+1)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = is.db.CreateTable(ctx, input)
		if lastErr == nil || isTableInUseError(lastErr) {
			// In use means another instance created it between our check and now.
			return nil
		}
		is.logger.Errorf("Attempt %d failed to create table %s: %v", attempt+1, name, lastErr)
	}

	return fmt.Errorf("failed to create table %s after %d attempts: %w", name, is.config.MaxRetries+1, lastErr)
}

// waitForTablesActive polls until every table in names reports ACTIVE.
func (is *InfrastructureSetup) waitForTablesActive(ctx context.Context, names []string) error {
	pending := append([]string(nil), names...)

	for poll := 0; poll < is.config.ActiveMaxPolls; poll++ {
		var still []string
		for _, name := range pending {
			desc, err := is.db.DescribeTable(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to describe table %s: %w", name, err)
			}
			if desc.Table == nil || desc.Table.TableStatus != types.TableStatusActive {
				still = append(still, name)
			}
		}
		if len(still) == 0 {
			return nil
		}
		pending = still

		select {
		case <-time.After(is.config.ActivePollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("tables not active after %d polls: %s", is.config.ActiveMaxPolls, strings.Join(pending, ", "))
}

// validateInfrastructure checks status and secondary indexes of every table.
func (is *InfrastructureSetup) validateInfrastructure(ctx context.Context) error {
	for _, base := range is.config.RequiredTables {
		name := is.tableName(base)

		desc, err := is.db.DescribeTable(ctx, name)
		if err != nil {
			return fmt.Errorf("table %s validation failed: %w", name, err)
		}
		if desc.Table == nil || desc.Table.TableStatus != types.TableStatusActive {
			status := "unknown"
			if desc.Table != nil {
				status = string(desc.Table.TableStatus)
			}
			return fmt.Errorf("table %s is not active: %s", name, status)
		}

		expected, err := infrastructure.IndexNames(base)
		if err != nil {
			return err
		}
		actual := make(map[string]bool, len(desc.Table.GlobalSecondaryIndexes))
		for _, gsi := range desc.Table.GlobalSecondaryIndexes {
			if gsi.IndexName != nil {
				actual[*gsi.IndexName] = true
			}
		}
		for _, index := range expected {
			if !actual[index] {
				return fmt.Errorf("table %s is missing index %s", name, index)
			}
		}
	}

	is.logger.Info("Infrastructure validation completed successfully")
	return nil
}

func (is *InfrastructureSetup) tableExists(ctx context.Context, name string) (bool, error) {
	_, err := is.db.DescribeTable(ctx, name)
	if err != nil {
		if isTableNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	return apiErrorCode(err) == "ResourceNotFoundException"
}

func isTableInUseError(err error) bool {
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return true
	}
	return apiErrorCode(err) == "ResourceInUseException"
}
