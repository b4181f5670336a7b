package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/mock"
)

// MockDatabaseClient implements dal.DatabaseClientInterface for testing
type MockDatabaseClient struct {
	mock.Mock
}

var _ dal.DatabaseClientInterface = (*MockDatabaseClient)(nil)

func (m *MockDatabaseClient) GetItem(ctx context.Context, config models.QueryConfig, result interface{}) error {
	return m.Called(ctx, config, result).Error(0)
}

func (m *MockDatabaseClient) PutItemIfAbsent(ctx context.Context, tableName, keyName string, item interface{}) error {
	return m.Called(ctx, tableName, keyName, item).Error(0)
}

func (m *MockDatabaseClient) UpdateItem(ctx context.Context, config models.QueryConfig, updates map[string]interface{}, result interface{}) error {
	return m.Called(ctx, config, updates, result).Error(0)
}

func (m *MockDatabaseClient) Query(ctx context.Context, query models.RangeQuery, results interface{}) error {
	return m.Called(ctx, query, results).Error(0)
}

func (m *MockDatabaseClient) BatchGetItems(ctx context.Context, tableName, keyName string, keys []string, results interface{}) error {
	return m.Called(ctx, tableName, keyName, keys, results).Error(0)
}

func (m *MockDatabaseClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockDatabaseClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, tableName)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.DescribeTableOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockJobRepository implements JobRepositoryInterface for testing
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) ListJobsInRange(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	args := m.Called(ctx, filter)
	if jobs := args.Get(0); jobs != nil {
		return jobs.([]*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobRepository) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	args := m.Called(ctx, jobID)
	if job := args.Get(0); job != nil {
		return job.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobRepository) UpdateJobFields(ctx context.Context, jobID string, fields map[string]interface{}) (*models.Job, error) {
	args := m.Called(ctx, jobID, fields)
	if job := args.Get(0); job != nil {
		return job.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockDispatchLogRepository implements DispatchLogRepositoryInterface for testing
type MockDispatchLogRepository struct {
	mock.Mock
}

func (m *MockDispatchLogRepository) ListForDate(ctx context.Context, orgID, logDate string) ([]*models.DispatchLogEntry, error) {
	args := m.Called(ctx, orgID, logDate)
	if entries := args.Get(0); entries != nil {
		return entries.([]*models.DispatchLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDispatchLogRepository) Create(ctx context.Context, entry *models.DispatchLogEntry) (*models.DispatchLogEntry, error) {
	args := m.Called(ctx, entry)
	if e := args.Get(0); e != nil {
		return e.(*models.DispatchLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() logger.Logger {
	return logger.NewLoggerWithOutput("error", "json", io.Discard)
}

func strPtr(s string) *string { return &s }
