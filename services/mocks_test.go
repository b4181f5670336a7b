package services

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils/logger"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) ListJobsInRange(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobRepository) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobRepository) UpdateJobFields(ctx context.Context, jobID string, fields map[string]interface{}) (*models.Job, error) {
	args := m.Called(ctx, jobID, fields)
	if v := args.Get(0); v != nil {
		return v.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTechnicianRepository struct{ mock.Mock }

func (m *MockTechnicianRepository) ListActive(ctx context.Context, orgID string) ([]*models.Technician, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Technician), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCrewRepository struct{ mock.Mock }

func (m *MockCrewRepository) ListActive(ctx context.Context, orgID string) ([]*models.Crew, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Crew), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCrewRepository) ListPermanentMembers(ctx context.Context, orgID string, crewIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, orgID, crewIDs)
	if v := args.Get(0); v != nil {
		return v.(map[string][]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRosterRepository struct{ mock.Mock }

func (m *MockRosterRepository) ListForDate(ctx context.Context, orgID, workDate string, crewIDs []string) ([]*models.RosterEntry, error) {
	args := m.Called(ctx, orgID, workDate, crewIDs)
	if v := args.Get(0); v != nil {
		return v.([]*models.RosterEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDispatchLogRepository struct{ mock.Mock }

func (m *MockDispatchLogRepository) ListForDate(ctx context.Context, orgID, logDate string) ([]*models.DispatchLogEntry, error) {
	args := m.Called(ctx, orgID, logDate)
	if v := args.Get(0); v != nil {
		return v.([]*models.DispatchLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDispatchLogRepository) Create(ctx context.Context, entry *models.DispatchLogEntry) (*models.DispatchLogEntry, error) {
	args := m.Called(ctx, entry)
	if v := args.Get(0); v != nil {
		return v.(*models.DispatchLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPhotoRepository struct{ mock.Mock }

func (m *MockPhotoRepository) ListForJob(ctx context.Context, jobID string) ([]models.Photo, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.([]models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) GetCustomers(ctx context.Context, orgID string, customerIDs []string) (map[string]*models.Customer, error) {
	args := m.Called(ctx, orgID, customerIDs)
	if v := args.Get(0); v != nil {
		return v.(map[string]*models.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockJobUpdater struct{ mock.Mock }

func (m *MockJobUpdater) Apply(ctx context.Context, claims *models.JWTClaims, jobID string, updates *models.JobUpdates) (*models.Job, error) {
	args := m.Called(ctx, claims, jobID, updates)
	if v := args.Get(0); v != nil {
		return v.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockRepos implements repository.RepositoryContainerInterface over mocks
type mockRepos struct {
	jobs      *MockJobRepository
	techs     *MockTechnicianRepository
	crews     *MockCrewRepository
	roster    *MockRosterRepository
	logs      *MockDispatchLogRepository
	photos    *MockPhotoRepository
	customers *MockCustomerRepository
	updater   *MockJobUpdater
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		jobs:      new(MockJobRepository),
		techs:     new(MockTechnicianRepository),
		crews:     new(MockCrewRepository),
		roster:    new(MockRosterRepository),
		logs:      new(MockDispatchLogRepository),
		photos:    new(MockPhotoRepository),
		customers: new(MockCustomerRepository),
		updater:   new(MockJobUpdater),
	}
}

func (r *mockRepos) GetJobRepository() repository.JobRepositoryInterface { return r.jobs }
func (r *mockRepos) GetTechnicianRepository() repository.TechnicianRepositoryInterface {
	return r.techs
}
func (r *mockRepos) GetCrewRepository() repository.CrewRepositoryInterface     { return r.crews }
func (r *mockRepos) GetRosterRepository() repository.RosterRepositoryInterface { return r.roster }
func (r *mockRepos) GetDispatchLogRepository() repository.DispatchLogRepositoryInterface {
	return r.logs
}
func (r *mockRepos) GetPhotoRepository() repository.PhotoRepositoryInterface { return r.photos }
func (r *mockRepos) GetCustomerRepository() repository.CustomerRepositoryInterface {
	return r.customers
}
func (r *mockRepos) GetJobUpdater() repository.JobUpdaterInterface { return r.updater }

func (r *mockRepos) assertExpectations(t mock.TestingT) {
	r.jobs.AssertExpectations(t)
	r.techs.AssertExpectations(t)
	r.crews.AssertExpectations(t)
	r.roster.AssertExpectations(t)
	r.logs.AssertExpectations(t)
	r.photos.AssertExpectations(t)
	r.customers.AssertExpectations(t)
	r.updater.AssertExpectations(t)
}

// memoryKV is an in-process dal.KVStore
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", dal.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func quietLogger() logger.Logger {
	return logger.NewLoggerWithOutput("error", "json", io.Discard)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
