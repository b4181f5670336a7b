package repository

import (
	"context"
	"fieldfuze-dispatch/models"
)

// JobRepositoryInterface defines the contract for job repository operations
type JobRepositoryInterface interface {
	ListJobsInRange(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJobFields(ctx context.Context, jobID string, fields map[string]interface{}) (*models.Job, error)
}

// TechnicianRepositoryInterface defines the contract for technician reads
type TechnicianRepositoryInterface interface {
	ListActive(ctx context.Context, orgID string) ([]*models.Technician, error)
}

// CrewRepositoryInterface defines the contract for crew and permanent membership reads
type CrewRepositoryInterface interface {
	ListActive(ctx context.Context, orgID string) ([]*models.Crew, error)
	ListPermanentMembers(ctx context.Context, orgID string, crewIDs []string) (map[string][]string, error)
}

// RosterRepositoryInterface defines the contract for roster reads
type RosterRepositoryInterface interface {
	ListForDate(ctx context.Context, orgID, workDate string, crewIDs []string) ([]*models.RosterEntry, error)
}

// DispatchLogRepositoryInterface defines the contract for the per-day dispatch log
type DispatchLogRepositoryInterface interface {
	ListForDate(ctx context.Context, orgID, logDate string) ([]*models.DispatchLogEntry, error)
	Create(ctx context.Context, entry *models.DispatchLogEntry) (*models.DispatchLogEntry, error)
}

// PhotoRepositoryInterface defines the contract for photo attachment reads
type PhotoRepositoryInterface interface {
	ListForJob(ctx context.Context, jobID string) ([]models.Photo, error)
}

// CustomerRepositoryInterface defines the contract for customer reads
type CustomerRepositoryInterface interface {
	GetCustomers(ctx context.Context, orgID string, customerIDs []string) (map[string]*models.Customer, error)
}

// JobUpdaterInterface applies an authorized partial update to a job
type JobUpdaterInterface interface {
	Apply(ctx context.Context, claims *models.JWTClaims, jobID string, updates *models.JobUpdates) (*models.Job, error)
}

// RepositoryContainerInterface defines the contract for the repository container
type RepositoryContainerInterface interface {
	GetJobRepository() JobRepositoryInterface
	GetTechnicianRepository() TechnicianRepositoryInterface
	GetCrewRepository() CrewRepositoryInterface
	GetRosterRepository() RosterRepositoryInterface
	GetDispatchLogRepository() DispatchLogRepositoryInterface
	GetPhotoRepository() PhotoRepositoryInterface
	GetCustomerRepository() CustomerRepositoryInterface
	GetJobUpdater() JobUpdaterInterface
}

func (r *Repository) GetJobRepository() JobRepositoryInterface                 { return r.Jobs }
func (r *Repository) GetTechnicianRepository() TechnicianRepositoryInterface   { return r.Technicians }
func (r *Repository) GetCrewRepository() CrewRepositoryInterface               { return r.Crews }
func (r *Repository) GetRosterRepository() RosterRepositoryInterface           { return r.Roster }
func (r *Repository) GetDispatchLogRepository() DispatchLogRepositoryInterface { return r.DispatchLogs }
func (r *Repository) GetPhotoRepository() PhotoRepositoryInterface             { return r.Photos }
func (r *Repository) GetCustomerRepository() CustomerRepositoryInterface       { return r.Customers }
func (r *Repository) GetJobUpdater() JobUpdaterInterface                       { return r.JobUpdater }
