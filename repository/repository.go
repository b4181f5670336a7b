package repository

import (
	"errors"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"

	"github.com/aws/smithy-go"
)

// Base table names, prefixed through Config.TableName.
const (
	JobsTable          = "jobs"
	TechniciansTable   = "technicians"
	CrewsTable         = "crews"
	CrewMembersTable   = "crew_members"
	RosterEntriesTable = "roster_entries"
	DispatchLogsTable  = "dispatch_logs"
	PhotosTable        = "photos"
	CustomersTable     = "customers"
)

// Repository groups every repository the dispatch services read and write.
type Repository struct {
	Jobs         *JobRepository
	Technicians  *TechnicianRepository
	Crews        *CrewRepository
	Roster       *RosterRepository
	DispatchLogs *DispatchLogRepository
	Photos       *PhotoRepository
	Customers    *CustomerRepository
	JobUpdater   *JobUpdater
}

func NewRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *Repository {
	jobs := NewJobRepository(db, cfg, log)
	logs := NewDispatchLogRepository(db, cfg, log)
	return &Repository{
		Jobs:         jobs,
		Technicians:  NewTechnicianRepository(db, cfg, log),
		Crews:        NewCrewRepository(db, cfg, log),
		Roster:       NewRosterRepository(db, cfg, log),
		DispatchLogs: logs,
		Photos:       NewPhotoRepository(db, cfg, log),
		Customers:    NewCustomerRepository(db, cfg, log),
		JobUpdater:   NewJobUpdater(jobs, logs, log),
	}
}

// storageError wraps a DynamoDB failure, keeping the service error code in the
// message when the SDK reports one.
func storageError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
