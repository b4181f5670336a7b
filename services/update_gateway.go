package services

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// UpdateGateway validates partial job updates, hands them to the job updater
// and returns the updated job joined like a board row.
type UpdateGateway struct {
	updater   repository.JobUpdaterInterface
	techs     repository.TechnicianRepositoryInterface
	crews     repository.CrewRepositoryInterface
	photos    repository.PhotoRepositoryInterface
	customers repository.CustomerRepositoryInterface
	cache     *dal.ResponseCache
	validate  *validator.Validate
	logger    logger.Logger
}

func NewUpdateGateway(repos repository.RepositoryContainerInterface, cache *dal.ResponseCache, log logger.Logger) *UpdateGateway {
	return &UpdateGateway{
		updater:   repos.GetJobUpdater(),
		techs:     repos.GetTechnicianRepository(),
		crews:     repos.GetCrewRepository(),
		photos:    repos.GetPhotoRepository(),
		customers: repos.GetCustomerRepository(),
		cache:     cache,
		validate:  newValidator(),
		logger:    log,
	}
}

// Validate checks the request shape before anything is read or written.
func (g *UpdateGateway) Validate(req *models.JobUpdateRequest) error {
	if req == nil {
		return models.NewValidationError("", "request body is required")
	}
	if strings.TrimSpace(req.JobID) == "" {
		return models.NewValidationError("jobId", "jobId is required")
	}
	if req.Updates == nil || req.Updates.IsEmpty() {
		return models.NewValidationError("updates", "updates must contain at least one field")
	}
	if err := g.validate.Struct(req.Updates); err != nil {
		return validationError(err)
	}
	if t := req.Updates.ScheduledTime; t.Set && !t.IsClear() && !utils.IsValidTimeOfDay(*t.Value) {
		return models.NewValidationError("scheduledTime", "scheduledTime must be formatted as HH:MM")
	}
	return nil
}

func (g *UpdateGateway) UpdateJob(ctx context.Context, claims *models.JWTClaims, req *models.JobUpdateRequest) (*models.DispatchJob, error) {
	if err := g.Validate(req); err != nil {
		return nil, err
	}

	jobID := strings.TrimSpace(req.JobID)
	g.logger.Infof("Updating job %s: %s", jobID, utils.PrintPrettyJSON(req.Updates))

	job, err := g.updater.Apply(ctx, claims, jobID, req.Updates)
	if err != nil {
		g.logger.Errorf("Job update %s rejected: %v", jobID, err)
		return nil, err
	}

	g.cache.Invalidate(ctx, job.OrgID)

	row := g.rejoin(ctx, job)
	return &row, nil
}

// rejoin reads the display sources of a single job. Each is optional.
func (g *UpdateGateway) rejoin(ctx context.Context, job *models.Job) models.DispatchJob {
	var (
		techs     []*models.Technician
		crews     []*models.Crew
		customers map[string]*models.Customer
		photos    []models.Photo
	)

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		if techs, err = g.techs.ListActive(ctx, job.OrgID); err != nil {
			g.logger.Warnf("Technicians unavailable for job %s: %v", job.JobID, err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if crews, err = g.crews.ListActive(ctx, job.OrgID); err != nil {
			g.logger.Warnf("Crews unavailable for job %s: %v", job.JobID, err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if customers, err = g.customers.GetCustomers(ctx, job.OrgID, []string{job.CustomerID}); err != nil {
			g.logger.Warnf("Customer unavailable for job %s: %v", job.JobID, err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if photos, err = g.photos.ListForJob(ctx, job.JobID); err != nil {
			g.logger.Warnf("Photos unavailable for job %s: %v", job.JobID, err)
		}
		return nil
	})
	_ = eg.Wait()

	joiner := newJobJoiner(techs, crews, customers, map[string][]models.Photo{job.JobID: photos})
	return joiner.join(job)
}
