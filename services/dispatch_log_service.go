package services

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils/logger"
	"time"

	"github.com/go-playground/validator/v10"
)

// DispatchLogService marks a company's day as dispatched.
type DispatchLogService struct {
	logs     repository.DispatchLogRepositoryInterface
	cache    *dal.ResponseCache
	validate *validator.Validate
	logger   logger.Logger
	now      func() time.Time
}

func NewDispatchLogService(logs repository.DispatchLogRepositoryInterface, cache *dal.ResponseCache, log logger.Logger) *DispatchLogService {
	return &DispatchLogService{
		logs:     logs,
		cache:    cache,
		validate: newValidator(),
		logger:   log,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *DispatchLogService) WithClock(now func() time.Time) *DispatchLogService {
	s.now = now
	return s
}

func (s *DispatchLogService) MarkDispatched(ctx context.Context, claims *models.JWTClaims, req *models.MarkDispatchedRequest) (*models.DispatchLogEntry, error) {
	if req == nil {
		return nil, models.NewValidationError("date", "date is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if claims == nil || claims.OrgID == "" {
		return nil, models.NewAuthError(models.ErrNotAuthenticated, "authentication required")
	}

	by := claims.Username
	if by == "" {
		by = claims.UserID
	}

	entry, err := s.logs.Create(ctx, &models.DispatchLogEntry{
		OrgID:        claims.OrgID,
		LogDate:      req.Date,
		DispatchedAt: s.now().UTC(),
		DispatchedBy: by,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, claims.OrgID)
	return entry, nil
}
