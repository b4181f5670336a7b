package services

import (
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils/logger"
)

// Service implements ServiceContainerInterface
type Service struct {
	dispatchAggregator DispatchAggregatorInterface
	updateGateway      UpdateGatewayInterface
	dispatchLogService DispatchLogServiceInterface
}

// NewService creates a new service container with all dependencies injected.
// cache may be nil, which disables response caching.
func NewService(
	repoContainer repository.RepositoryContainerInterface,
	cache *dal.ResponseCache,
	logger logger.Logger,
	config *models.Config,
) ServiceContainerInterface {
	return &Service{
		dispatchAggregator: NewDispatchAggregator(repoContainer, cache, logger, config),
		updateGateway:      NewUpdateGateway(repoContainer, cache, logger),
		dispatchLogService: NewDispatchLogService(repoContainer.GetDispatchLogRepository(), cache, logger),
	}
}

// GetDispatchAggregator returns the board read service
func (s *Service) GetDispatchAggregator() DispatchAggregatorInterface {
	return s.dispatchAggregator
}

// GetUpdateGateway returns the job update service
func (s *Service) GetUpdateGateway() UpdateGatewayInterface {
	return s.updateGateway
}

// GetDispatchLogService returns the mark-dispatched service
func (s *Service) GetDispatchLogService() DispatchLogServiceInterface {
	return s.dispatchLogService
}
