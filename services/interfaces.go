package services

import (
	"context"
	"fieldfuze-dispatch/models"
)

// DispatchAggregatorInterface defines the contract for board reads
type DispatchAggregatorInterface interface {
	Aggregate(ctx context.Context, orgID string, q models.DispatchQuery) (*models.DispatchResponse, error)
}

// UpdateGatewayInterface defines the contract for job updates from the board
type UpdateGatewayInterface interface {
	UpdateJob(ctx context.Context, claims *models.JWTClaims, req *models.JobUpdateRequest) (*models.DispatchJob, error)
}

// DispatchLogServiceInterface defines the contract for marking a day dispatched
type DispatchLogServiceInterface interface {
	MarkDispatched(ctx context.Context, claims *models.JWTClaims, req *models.MarkDispatchedRequest) (*models.DispatchLogEntry, error)
}

// ServiceContainerInterface defines the main service container contract
type ServiceContainerInterface interface {
	GetDispatchAggregator() DispatchAggregatorInterface
	GetUpdateGateway() UpdateGatewayInterface
	GetDispatchLogService() DispatchLogServiceInterface
}
