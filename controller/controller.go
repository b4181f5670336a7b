package controller

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/middelware"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/services"
	"fieldfuze-dispatch/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Dispatch   *DispatchController
	jwtManager *middelware.JWTManager
	config     *models.Config
	logger     logger.Logger

	infraHealth func() map[string]interface{}
}

// NewController wires storage, cache and services into the HTTP handlers.
func NewController(ctx context.Context, cfg *models.Config, log logger.Logger) *Controller {
	dbclient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize DynamoDB client: %v", err)
	}

	var cache *dal.ResponseCache
	if cfg.RedisAddr != "" {
		redisClient, err := dal.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Warnf("Response cache disabled: %v", err)
		} else {
			cache = dal.NewResponseCache(dal.NewRedisKVStore(redisClient), cfg.ResponseCacheTTL, log)
			log.Infof("Response cache enabled on %s (ttl %s)", cfg.RedisAddr, cfg.ResponseCacheTTL)
		}
	}

	repos := repository.NewRepository(dbclient, cfg, log)
	svc := services.NewService(repos, cache, log, cfg)

	return NewControllerWithServices(svc, cfg, log)
}

// NewControllerWithServices builds the controller on an existing service container.
func NewControllerWithServices(svc services.ServiceContainerInterface, cfg *models.Config, log logger.Logger) *Controller {
	return &Controller{
		Dispatch:   NewDispatchController(svc, cfg, log),
		jwtManager: middelware.NewJWTManager(cfg, log),
		config:     cfg,
		logger:     log,
	}
}

// SetInfrastructureHealth adds the provisioning worker's summary to /health.
func (c *Controller) SetInfrastructureHealth(fn func() map[string]interface{}) {
	c.infraHealth = fn
}

// RegisterRoutes installs middleware and all routes on r.
func (c *Controller) RegisterRoutes(r *gin.Engine, basePath string) {
	logging := middelware.NewLoggingMiddleware(c.logger)
	r.Use(middelware.NewCORSMiddleware(c.config).CORS())
	r.Use(logging.StructuredLogger())
	r.Use(logging.Recovery())

	v1 := r.Group(basePath)

	// Health check endpoint (no auth required)
	v1.GET("/health", func(ctx *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"version": c.config.AppVersion,
			"service": c.config.AppName,
		}
		if c.infraHealth != nil {
			body["infrastructure"] = c.infraHealth()
		}
		ctx.JSON(http.StatusOK, body)
	})

	dispatch := v1.Group("/dispatch", c.jwtManager.AuthMiddleware())
	dispatch.GET("", c.Dispatch.GetBoard)
	dispatch.PATCH("", c.Dispatch.UpdateJob)
	dispatch.POST("/log", c.Dispatch.MarkDispatched)
}
