package main

import (
	"context"
	"errors"
	"fieldfuze-dispatch/controller"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"fieldfuze-dispatch/worker"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	Init()

	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)
	appLogger.Infof("Config loaded: env=%s region=%s table_prefix=%s timezone=%s",
		config.AppEnv, config.AWSRegion, config.DynamoDBTablePrefix, config.Timezone)

	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	c := controller.NewController(ctx, config, appLogger)

	if config.ProvisionEnabled {
		infraWorker, err := worker.NewService(ctx, config, appLogger)
		if err != nil {
			appLogger.Fatalf("Failed to create infrastructure worker: %v", err)
		}
		if err := infraWorker.StartInBackground(); err != nil {
			appLogger.Fatalf("Failed to start infrastructure worker: %v", err)
		}
		defer infraWorker.Stop()
		c.SetInfrastructureHealth(infraWorker.GetHealthStatus)
	}

	c.RegisterRoutes(r, config.BasePath)

	server := &http.Server{
		Addr:              net.JoinHostPort(config.AppHost, config.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting %s %s on %s", config.AppName, config.AppVersion, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Server shutdown failed: %v", err)
	}
	appLogger.Info("Server exited")
}
