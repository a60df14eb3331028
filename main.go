package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goeda/internal"
	"goeda/internal/api"
	"goeda/internal/config"
	"goeda/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	serverConfig, err := config.LoadServer()
	if err != nil {
		internal.NewDefaultLogger().Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(serverConfig.LogLevel))
	defer logger.Sync()
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
	gin.SetMode(serverConfig.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Close()

	// The query endpoint and durable report storage need a database
	if serverConfig.DatabaseURL != "" {
		if err := appContainer.InitWithDatabase(ctx, serverConfig.DatabaseURL); err != nil {
			logger.Error("Failed to initialize database: %v", err)
			os.Exit(1)
		}
	}

	hub := api.NewEventHub(logger)
	defer hub.Close()
	reports := api.NewReportHandler(appContainer.Pipeline, appContainer, appContainer.Reports, hub, serverConfig, logger)

	server := &http.Server{
		Addr:              ":" + serverConfig.Port,
		Handler:           api.NewRouter(reports, hub, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting report server on port %s (reports under %s)", serverConfig.Port, serverConfig.ReportDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
