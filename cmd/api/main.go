package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anime-shed/photo-scorer-go/internal/config"
	"github.com/anime-shed/photo-scorer-go/internal/container"
	"github.com/anime-shed/photo-scorer-go/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logger.WithComponent("main")

	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("Failed to load .env")
	}

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependency injection container
	c, err := container.NewContainer(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize container")
	}

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := c.Close(); err != nil {
		log.WithError(err).Error("Failed to release analyzer")
	}

	log.Info("Server exited")
}
