package main

import (
	"context"
	"log"

	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/logger"
	"github.com/kendall-kelly/storefront-api/routes"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// The admin back-office API runs as its own process on ADMIN_PORT. It shares
// the database with the customer API but serves only admin routes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.GoEnv)
	appLog.Info("Starting Storefront Admin API server...")

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	if err := config.Migrate(db); err != nil {
		appLog.WithError(err).Fatal("Failed to migrate database")
	}

	var images services.ImageService = services.NewLocalImageService(cfg.UploadDir)
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(context.Background(), services.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, logger.Service(appLog, "s3"))
		if err != nil {
			appLog.WithError(err).Fatal("Failed to initialize S3")
		}
		images = services.NewS3ImageService(s3Service)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := routes.SetupAdminRouter(routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   appLog,
		Images:   images,
		Registry: registry,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Failed to set up routes")
	}

	port := ":" + cfg.AdminPort
	appLog.Infof("Admin server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		appLog.WithError(err).Fatal("Failed to start server")
	}
}
