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
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.GoEnv)
	appLog.Info("Starting Storefront API server...")

	deps, err := buildDependencies(context.Background(), cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize")
	}

	router, err := routes.SetupRouter(deps)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to set up routes")
	}

	// Start server
	port := ":" + cfg.Port
	appLog.Infof("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		appLog.WithError(err).Fatal("Failed to start server")
	}
}

// buildDependencies connects and migrates the database and picks the image
// store: S3 when a bucket is configured, the local upload dir otherwise.
func buildDependencies(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) (routes.Dependencies, error) {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return routes.Dependencies{}, err
	}
	if err := config.Migrate(db); err != nil {
		return routes.Dependencies{}, err
	}
	appLog.Info("Database migration completed successfully")

	var images services.ImageService = services.NewLocalImageService(cfg.UploadDir)
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(ctx, services.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, logger.Service(appLog, "s3"))
		if err != nil {
			return routes.Dependencies{}, err
		}
		images = services.NewS3ImageService(s3Service)
		appLog.WithField("bucket", cfg.AWSS3Bucket).Info("Storing images in S3")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   appLog,
		Images:   images,
		Registry: registry,
	}, nil
}
