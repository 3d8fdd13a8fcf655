package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/routes"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env if present without overwriting already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	requiredEnvVars := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "JWT_SECRET"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			logrus.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}

	// Auto-migrate only in development to avoid accidental production schema changes
	if strings.ToLower(os.Getenv("ENV")) == "development" {
		logrus.Info("development mode: running auto-migration")
		if err := database.RunMigrationsWithBackup(db,
			&models.User{},
			&models.RefreshToken{},
			&models.RevokedToken{},
			&models.Task{},
			&models.TaskWork{},
			&models.Transaction{},
			&models.CoinPackage{},
			&models.SystemSetting{},
			&models.ActivityLog{},
		); err != nil {
			logrus.WithError(err).Fatal("failed to migrate database")
		}
		logrus.Info("auto-migration completed")
	} else {
		logrus.Info("production mode: skipping auto-migration")
	}

	router := routes.InitRouter()

	// Global middleware, outermost first:
	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery -> Metrics -> Suspicious Activity
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(30 * time.Second)(
						middleware.RecoveryMiddleware(
							middleware.MetricsMiddleware(
								middleware.SuspiciousActivityMiddleware(router),
							),
						),
					),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	logrus.Info("server exited")
}
