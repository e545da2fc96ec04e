package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bromleigh/mealboard/internal/backup"
	"github.com/bromleigh/mealboard/internal/database"
	"github.com/bromleigh/mealboard/internal/email"
	"github.com/bromleigh/mealboard/internal/logging"
	"github.com/bromleigh/mealboard/internal/server"
)

func main() {
	// Missing .env is fine; configuration can come from the environment.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("MEALBOARD_LOG_LEVEL"))

	port := os.Getenv("MEALBOARD_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MEALBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "mealboard.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		MenuAIURL:       os.Getenv("MEALBOARD_MENU_AI_URL"),
		VAPIDPublicKey:  os.Getenv("MEALBOARD_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("MEALBOARD_VAPID_PRIVATE_KEY"),
		Backup: backup.Config{
			DBPath: dbPath,
			S3: backup.S3Config{
				Endpoint:  os.Getenv("MEALBOARD_S3_ENDPOINT"),
				Bucket:    os.Getenv("MEALBOARD_S3_BUCKET"),
				Region:    os.Getenv("MEALBOARD_S3_REGION"),
				AccessKey: os.Getenv("MEALBOARD_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("MEALBOARD_S3_SECRET_KEY"),
			},
		},
	}

	emailClient := email.NewClient(os.Getenv("MEALBOARD_POSTMARK_TOKEN"), os.Getenv("MEALBOARD_EMAIL_FROM"))

	srv := server.New(db, cfg, emailClient, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		// Menu generation waits on an external service, so writes get a
		// longer deadline than usual.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("mealboard listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
