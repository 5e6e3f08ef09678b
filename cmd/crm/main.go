package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sereniteo/crm/internal/auth"
	"github.com/sereniteo/crm/internal/backup"
	"github.com/sereniteo/crm/internal/database"
	"github.com/sereniteo/crm/internal/email"
	"github.com/sereniteo/crm/internal/logging"
	"github.com/sereniteo/crm/internal/server"
	"github.com/sereniteo/crm/internal/store"
)

const cleanupInterval = 1 * time.Hour

// Consumed magic-link tokens are retained this long as an audit trail
// before the cleanup loop sweeps them.
const tokenRetentionDays = 30

func main() {
	_ = godotenv.Load(".env")

	logger := logging.Setup(os.Getenv("CRM_LOG_LEVEL"))

	port := os.Getenv("CRM_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CRM_DB_PATH")
	if dbPath == "" {
		dbPath = "crm.db"
	}

	baseURL := os.Getenv("CRM_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("BREVO_API_KEY"),
		os.Getenv("BREVO_FROM_EMAIL"),
		os.Getenv("BREVO_FROM_NAME"),
	)
	if !emailClient.Configured() {
		logger.Warn("BREVO_API_KEY not set, magic link emails will not be sent")
	}

	srv := server.New(db, server.Config{
		BaseURL: baseURL,
		Admin: auth.Credentials{
			Email:        os.Getenv("ADMIN_EMAIL"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		AllowedEmails: auth.ParseAllowList(os.Getenv("MAGIC_LINK_ALLOWED_EMAILS")),
		EmailClient:   emailClient,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduleHour, _ := strconv.Atoi(os.Getenv("CRM_BACKUP_HOUR"))
	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("CRM_BACKUP_S3_ENDPOINT"),
			Bucket:    os.Getenv("CRM_BACKUP_S3_BUCKET"),
			Region:    os.Getenv("CRM_BACKUP_S3_REGION"),
			AccessKey: os.Getenv("CRM_BACKUP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CRM_BACKUP_S3_SECRET_KEY"),
		},
		DBPath:       dbPath,
		Passphrase:   os.Getenv("CRM_BACKUP_PASSPHRASE"),
		ScheduleHour: scheduleHour,
	}, db, store.NewBackupStore(db), logger.With("component", "backup"))
	if backupMgr.Enabled() {
		backupMgr.Start(ctx)
		defer backupMgr.Stop()
	}

	// Hourly sweep of expired sessions, old magic-link tokens, and stale
	// rate-limit entries.
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				if n, err := srv.MagicLinkStore().DeleteOlderThan(tokenRetentionDays); err != nil {
					logger.Error("magic link cleanup", "error", err)
				} else if n > 0 {
					logger.Info("magic link cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("CRM server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
