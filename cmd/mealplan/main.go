package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/mealplan/internal/auth"
	"github.com/dukerupert/mealplan/internal/backup"
	"github.com/dukerupert/mealplan/internal/config"
	"github.com/dukerupert/mealplan/internal/database"
	"github.com/dukerupert/mealplan/internal/logging"
	"github.com/dukerupert/mealplan/internal/messaging"
	"github.com/dukerupert/mealplan/internal/server"
	"github.com/dukerupert/mealplan/internal/store"
	"github.com/dukerupert/mealplan/internal/store/postgres"
)

const usage = `usage: mealplan <command> [args]

commands:
  serve                    run the HTTP server (default)
  token <user-id> [-ttl d] issue a bearer token for a user
  backup                   run one encrypted backup now
  restore <id> <path>      download backup <id> and write it to a new file <path>
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "token":
		err = issueToken(cfg, args)
	case "backup":
		err = runBackup(cfg, logger)
	case "restore":
		err = restore(cfg, logger, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	deps := server.Deps{
		Meals:              store.NewMealStore(db),
		Library:            store.NewLibraryStore(db),
		Verifier:           auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		AllowedOrigins:     cfg.AllowedOrigins,
		GenerateRateLimit:  cfg.GenerateRateLimit,
		GenerateRateWindow: cfg.GenerateRateWindow,
	}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		deps.Events = postgres.NewEventStore(pool)
		deps.Snapshots = postgres.NewSnapshotStore(pool)
		logger.Info("using postgres event store")
	default:
		deps.Events = store.NewEventStore(db)
		deps.Snapshots = store.NewSnapshotStore(db)
	}

	if cfg.NATSURL != "" {
		nc, err := messaging.ConnectWithRetry(ctx, cfg.NATSURL, 10*time.Second)
		if err != nil {
			return err
		}
		defer nc.Close()
		deps.Publisher = messaging.NewEventPublisher(messaging.JetStreamPublisher{JS: nc.JS})
		logger.Info("publishing events to jetstream", "stream", messaging.EventsStream)
	}

	if cfg.BackupsConfigured() {
		deps.Backups = newBackupManager(cfg, db, logger)
		deps.Backups.Start(ctx)
		defer deps.Backups.Stop()
	}

	srv := server.New(deps, logger)
	srv.RateLimiter().StartCleanup(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mealplan listening", "addr", httpServer.Addr, "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func issueToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if len(args) == 0 {
		return errors.New("token: user id required")
	}
	userID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	tok, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer).IssueToken(userID, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func newBackupManager(cfg config.Config, db *sql.DB, logger *slog.Logger) *backup.Manager {
	return backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
		},
		Passphrase:    cfg.BackupPassphrase,
		Interval:      cfg.BackupInterval,
		RetentionDays: cfg.BackupRetentionDays,
	}, db, store.NewBackupStore(db), store.NewEventStore(db), logger)
}

func runBackup(cfg config.Config, logger *slog.Logger) error {
	if !cfg.BackupsConfigured() {
		return backup.ErrDisabled
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	m := newBackupManager(cfg, db, logger)
	record, err := m.RunNow(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("backup %d uploaded to %s (%d bytes, %d events)\n", record.ID, record.ObjectKey, record.SizeBytes, record.EventCount)
	return m.Cleanup(ctx)
}

func restore(cfg config.Config, logger *slog.Logger, args []string) error {
	if len(args) != 2 {
		return errors.New("restore: usage: mealplan restore <id> <path>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("restore: invalid backup id %q", args[0])
	}
	if !cfg.BackupsConfigured() {
		return backup.ErrDisabled
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return newBackupManager(cfg, db, logger).Restore(context.Background(), id, args[1])
}
