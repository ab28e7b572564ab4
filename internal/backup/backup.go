// Package backup copies the SQLite event database to S3-compatible storage,
// encrypted with a key derived from an operator passphrase.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/store"

	_ "modernc.org/sqlite"
)

var (
	ErrDisabled          = errors.New("backup not configured")
	ErrDestinationExists = errors.New("restore destination already exists")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// EventCounter reports how many events a backup contains.
type EventCounter interface {
	Count(ctx context.Context) (int64, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	Passphrase    string
	Interval      time.Duration
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager runs encrypted backups of the event database.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status

	db      *sql.DB
	backups *store.BackupStore
	events  EventCounter
	client  s3Client
	logger  *slog.Logger
	now     func() time.Time

	// running serializes RunNow.
	running sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It stays disabled unless the bucket,
// credentials and passphrase are all set.
func NewManager(cfg Config, db *sql.DB, backups *store.BackupStore, events EventCounter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: backups,
		events:  events,
		logger:  logger.With("component", "backup"),
		now:     time.Now,
		status:  Status{State: StateDisabled},
	}
	if cfg.S3.complete() && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Region == "" {
		opts.Region = "auto"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups can run.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// Start runs a backup followed by retention cleanup every Interval until
// ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() || m.cfg.Interval <= 0 {
		return
	}
	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("scheduled backups enabled", "interval", m.cfg.Interval, "retention_days", m.cfg.RetentionDays)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
				if err := m.Cleanup(ctx); err != nil {
					m.logger.Error("backup cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Stop stops the schedule and waits for an in-flight backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunNow snapshots the database, encrypts it and uploads it.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}
	m.running.Lock()
	defer m.running.Unlock()

	m.setStatus(Status{State: StateRunning})

	started := m.now().UTC()
	filename := fmt.Sprintf("mealplan-%s.db.enc", started.Format("2006-01-02T150405.000Z"))
	key := filename
	if m.cfg.S3.Prefix != "" {
		key = m.cfg.S3.Prefix + "/" + filename
	}

	record, err := m.backups.Create(ctx, filename, key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, count, err := m.upload(ctx, record)
	if err != nil {
		if uerr := m.backups.UpdateStatus(ctx, record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Warn("failed to mark backup failed", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	if err := m.backups.UpdateCompleted(ctx, record.ID, size, count); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	finished := m.now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &finished})
	m.logger.Info("backup completed", "id", record.ID, "key", key, "size_bytes", size, "events", count)
	return m.backups.GetByID(ctx, record.ID)
}

func (m *Manager) upload(ctx context.Context, record *model.Backup) (size, count int64, err error) {
	if err := m.backups.UpdateStatus(ctx, record.ID, model.BackupStatusUploading, ""); err != nil {
		return 0, 0, err
	}

	count, err = m.events.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count events: %w", err)
	}

	plaintext, err := m.snapshot(ctx)
	if err != nil {
		return 0, 0, err
	}
	sealed, err := Seal(plaintext, m.cfg.Passphrase)
	if err != nil {
		return 0, 0, fmt.Errorf("encrypt: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(record.ObjectKey),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("upload to s3: %w", err)
	}
	return int64(len(sealed)), count, nil
}

// snapshot writes a consistent copy of the live database with VACUUM INTO
// and returns its bytes.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "mealplan-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Restore downloads backup id, decrypts it, checks its integrity and writes
// it to dstPath, which must not exist yet. The operator swaps files while the
// server is stopped.
func (m *Manager) Restore(ctx context.Context, id int64, dstPath string) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	if _, err := os.Lstat(dstPath); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dstPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat restore destination: %w", err)
	}
	record, err := m.backups.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return fmt.Errorf("backup %d not found", id)
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read download: %w", err)
	}
	plaintext, err := Open(sealed, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	tmpPath, err := writeTemp(filepath.Dir(dstPath), plaintext)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)
	if err := checkIntegrity(ctx, tmpPath); err != nil {
		return err
	}
	// Link fails if dstPath appeared since the check above.
	if err := os.Link(tmpPath, dstPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dstPath)
		}
		return fmt.Errorf("move restored db: %w", err)
	}
	m.logger.Info("backup restored", "id", id, "path", dstPath)
	return nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".mealplan-restore-*.db")
	if err != nil {
		return "", fmt.Errorf("create restore file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write restored db: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close restored db: %w", err)
	}
	return f.Name(), nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Cleanup deletes backups older than the retention period, both the records
// and the uploaded objects.
func (m *Manager) Cleanup(ctx context.Context) error {
	if !m.Enabled() || m.cfg.RetentionDays <= 0 {
		return nil
	}

	before := m.now().UTC().AddDate(0, 0, -m.cfg.RetentionDays)
	keys, err := m.backups.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("failed to delete backup object", "key", key, "error", err)
		}
	}
	if len(keys) > 0 {
		m.logger.Info("old backups removed", "count", len(keys))
	}
	return nil
}
