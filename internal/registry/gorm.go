package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore persists jobs through GORM. It backs the postgres deployment and
// the sqlite-based tests.
type GormStore struct {
	db *gorm.DB
}

// GormConfig returns the gorm configuration every store connection should be
// opened with: duplicate keys translated to a common error and record-not-found
// noise kept out of the logs.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				LogLevel:                  gormlogger.Error,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

// NewPostgresStore connects to postgres and migrates the job schema.
func NewPostgresStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection and migrates the job schema.
// The connection should be opened with GormConfig.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Job{}); err != nil {
		return nil, fmt.Errorf("migrating job schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Create registers a new job.
func (s *GormStore) Create(ctx context.Context, job *Job) error {
	if job.Status == "" {
		job.Status = StatusPending
	}
	err := s.db.WithContext(ctx).Create(job).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, job.ID)
	}
	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}
	return nil
}

// Get returns the job with the given id.
func (s *GormStore) Get(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return &job, nil
}

// Complete moves a pending job to ready.
func (s *GormStore) Complete(ctx context.Context, id, artifact string) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status":   StatusReady,
		"artifact": artifact,
		"error":    "",
	})
}

// Fail moves a pending job to failed.
func (s *GormStore) Fail(ctx context.Context, id, cause string) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status": StatusFailed,
		"error":  prefixCause(cause),
	})
}

// finish applies the single allowed terminal transition as one conditional
// UPDATE, so two racing writers cannot both finish the same job.
func (s *GormStore) finish(ctx context.Context, id string, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).
		Model(&Job{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrTerminal, id)
	}
	return nil
}

// MarkWebhookSent records webhook delivery for a job.
func (s *GormStore) MarkWebhookSent(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&Job{}).
		Where("id = ?", id).
		Update("webhook_sent", true)
	if res.Error != nil {
		return fmt.Errorf("updating job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns jobs ordered newest first.
func (s *GormStore) List(ctx context.Context, opts ListOptions) ([]Job, error) {
	query := s.db.WithContext(ctx).Model(&Job{}).Order("created_at DESC")
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var jobs []Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// Evict removes terminal jobs created before olderThan.
func (s *GormStore) Evict(ctx context.Context, olderThan time.Time) (int, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ? AND status IN ?", olderThan, []Status{StatusReady, StatusFailed}).
		Delete(&Job{})
	if res.Error != nil {
		return 0, fmt.Errorf("evicting jobs: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting database handle: %w", err)
	}
	return sqlDB.Close()
}
