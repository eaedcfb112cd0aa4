package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
)

// Store persists the processing audit trail in PostgreSQL.
type Store struct {
	db     *sqlx.DB
	logger *logger.Logger
}

const jobsSchema = `
	CREATE TABLE IF NOT EXISTS redaction_jobs (
		id BIGSERIAL PRIMARY KEY,
		request_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		kind TEXT NOT NULL,
		use_ai BOOLEAN NOT NULL DEFAULT FALSE,
		cached BOOLEAN NOT NULL DEFAULT FALSE,
		findings JSONB NOT NULL DEFAULT '{}',
		finding_count INTEGER NOT NULL DEFAULT 0,
		processing_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_redaction_jobs_created_at ON redaction_jobs (created_at)`

// NewStore connects to the audit database and ensures the schema exists.
func NewStore(cfg config.AuditConfig, log *logger.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &Store{
		db:     db,
		logger: log,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	log.Info("Audit store initialized successfully",
		zap.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return store, nil
}

func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, jobsSchema); err != nil {
		return fmt.Errorf("failed to ensure jobs schema: %w", err)
	}

	return nil
}

// Record inserts one processed job into the audit trail.
func (s *Store) Record(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO redaction_jobs (request_id, filename, kind, use_ai, cached, findings, finding_count, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		job.RequestID,
		job.Filename,
		job.Kind,
		job.UseAI,
		job.Cached,
		job.Findings,
		job.FindingCount,
		job.ProcessingMS,
	).Scan(&job.ID, &job.CreatedAt)

	if err != nil {
		s.logger.Error("Failed to record job",
			zap.Error(err),
			zap.String("request_id", job.RequestID),
			zap.String("filename", job.Filename))
		return fmt.Errorf("failed to record job: %w", err)
	}

	s.logger.Debug("Job recorded",
		zap.Int64("id", job.ID),
		zap.String("request_id", job.RequestID),
		zap.Int("finding_count", job.FindingCount))

	return nil
}

// List pages through recorded jobs in insertion order, for export tooling.
func (s *Store) List(ctx context.Context, options *ListOptions) ([]*Job, error) {
	if options == nil {
		options = &ListOptions{Limit: 500}
	}
	if options.Limit <= 0 {
		options.Limit = 500
	}

	query := `
		SELECT id, request_id, filename, kind, use_ai, cached, findings, finding_count, processing_ms, created_at
		FROM redaction_jobs
		WHERE id > $1
		ORDER BY id
		LIMIT $2`

	var jobs []*Job
	if err := s.db.SelectContext(ctx, &jobs, query, options.AfterID, options.Limit); err != nil {
		s.logger.Error("Failed to list jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetStats returns aggregate audit trail statistics.
func (s *Store) GetStats(ctx context.Context) (*JobStats, error) {
	stats := &JobStats{}

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(finding_count), 0) as findings,
			COUNT(CASE WHEN cached THEN 1 END) as cached,
			COALESCE(AVG(processing_ms), 0) as avg_ms
		FROM redaction_jobs`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalJobs,
		&stats.TotalFindings,
		&stats.CachedJobs,
		&stats.AvgProcessingMS,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get job stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks credentials in a database URL for logging.
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
