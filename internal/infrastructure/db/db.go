package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Schema creates every table the import pipeline writes to. It is safe to
// run repeatedly.
const Schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS import_jobs (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  source_key TEXT NOT NULL,
  status TEXT NOT NULL,
  total_rows BIGINT NOT NULL DEFAULT 0,
  processed_rows BIGINT NOT NULL DEFAULT 0,
  valid_emails BIGINT NOT NULL DEFAULT 0,
  invalid_emails BIGINT NOT NULL DEFAULT 0,
  duplicate_in_file BIGINT NOT NULL DEFAULT 0,
  already_exists_in_db BIGINT NOT NULL DEFAULT 0,
  total_emails_extracted BIGINT NOT NULL DEFAULT 0,
  created_invites BIGINT NOT NULL DEFAULT 0,
  failed_creates BIGINT NOT NULL DEFAULT 0,
  processed_emails BIGINT NOT NULL DEFAULT 0,
  completed_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CHECK (status IN ('UPLOADED','VALIDATING','PROCESSING','COMPLETED')),
  CHECK (processed_rows <= total_rows OR total_rows = 0)
);

CREATE TABLE IF NOT EXISTS import_job_items (
  id BIGSERIAL PRIMARY KEY,
  job_id UUID NOT NULL REFERENCES import_jobs(id) ON DELETE CASCADE,
  row_number INT NOT NULL,
  email_raw TEXT NOT NULL DEFAULT '',
  email_normalized TEXT NOT NULL DEFAULT '',
  institution_name_raw TEXT NOT NULL DEFAULT '',
  institution_id UUID,
  status TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  invite_id UUID,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CHECK (status IN ('INVALID_EMAIL','DUPLICATE_IN_FILE','ALREADY_EXISTS_DB','VALID','CREATED','FAILED_CREATE'))
);

CREATE INDEX IF NOT EXISTS idx_import_job_items_job_status ON import_job_items (job_id, status, id);
CREATE INDEX IF NOT EXISTS idx_import_job_items_job_email ON import_job_items (job_id, email_normalized);

CREATE TABLE IF NOT EXISTS institutions (
  id UUID PRIMARY KEY,
  legal_name TEXT NOT NULL,
  trading_name TEXT NOT NULL,
  registration_number TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_institutions_legal_name ON institutions (lower(legal_name));
CREATE INDEX IF NOT EXISTS idx_institutions_trading_name ON institutions (lower(trading_name));

CREATE TABLE IF NOT EXISTS invitations (
  id UUID PRIMARY KEY,
  email VARCHAR(320) NOT NULL UNIQUE,
  institution_id UUID NOT NULL REFERENCES institutions(id),
  role TEXT NOT NULL,
  token TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(Schema).Error; err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Open returns a gorm handle for row-level access and a pgx pool for bulk
// copy and session-scoped locks. Both target the same database.
func Open(ctx context.Context, databaseURL string) (*gorm.DB, *pgxpool.Pool, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	return db, pool, nil
}
