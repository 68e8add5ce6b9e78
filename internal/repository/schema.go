package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema evolution is additive only: the base table is created once and new
// columns are bolted on as nullable with defaults, so rows written by older
// builds keep loading.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS certificates (
		id BIGSERIAL PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		issued_at TEXT NOT NULL,
		expires_at TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS cert_type TEXT NOT NULL DEFAULT 'external'`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS topic TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS workflow_status TEXT NOT NULL DEFAULT 'active'`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS required_examiner_id INTEGER`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS required_examiner_name TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS exam_grade TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS exam_date TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS snapshot_full_name TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS snapshot_position TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS snapshot_module TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS snapshot_manager_id INTEGER`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS snapshot_manager_name TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS revoked_by_id INTEGER`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS revoked_by_name TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS revoked_reason TEXT`,
	`ALTER TABLE certificates ADD COLUMN IF NOT EXISTS revoked_at TIMESTAMPTZ`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id INTEGER PRIMARY KEY,
		full_name TEXT NOT NULL,
		position TEXT NOT NULL,
		module TEXT NOT NULL,
		manager_id INTEGER,
		controlled_module TEXT
	)`,
}

// EnsureSchema creates missing tables and columns. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
