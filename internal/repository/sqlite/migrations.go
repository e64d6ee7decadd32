package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ExpectedSchemaVersion is the schema version this build requires
const ExpectedSchemaVersion = 2

// Migration is one forward schema step, tracked through PRAGMA user_version
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Create transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					workspace_id INTEGER NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
					category TEXT NOT NULL DEFAULT '',
					transaction_date TEXT NOT NULL,
					description TEXT,
					company TEXT,
					project TEXT,
					is_reimbursement INTEGER NOT NULL DEFAULT 0,
					reimbursement_status TEXT,
					reimbursed_to TEXT,
					is_transfer INTEGER NOT NULL DEFAULT 0,
					from_company TEXT,
					to_company TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_workspace_date ON transactions(workspace_id, transaction_date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Create budgets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					workspace_id INTEGER NOT NULL,
					category TEXT NOT NULL,
					amount TEXT NOT NULL,
					period TEXT NOT NULL CHECK (period IN ('monthly', 'quarterly', 'annual')),
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					type TEXT NOT NULL DEFAULT 'expense',
					company TEXT NOT NULL DEFAULT '',
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					UNIQUE (workspace_id, category, period, year, month, type, company)
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the applied schema version
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the stored schema version
func (s *Store) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Debug().
			Int("version", migration.Version).
			Str("description", migration.Description).
			Msg("Applied migration")
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}
