package database

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
)

// Migration represents a schema migration applied in version order.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema history. Never reorder or edit an
// applied entry; append a new version instead.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_fixes",
		SQL: `
			CREATE TABLE IF NOT EXISTS fixes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				tag TEXT NOT NULL,
				time INTEGER NOT NULL,
				x REAL NOT NULL,
				y REAL NOT NULL,
				varxy REAL DEFAULT 0,
				nbs INTEGER DEFAULT 0,
				outlier INTEGER DEFAULT 0,
				night TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_fixes_tag_time ON fixes(tag, time);
		`,
	},
	{
		Version: 2,
		Name:    "create_residence_patches",
		SQL: `
			CREATE TABLE IF NOT EXISTS residence_patches (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				tag TEXT NOT NULL,
				patch INTEGER NOT NULL,
				start_time INTEGER NOT NULL,
				end_time INTEGER NOT NULL,
				duration_s REAL NOT NULL,
				n_fixes INTEGER NOT NULL,
				x REAL NOT NULL,
				y REAL NOT NULL,
				area_sqm REAL DEFAULT 0,
				extent_wkt TEXT DEFAULT '',
				mean_varxy REAL DEFAULT 0,
				sd_varxy REAL DEFAULT 0,
				mean_speed REAL DEFAULT 0,
				sd_speed REAL DEFAULT 0,
				algo_version TEXT DEFAULT 'v1',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(tag, patch, start_time)
			);
			CREATE INDEX IF NOT EXISTS idx_patches_tag ON residence_patches(tag, start_time);
		`,
	},
	{
		Version: 3,
		Name:    "create_pipeline_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS pipeline_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				uuid TEXT NOT NULL UNIQUE,
				analyzer TEXT NOT NULL,
				mode TEXT NOT NULL DEFAULT 'full',
				tag TEXT DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				progress_percent REAL DEFAULT 0,
				total_tags INTEGER DEFAULT 0,
				processed_tags INTEGER DEFAULT 0,
				failed_tags INTEGER DEFAULT 0,
				error_message TEXT DEFAULT '',
				result_summary TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}

// Migrate applies all pending migrations in version order.
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
