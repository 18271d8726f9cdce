package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/neo/debatearena_backend/internal/logging"
)

// Migration represents a database migration
type Migration struct {
	ID   int
	Name string
	SQL  string
}

// MigrationRecord represents a record of a migration that has been applied
type MigrationRecord struct {
	ID        int
	Name      string
	AppliedAt time.Time
}

// builtinMigrations is the ordered schema history for the service.
// New migrations are appended with the next ID; applied entries must
// never be edited.
var builtinMigrations = []Migration{
	{
		ID:   1,
		Name: "create_core_tables",
		SQL: `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			debates INTEGER NOT NULL DEFAULT 0,
			points INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			avatar_id INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			difficulty INTEGER NOT NULL DEFAULT 3
		);

		CREATE TABLE IF NOT EXISTS debates (
			id TEXT PRIMARY KEY,
			topic_id INTEGER NOT NULL REFERENCES topics(id),
			affirmative_user_id TEXT NOT NULL REFERENCES users(id),
			opposition_user_id TEXT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'active',
			current_turn TEXT NOT NULL DEFAULT 'affirmative',
			current_round INTEGER NOT NULL DEFAULT 1,
			max_rounds INTEGER NOT NULL DEFAULT 3,
			time_per_turn INTEGER NOT NULL DEFAULT 300,
			winner_id TEXT,
			judging_feedback TEXT,
			background_index INTEGER NOT NULL DEFAULT 1,
			start_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			end_time TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_debates_affirmative ON debates(affirmative_user_id);
		CREATE INDEX IF NOT EXISTS idx_debates_opposition ON debates(opposition_user_id);

		CREATE TABLE IF NOT EXISTS arguments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			debate_id TEXT NOT NULL REFERENCES debates(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			round INTEGER NOT NULL,
			side TEXT NOT NULL,
			content TEXT NOT NULL,
			submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_arguments_debate ON arguments(debate_id);

		CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			earned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS matchmaking_queue (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			min_level INTEGER NOT NULL DEFAULT 1,
			max_level INTEGER NOT NULL DEFAULT 100,
			preferred_topic_ids TEXT NOT NULL DEFAULT '[]',
			joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
	},
}

// MigrationManager handles database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{
		db: db,
	}
}

// Initialize creates the migrations table if it doesn't exist
func (m *MigrationManager) Initialize() error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := m.db.Exec(query)
	return err
}

// AppliedMigrations returns the records of migrations already applied
func (m *MigrationManager) AppliedMigrations() (map[int]MigrationRecord, error) {
	rows, err := m.db.Query(`SELECT id, name, applied_at FROM migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %v", err)
	}
	defer rows.Close()

	applied := make(map[int]MigrationRecord)
	for rows.Next() {
		var record MigrationRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %v", err)
		}
		applied[record.ID] = record
	}

	return applied, rows.Err()
}

// Apply runs every migration that has not been recorded yet, each inside
// its own transaction
func (m *MigrationManager) Apply(migrations []Migration) error {
	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, migration := range sorted {
		if _, ok := applied[migration.ID]; ok {
			continue
		}

		tx, err := m.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %v", migration.ID, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %v", migration.ID, migration.Name, err)
		}

		if _, err := tx.Exec(`INSERT INTO migrations (id, name) VALUES (?, ?)`, migration.ID, migration.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %v", migration.ID, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %v", migration.ID, err)
		}

		logging.LogDatabaseEvent("migration_applied", "migrations", map[string]interface{}{
			"id":   migration.ID,
			"name": migration.Name,
		})
	}

	return nil
}
