package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the sqlite connection used as the durability boundary
// for users, topics, debates, arguments, achievements and the
// matchmaking queue.
type Database struct {
	db *sql.DB
}

// New creates a new database connection and applies pending migrations
func New(dataDir string) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "debatearena.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// sqlite allows a single writer; a bounded pool avoids SQLITE_BUSY
	// under concurrent submissions
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return d, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// RunMigrations applies all registered migrations that have not been
// applied yet
func (d *Database) RunMigrations() error {
	manager := NewMigrationManager(d.db)
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize migrations table: %v", err)
	}
	return manager.Apply(builtinMigrations)
}
