package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Options selects the database backend
type Options struct {
	// "sqlite" or "postgres"
	Type string
	// Directory for the sqlite file (Type=sqlite)
	DataDir string
	// Connection string (Type=postgres)
	DatabaseURL string
}

// Connect establishes a connection to the database and initializes the schema
func Connect(opts Options) error {
	var db *sqlx.DB
	var err error

	switch opts.Type {
	case "postgres":
		db, err = sqlx.Connect("postgres", opts.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
	case "sqlite", "":
		dataDir := opts.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath := filepath.Join(dataDir, "lithuaningo.db")
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type %q", opts.Type)
	}

	DB = db
	return initializeSchema()
}

// ConnectInMemory opens a fresh in-memory sqlite database. Test helper.
func ConnectInMemory() error {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	for _, stmt := range schemaStatements(DB.DriverName()) {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// schemaStatements returns the DDL for the given driver. Auto-increment
// syntax is the one thing the two backends disagree on.
func schemaStatements(driver string) []string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		idColumn = "SERIAL PRIMARY KEY"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sentences (
			id ` + idColumn + `,
			deck TEXT NOT NULL,
			text TEXT NOT NULL,
			translation TEXT NOT NULL,
			difficulty INTEGER DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(deck, text)
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id TEXT PRIMARY KEY,
			cards_reviewed INTEGER DEFAULT 0,
			cards_mastered INTEGER DEFAULT 0,
			streak_days INTEGER DEFAULT 0,
			last_active_day TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS challenge_stats (
			user_id TEXT NOT NULL,
			date_key TEXT NOT NULL,
			questions_asked INTEGER DEFAULT 0,
			correct_answers INTEGER DEFAULT 0,
			incorrect_answers INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date_key)
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			user_id TEXT NOT NULL,
			week TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, week)
		)`,
	}
}
