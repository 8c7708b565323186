package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to the typed
// repositories.
type Store struct {
	db *sqlx.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Chunks returns the chunk repository backed by this store.
func (s *Store) Chunks() *ChunkStore {
	return &ChunkStore{db: s.db}
}

// States returns the chunk-state repository backed by this store.
func (s *Store) States() *StateStore {
	return &StateStore{db: s.db}
}

// Profiles returns the profile repository backed by this store.
func (s *Store) Profiles() *ProfileStore {
	return &ProfileStore{db: s.db}
}

// Events returns the event log backed by this store.
func (s *Store) Events() *EventStore {
	return &EventStore{db: s.db}
}

// applyPragmas configures SQLite for single-writer performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// createSchema creates the tables if they don't exist.
func createSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			normalized_text TEXT NOT NULL,
			translation TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL,
			kind TEXT NOT NULL,
			slots TEXT NOT NULL DEFAULT '[]',
			difficulty INTEGER NOT NULL,
			topics TEXT NOT NULL DEFAULT '[]',
			age_bands TEXT NOT NULL DEFAULT '[]',
			frequency_rank INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			UNIQUE(normalized_text, language)
		)`,
		`CREATE TABLE IF NOT EXISTS topic_counts (
			language TEXT NOT NULL,
			topic TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (language, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS chunk_states (
			learner_id TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			status TEXT NOT NULL,
			ease_factor REAL NOT NULL DEFAULT 0,
			interval_days REAL NOT NULL DEFAULT 0,
			next_review_at TIMESTAMP NOT NULL DEFAULT '0001-01-01T00:00:00Z',
			repetition_count INTEGER NOT NULL DEFAULT 0,
			total_encounters INTEGER NOT NULL DEFAULT 0,
			correct_first_try INTEGER NOT NULL DEFAULT 0,
			help_used_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT '0001-01-01T00:00:00Z',
			PRIMARY KEY (learner_id, chunk_id)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			learner_id TEXT PRIMARY KEY,
			language TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			learner_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_language_difficulty
			ON chunks(language, difficulty)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_created
			ON events(kind, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. CHATTERLING_DB environment variable
// 2. $XDG_DATA_HOME/chatterling/chatterling.db
// 3. ~/.local/share/chatterling/chatterling.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CHATTERLING_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "chatterling", "chatterling.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
