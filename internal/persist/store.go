// Package persist is the local-first persistence sidecar: a SQLite cache
// that is always authoritative, mirrored best-effort to a remote endpoint.
package persist

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/solstice-sh/pulse/internal/config"
	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/learning"
	"github.com/solstice-sh/pulse/internal/state"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const currentSchemaVersion = 1

// The two cache keys the sidecar owns.
const (
	keyLearningState   = "learning_state"
	keyToolCallHistory = "tool_call_history"
)

// Store provides access to the local SQLite cache.
type Store struct {
	db *sql.DB
}

// New creates a Store with the database at the default location.
func New() (*Store, error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "pulse.db")
	return Open(dbPath)
}

// Open opens a database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		// Table doesn't exist, create fresh schema
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	if version == currentSchemaVersion {
		return nil
	}

	// Forward-only migrations; the cache is derivable, so recreate.
	if version < currentSchemaVersion {
		if _, err := s.db.Exec(`
			DROP TABLE IF EXISTS cache;
			DROP TABLE IF EXISTS schema_version;
		`); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("recreate schema: %w", err)
		}
	}

	return nil
}

// setKey upserts one JSON-encoded cache value.
func (s *Store) setKey(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO cache (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC().Unix())
	return err
}

// getKey reads one cache value. Returns false when the key is absent.
func (s *Store) getKey(key string, out interface{}) (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SaveLearningState writes the learning state cache key.
func (s *Store) SaveLearningState(ls learning.LearningState) error {
	return s.setKey(keyLearningState, ls)
}

// LoadLearningState reads the learning state cache key. A nil result with
// a nil error means the cache is empty.
func (s *Store) LoadLearningState() (*learning.LearningState, error) {
	var ls learning.LearningState
	ok, err := s.getKey(keyLearningState, &ls)
	if err != nil || !ok {
		return nil, err
	}
	return &ls, nil
}

// SaveCallHistory writes the call-history cache key, capped before
// serialization.
func (s *Store) SaveCallHistory(records []state.CallRecord) error {
	if len(records) > constants.CallHistoryCapacity {
		records = records[:constants.CallHistoryCapacity]
	}
	return s.setKey(keyToolCallHistory, records)
}

// LoadCallHistory reads the call-history cache key. Nil means empty.
func (s *Store) LoadCallHistory() ([]state.CallRecord, error) {
	var records []state.CallRecord
	ok, err := s.getKey(keyToolCallHistory, &records)
	if err != nil || !ok {
		return nil, err
	}
	return records, nil
}
