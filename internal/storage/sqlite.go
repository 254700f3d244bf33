package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// Compile-time interface check.
var _ domain.PrefStore = (*SQLiteStore)(nil)

const createPrefsTable = `CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps preferences in a single-table SQLite database so they
// survive restarts.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLite opens (or creates) the preference database at path.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}
	// One connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createPrefsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating prefs table: %w", err)
	}

	log.Debug("prefs db ready at %s", path)
	return &SQLiteStore{db: db, log: log}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading pref %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) set(ctx context.Context, key, v string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, v)
	if err != nil {
		return fmt.Errorf("writing pref %s: %w", key, err)
	}
	s.log.Debug("set pref %s=%s", key, v)
	return nil
}

// GetFloat returns a float preference or the fallback.
func (s *SQLiteStore) GetFloat(ctx context.Context, key string, fallback float64) (float64, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	return decodeFloat(key, raw)
}

// SetFloat stores a float preference.
func (s *SQLiteStore) SetFloat(ctx context.Context, key string, v float64) error {
	return s.set(ctx, key, encodeFloat(v))
}

// GetInt returns an int preference or the fallback.
func (s *SQLiteStore) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	return decodeInt(key, raw)
}

// SetInt stores an int preference.
func (s *SQLiteStore) SetInt(ctx context.Context, key string, v int) error {
	return s.set(ctx, key, encodeInt(v))
}

// GetString returns a string preference or the fallback.
func (s *SQLiteStore) GetString(ctx context.Context, key, fallback string) (string, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	return raw, nil
}

// SetString stores a string preference.
func (s *SQLiteStore) SetString(ctx context.Context, key, v string) error {
	return s.set(ctx, key, v)
}

// HasKey reports whether a preference is set.
func (s *SQLiteStore) HasKey(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.get(ctx, key)
	return ok, err
}

// Delete removes a preference. Deleting a missing key returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting pref %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting pref %s: %w", key, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.log.Debug("deleted pref %s", key)
	return nil
}

// Keys returns every stored key in sorted order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM prefs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing prefs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("listing prefs: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
