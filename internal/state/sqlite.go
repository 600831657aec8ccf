package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamcutter/midna/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS installs (
    name         TEXT PRIMARY KEY,
    version      TEXT NOT NULL DEFAULT '',
    artifact     TEXT NOT NULL,
    path         TEXT NOT NULL,
    installed_at TEXT NOT NULL
);
`

var _ domain.History = (*SQLiteState)(nil)

type SQLiteState struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

func NewSQLite(dbPath string) (*SQLiteState, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create state directory: %v", domain.ErrStorage, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", domain.ErrStorage, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create schema: %v", domain.ErrStorage, err)
	}

	return &SQLiteState{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteState) Add(rec *domain.InstallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO installs (name, version, artifact, path, installed_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Name, rec.Version, rec.Artifact, rec.Path,
		rec.InstalledAt.UTC().Format(time.RFC3339))
	return err
}

// Get returns the record for name, or nil when it was never installed.
func (s *SQLiteState) Get(name string) (*domain.InstallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec domain.InstallRecord
	var installedAt string

	err := s.db.QueryRow(`
		SELECT name, version, artifact, path, installed_at
		FROM installs WHERE name = ?`, name).Scan(
		&rec.Name, &rec.Version, &rec.Artifact, &rec.Path, &installedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
	return &rec, nil
}

func (s *SQLiteState) List() ([]*domain.InstallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name, version, artifact, path, installed_at
		FROM installs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.InstallRecord
	for rows.Next() {
		var rec domain.InstallRecord
		var installedAt string

		if err := rows.Scan(&rec.Name, &rec.Version, &rec.Artifact, &rec.Path, &installedAt); err != nil {
			return nil, err
		}
		rec.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

func (s *SQLiteState) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM installs WHERE name = ?", name)
	return err
}

func (s *SQLiteState) Close() error {
	return s.db.Close()
}
