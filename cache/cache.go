// Package cache implements the compilation cache: a SQLite database inside
// the module's cache directory mapping source file hashes onto the module's
// emitted artifact.  The artifact is reusable only while every source file
// of the module still hashes to what it did when the artifact was stored.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is the data access layer over the cache database.
type Cache struct {
	db *sql.DB
}

// Open opens the cache database inside dir with WAL mode enabled, creating
// the directory and the database as needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Migrate creates the cache tables.  Idempotent.
func (c *Cache) Migrate() error {
	if _, err := c.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}

	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  module_id    INTEGER NOT NULL,
  path         TEXT NOT NULL,
  hash         TEXT NOT NULL,
  PRIMARY KEY (module_id, path)
);

CREATE TABLE IF NOT EXISTS artifacts (
  module_id    INTEGER PRIMARY KEY,
  artifact     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_module ON files(module_id);
`

// LookupArtifact returns the stored artifact for the module identified by
// modID, provided the stored file hashes exactly match fileHashes.  The
// second result reports whether the lookup hit.
func (c *Cache) LookupArtifact(modID uint, fileHashes map[string]string) (string, bool, error) {
	rows, err := c.db.Query("SELECT path, hash FROM files WHERE module_id = ?", int64(modID))
	if err != nil {
		return "", false, fmt.Errorf("query file hashes: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return "", false, fmt.Errorf("scan file hash: %w", err)
		}

		stored[path] = hash
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("query file hashes: %w", err)
	}

	if len(stored) != len(fileHashes) {
		return "", false, nil
	}
	for path, hash := range fileHashes {
		if stored[path] != hash {
			return "", false, nil
		}
	}

	var artifact string
	err = c.db.QueryRow("SELECT artifact FROM artifacts WHERE module_id = ?", int64(modID)).Scan(&artifact)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query artifact: %w", err)
	}

	return artifact, true, nil
}

// StoreArtifact stores the artifact for the module identified by modID
// along with the hashes of the source files it was built from, replacing
// whatever the cache held for the module before.
func (c *Cache) StoreArtifact(modID uint, fileHashes map[string]string, artifact string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files WHERE module_id = ?", int64(modID)); err != nil {
		return fmt.Errorf("clear file hashes: %w", err)
	}

	for path, hash := range fileHashes {
		if _, err := tx.Exec(
			"INSERT INTO files (module_id, path, hash) VALUES (?, ?, ?)",
			int64(modID), path, hash,
		); err != nil {
			return fmt.Errorf("insert file hash: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO artifacts (module_id, artifact) VALUES (?, ?)",
		int64(modID), artifact,
	); err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}

	return tx.Commit()
}

// HashFile computes the content hash of the file at path.
func HashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return fmt.Sprintf("%x", sha256.Sum256(content)), nil
}
