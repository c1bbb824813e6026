// Package store persists workspace registry metadata in a SQLite database
// under the Sidekick home directory, surviving process restarts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"sidekick/internal/workspace"
)

// WorkspaceStore handles SQLite persistence for registered workspaces.
type WorkspaceStore struct {
	db   *sql.DB
	path string
}

// Open opens or creates the workspace database at dbPath.
func Open(dbPath string) (*WorkspaceStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &WorkspaceStore{db: db, path: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS workspaces (
			workspace_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			root_path TEXT NOT NULL,
			icon_color TEXT NOT NULL,
			last_seen TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_root_path ON workspaces(root_path);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *WorkspaceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts or updates a workspace config. Registration order is
// preserved by rowid, so updates must not reinsert the row.
func (s *WorkspaceStore) Save(cfg workspace.Config) error {
	_, err := s.db.Exec(`
		INSERT INTO workspaces (workspace_id, display_name, root_path, icon_color, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(workspace_id) DO UPDATE SET
			display_name = excluded.display_name,
			root_path = excluded.root_path,
			icon_color = excluded.icon_color,
			last_seen = excluded.last_seen
	`, cfg.WorkspaceID, cfg.DisplayName, cfg.RootPath, cfg.IconColor, cfg.LastSeen)
	return err
}

// Delete removes a workspace by id. Returns false if the id was unknown.
func (s *WorkspaceStore) Delete(workspaceID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM workspaces WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the config for a workspace id, or nil if not registered.
func (s *WorkspaceStore) Get(workspaceID string) (*workspace.Config, error) {
	row := s.db.QueryRow(`
		SELECT workspace_id, display_name, root_path, icon_color, last_seen
		FROM workspaces WHERE workspace_id = ?
	`, workspaceID)

	var cfg workspace.Config
	if err := row.Scan(&cfg.WorkspaceID, &cfg.DisplayName, &cfg.RootPath, &cfg.IconColor, &cfg.LastSeen); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// GetByRootPath returns the config registered for a root path, or nil.
func (s *WorkspaceStore) GetByRootPath(rootPath string) (*workspace.Config, error) {
	row := s.db.QueryRow(`
		SELECT workspace_id, display_name, root_path, icon_color, last_seen
		FROM workspaces WHERE root_path = ?
	`, rootPath)

	var cfg workspace.Config
	if err := row.Scan(&cfg.WorkspaceID, &cfg.DisplayName, &cfg.RootPath, &cfg.IconColor, &cfg.LastSeen); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// List returns all workspace configs in registration order.
func (s *WorkspaceStore) List() ([]workspace.Config, error) {
	rows, err := s.db.Query(`
		SELECT workspace_id, display_name, root_path, icon_color, last_seen
		FROM workspaces ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []workspace.Config
	for rows.Next() {
		var cfg workspace.Config
		if err := rows.Scan(&cfg.WorkspaceID, &cfg.DisplayName, &cfg.RootPath, &cfg.IconColor, &cfg.LastSeen); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}
