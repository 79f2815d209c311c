package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/A-zanke/alumni-matcher/internal/profile"
	"github.com/A-zanke/alumni-matcher/internal/store/migrations"
)

const alumniRoleCondition = "lower(trim(role)) = 'alumni'"

// SQLiteStore keeps profiles as JSON documents in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite store path is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Name() string { return "sqlite:" + s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs every *.up.sql file whose numeric prefix is above the
// recorded schema version.
func (s *SQLiteStore) migrate(ctx context.Context, fsys embed.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		s.logger.Debug("applied migration", zap.String("name", name))
	}

	return nil
}

func (s *SQLiteStore) Student(ctx context.Context, id string) (*profile.Profile, error) {
	profiles, err := s.query(ctx, "SELECT document FROM profiles WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if profiles.Len() == 0 {
		return nil, nil
	}
	return profiles.Items[0], nil
}

func (s *SQLiteStore) Alumni(ctx context.Context) (*profile.Profiles, error) {
	return s.query(ctx, "SELECT document FROM profiles WHERE "+alumniRoleCondition+" ORDER BY rowid")
}

func (s *SQLiteStore) Students(ctx context.Context) (*profile.Profiles, error) {
	return s.query(ctx, "SELECT document FROM profiles WHERE NOT ("+alumniRoleCondition+") ORDER BY rowid")
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) (*profile.Profiles, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var docs []any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, &profile.DecodeError{Origin: s.Name(), Index: len(docs), Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return profile.DecodeAll(s.Name(), docs)
}

// Import inserts or replaces the given profiles in one transaction and
// returns how many were written.
func (s *SQLiteStore) Import(ctx context.Context, profiles *profile.Profiles) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO profiles (id, role, document) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET role = excluded.role, document = excluded.document, imported_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range profiles.Items {
		if strings.TrimSpace(p.ID) == "" {
			s.logger.Warn("skipping profile without id", zap.String("name", p.Name))
			continue
		}
		doc, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("marshalling profile %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Role, string(doc)); err != nil {
			return 0, fmt.Errorf("writing profile %s: %w", p.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return written, nil
}
