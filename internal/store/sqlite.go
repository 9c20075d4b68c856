package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vos-cloud/vshell/internal/vpath"
	_ "modernc.org/sqlite"
)

// SQLite is the production Store, backed by a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	is_binary INTEGER NOT NULL DEFAULT 0,
	data BLOB,
	updated_at INTEGER NOT NULL,
	UNIQUE(project_id, path)
);
CREATE INDEX IF NOT EXISTS idx_files_project_path ON files(project_id, path);
`

// OpenSQLite opens (and initializes) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

const fileCols = "id, project_id, path, name, kind, content, is_binary, data, updated_at"

func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	var f File
	var isBin int64
	var updated int64
	err := row.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Name, &f.Kind, &f.Content, &isBin, &f.Data, &updated)
	if err != nil {
		return nil, err
	}
	f.IsBinary = isBin != 0
	f.UpdatedAt = time.Unix(0, updated).UTC()
	return &f, nil
}

func (s *SQLite) GetByPath(ctx context.Context, projectID, path string) (*File, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileCols+" FROM files WHERE project_id = ? AND path = ?",
		projectID, vpath.Normalize(path))
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return f, nil
}

func (s *SQLite) ListByPrefix(ctx context.Context, projectID, prefix string) ([]File, error) {
	prefix = vpath.Normalize(prefix)
	like := likePrefix(prefix)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileCols+" FROM files WHERE project_id = ? AND path LIKE ? ESCAPE '\\' ORDER BY path",
		projectID, like)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// likePrefix builds a LIKE pattern matching paths strictly below the
// directory prefix, escaping LIKE metacharacters in the prefix itself.
func likePrefix(prefix string) string {
	if prefix == vpath.Root {
		prefix = ""
	}
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return esc + "/%"
}

const upsert = `
INSERT INTO files (project_id, path, name, kind, content, is_binary, data, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_id, path) DO UPDATE SET
	name = excluded.name,
	kind = excluded.kind,
	content = excluded.content,
	is_binary = excluded.is_binary,
	data = excluded.data,
	updated_at = excluded.updated_at
`

func (s *SQLite) Create(ctx context.Context, f File) (*File, error) {
	fill(&f)
	_, err := s.db.ExecContext(ctx, upsert,
		f.ProjectID, f.Path, f.Name, f.Kind, f.Content, boolInt(f.IsBinary), f.Data, f.UpdatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.Path, err)
	}
	return s.GetByPath(ctx, f.ProjectID, f.Path)
}

func (s *SQLite) CreateBulk(ctx context.Context, projectID string, files []File) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range files {
		f := files[i]
		f.ProjectID = projectID
		fill(&f)
		if _, err := stmt.ExecContext(ctx,
			f.ProjectID, f.Path, f.Name, f.Kind, f.Content, boolInt(f.IsBinary), f.Data, f.UpdatedAt.UnixNano()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk create %s: %w", f.Path, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Save(ctx context.Context, f *File) error {
	f.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		"UPDATE files SET content = ?, is_binary = ?, data = ?, updated_at = ? WHERE id = ?",
		f.Content, boolInt(f.IsBinary), f.Data, f.UpdatedAt.UnixNano(), f.ID)
	if err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileCols+" FROM files WHERE id = ?", id)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete %s: %w", f.Path, err)
	}
	if f.IsDir() {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM files WHERE project_id = ? AND path LIKE ? ESCAPE '\\'",
			f.ProjectID, likePrefix(f.Path)); err != nil {
			return fmt.Errorf("cascade delete %s: %w", f.Path, err)
		}
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
