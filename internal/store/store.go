// Package store persists virtual filesystem entries.
//
// Entries are keyed by (project, app path). A folder's existence may be
// implicit: a file at /a/b/c.txt implies folders /a and /a/b whether or not
// rows for them exist. Callers that need implicit folders synthesize them
// from prefix listings.
package store

import (
	"context"
	"time"

	"github.com/vos-cloud/vshell/internal/vpath"
)

// Kind discriminates files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// File is one stored entry. Folders never carry content or data.
type File struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content,omitempty"`
	IsBinary  bool      `json:"is_binary,omitempty"`
	Data      []byte    `json:"data,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDir reports whether the entry is a folder.
func (f *File) IsDir() bool { return f.Kind == KindFolder }

// Size returns the byte length of the entry's payload.
func (f *File) Size() int64 {
	if f.IsBinary {
		return int64(len(f.Data))
	}
	return int64(len(f.Content))
}

// Bytes returns the entry's payload as raw bytes.
func (f *File) Bytes() []byte {
	if f.IsBinary {
		return f.Data
	}
	return []byte(f.Content)
}

// Store is the persistence contract the shell core consumes. Writes follow
// last-writer-wins on colliding paths; there is no locking.
type Store interface {
	// GetByPath returns the entry at path, or (nil, nil) when absent.
	GetByPath(ctx context.Context, projectID, path string) (*File, error)

	// ListByPrefix returns every entry strictly below the directory path
	// prefix ("/" lists the whole project). The entry at prefix itself is
	// not included.
	ListByPrefix(ctx context.Context, projectID, prefix string) ([]File, error)

	// Create inserts f, replacing any existing entry at the same path.
	// Name and UpdatedAt are derived when zero.
	Create(ctx context.Context, f File) (*File, error)

	// CreateBulk inserts many entries in one call.
	CreateBulk(ctx context.Context, projectID string, files []File) error

	// Save updates content, binary payload and timestamp of an existing entry.
	Save(ctx context.Context, f *File) error

	// Delete removes the entry with the given id; deleting a folder cascades
	// to every descendant.
	Delete(ctx context.Context, id int64) error

	Close() error
}

// fill derives Name and UpdatedAt for an entry about to be written.
func fill(f *File) {
	f.Path = vpath.Normalize(f.Path)
	if f.Name == "" {
		f.Name = vpath.Base(f.Path)
	}
	if f.Kind == "" {
		f.Kind = KindFile
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now().UTC()
	}
}

// underPrefix reports whether path lies strictly below the directory prefix.
func underPrefix(path, prefix string) bool {
	if prefix == vpath.Root {
		return path != vpath.Root
	}
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}
