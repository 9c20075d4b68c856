package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vos-cloud/vshell/internal/vpath"
)

// Memory is an in-process Store used by tests and ephemeral sessions.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	files  map[string]*File // key: projectID + "\x00" + path
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]*File)}
}

func key(projectID, path string) string {
	return projectID + "\x00" + vpath.Normalize(path)
}

func (m *Memory) GetByPath(ctx context.Context, projectID, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[key(projectID, path)]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (m *Memory) ListByPrefix(ctx context.Context, projectID, prefix string) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = vpath.Normalize(prefix)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []File
	for k, f := range m.files {
		if !strings.HasPrefix(k, projectID+"\x00") {
			continue
		}
		if underPrefix(f.Path, prefix) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Memory) Create(ctx context.Context, f File) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fill(&f)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	f.ID = m.nextID
	m.files[key(f.ProjectID, f.Path)] = &f
	cp := f
	return &cp, nil
}

func (m *Memory) CreateBulk(ctx context.Context, projectID string, files []File) error {
	for _, f := range files {
		f.ProjectID = projectID
		if _, err := m.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Save(ctx context.Context, f *File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	m.files[key(f.ProjectID, f.Path)] = &cp
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var target *File
	for _, f := range m.files {
		if f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		return nil
	}
	delete(m.files, key(target.ProjectID, target.Path))
	if target.IsDir() {
		for k, f := range m.files {
			if strings.HasPrefix(k, target.ProjectID+"\x00") && underPrefix(f.Path, target.Path) {
				delete(m.files, k)
			}
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
