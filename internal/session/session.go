// Package session tracks interactive shell sessions. Each session owns a
// working directory, an environment and at most one running command.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vos-cloud/vshell/internal/vpath"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrBusy     = errors.New("a command is already running in this session")
)

// Session is one shell session. Cwd and Env are only touched by the single
// in-flight command, so they carry no lock of their own; mu guards the
// running-command slot.
type Session struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id"`
	Cwd       string            `json:"cwd"`
	Env       map[string]string `json:"env"`
	CreatedAt time.Time         `json:"created_at"`

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// BeginCommand claims the session's command slot and derives a cancelable
// context for the command. The returned release must be called when the
// command finishes. ErrBusy is returned while another command runs.
func (s *Session) BeginCommand(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, nil, ErrBusy
	}
	cctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	release := func() {
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}
	return cctx, release, nil
}

// Interrupt cancels the in-flight command, if any. It reports whether a
// command was running.
func (s *Session) Interrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Manager holds live sessions.
type Manager struct {
	sessions sync.Map // id -> *Session
}

func NewManager() *Manager {
	return &Manager{}
}

// Create opens a session rooted at / for the given project.
func (m *Manager) Create(projectID string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Cwd:       vpath.Root,
		Env:       map[string]string{"HOME": vpath.Root, "SHELL": "/bin/vsh"},
		CreatedAt: time.Now().UTC(),
	}
	m.sessions.Store(s.ID, s)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Session), nil
}

// Remove interrupts and drops a session.
func (m *Manager) Remove(id string) error {
	v, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return ErrNotFound
	}
	v.(*Session).Interrupt()
	return nil
}

// List returns every live session, in no particular order.
func (m *Manager) List() []*Session {
	var out []*Session
	m.sessions.Range(func(_, v any) bool {
		out = append(out, v.(*Session))
		return true
	})
	return out
}
