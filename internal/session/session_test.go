package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager()

	s := m.Create("proj")
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "proj", s.ProjectID)
	assert.Equal(t, "/", s.Cwd)
	assert.NotEmpty(t, s.Env["HOME"])

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	m := NewManager()
	s := m.Create("proj")

	require.NoError(t, m.Remove(s.ID))
	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Remove(s.ID), ErrNotFound)
}

func TestList(t *testing.T) {
	m := NewManager()
	m.Create("a")
	m.Create("b")

	assert.Len(t, m.List(), 2)
}

func TestBeginCommandSerializes(t *testing.T) {
	m := NewManager()
	s := m.Create("proj")

	ctx, release, err := s.BeginCommand(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctx.Err())

	// Second command while one runs is rejected.
	_, _, err = s.BeginCommand(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	release()
	_, release2, err := s.BeginCommand(context.Background())
	require.NoError(t, err)
	release2()
}

func TestInterrupt(t *testing.T) {
	m := NewManager()
	s := m.Create("proj")

	// Nothing running yet.
	assert.False(t, s.Interrupt())

	ctx, release, err := s.BeginCommand(context.Background())
	require.NoError(t, err)
	defer release()

	assert.True(t, s.Interrupt())
	assert.Error(t, ctx.Err())
}

func TestReleaseCancelsContext(t *testing.T) {
	m := NewManager()
	s := m.Create("proj")

	ctx, release, err := s.BeginCommand(context.Background())
	require.NoError(t, err)
	release()
	assert.Error(t, ctx.Err())
}
