package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	id1, err := s.Insert(ctx, "Buy milk", "May 10, 2025 at 10:53 PM")
	require.NoError(t, err)
	id2, err := s.Insert(ctx, "Call mom", "May 11, 2025 at 9:00 AM")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, id1, tasks[0].ID)
	assert.Equal(t, "Buy milk", tasks[0].Description)
	assert.Equal(t, "May 10, 2025 at 10:53 PM", tasks[0].Due)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, id2, tasks[1].ID)
}

func TestSetCompletedAndToggle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, "Water plants", "May 10, 2025 at 8:00 AM")
	require.NoError(t, err)

	require.NoError(t, s.SetCompleted(ctx, id, true))
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	got, err = s.Toggle(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	got, err = s.Toggle(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, "Temporary", "May 10, 2025 at 8:00 AM")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	assert.ErrorIs(t, s.SetCompleted(ctx, 404, true), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 404), ErrNotFound)
	_, err := s.Toggle(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, "Buy MILK", "May 10, 2025 at 8:00 AM")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "Call mom", "May 10, 2025 at 9:00 AM")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "milkshake", "May 10, 2025 at 10:00 AM")
	require.NoError(t, err)

	got, err := s.Search(ctx, "Milk")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Buy MILK", got[0].Description)
	assert.Equal(t, "milkshake", got[1].Description)

	// No match falls back to every task
	got, err = s.Search(ctx, "dentist")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCompletedNormalizedFromRawValues(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Rows written by other tools may leave completed NULL or use 0/1
	_, err := s.db.ExecContext(ctx, `INSERT INTO todos (item, completed, date) VALUES ('a', NULL, 'x'), ('b', 1, 'y'), ('c', 0, 'z')`)
	require.NoError(t, err)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.False(t, tasks[0].Completed)
	assert.True(t, tasks[1].Completed)
	assert.False(t, tasks[2].Completed)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Insert(ctx, "Persist me", "May 10, 2025 at 8:00 AM")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persist me", tasks[0].Description)
	assert.Equal(t, path, s.Path())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/todos.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "todos.db"), got)

	got, err = ExpandPath("/tmp/todos.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/todos.db", got)
}
