package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aoc/internal/puzzle"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2023, 12, 1, 5, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Key: puzzle.Key{Year: 2023, Day: 1}, IssuedAt: base, Status: 200, Bytes: 42},
		{Key: puzzle.Key{Year: 2023, Day: 2}, IssuedAt: base.Add(5 * time.Minute), Status: 404, Error: "not found"},
		{Key: puzzle.Key{Year: 2023, Day: 1}, IssuedAt: base.Add(10 * time.Minute), Error: "connection refused"},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(ctx, e))
	}

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []Entry{entries[2], entries[1], entries[0]}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Entry{}, "ID")); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
	for _, e := range got {
		assert.NotEmpty(t, e.ID)
	}

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 2023, limited[0].Key.Year)
	assert.Equal(t, "connection refused", limited[0].Error)
}

func TestStore_ForKey(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2022, 12, 5, 5, 0, 0, 0, time.UTC)
	key := puzzle.Key{Year: 2022, Day: 5}

	require.NoError(t, s.Record(ctx, Entry{Key: key, IssuedAt: base.Add(time.Hour), Status: 200}))
	require.NoError(t, s.Record(ctx, Entry{Key: key, IssuedAt: base, Status: 500}))
	require.NoError(t, s.Record(ctx, Entry{Key: puzzle.Key{Year: 2022, Day: 6}, IssuedAt: base}))

	got, err := s.ForKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 500, got[0].Status)
	assert.Equal(t, 200, got[1].Status)
}

func TestStore_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Entry{ID: "fixed", Key: puzzle.Key{Year: 2021, Day: 3}, IssuedAt: time.Unix(1638507600, 0)}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fixed", got[0].ID)
	assert.Equal(t, path, s.Path())
}
