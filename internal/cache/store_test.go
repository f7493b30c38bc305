package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"aoc/internal/puzzle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = puzzle.Key{Year: 2023, Day: 1}

func TestStore_Path(t *testing.T) {
	s := NewStore("/data", nil)
	assert.Equal(t, filepath.Join("/data", "2023", "01.txt"), s.Path(day1))
	assert.Equal(t, filepath.Join("/data", "2016", "25.txt"), s.Path(puzzle.Key{Year: 2016, Day: 25}))
}

func TestStore_MissThenHit(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	_, ok, err := s.Get(day1)
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := s.Has(day1)
	require.NoError(t, err)
	assert.False(t, has)

	input := "199\n200\n208\n"
	require.NoError(t, s.Put(day1, input))

	got, ok, err := s.Get(day1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, input, got)

	has, err = s.Has(day1)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestStore_EmptyFileIsMiss(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path(day1)), 0755))
	require.NoError(t, os.WriteFile(s.Path(day1), nil, 0644))

	_, ok, err := s.Get(day1)
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := s.Has(day1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_PutRejectsEmpty(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	assert.Error(t, s.Put(day1, ""))

	_, err := os.Stat(s.Path(day1))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_PutLeavesNoTempFiles(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	require.NoError(t, s.Put(day1, "abc"))

	entries, err := os.ReadDir(filepath.Dir(s.Path(day1)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "01.txt", entries[0].Name())
}

func TestStore_UnreadableEntry(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	// A directory in place of the entry file.
	require.NoError(t, os.MkdirAll(s.Path(day1), 0755))

	_, _, err := s.Get(day1)
	assert.Error(t, err)
}

func TestStore_ConcurrentReadersNeverSeePartialEntries(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	input := ""
	for i := 0; i < 2000; i++ {
		input += fmt.Sprintf("%d\n", i)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Put(day1, input))
		}()
	}
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got, ok, err := s.Get(day1)
				if !assert.NoError(t, err) {
					return
				}
				if ok {
					assert.Equal(t, input, got)
				}
			}
		}()
	}
	wg.Wait()
}
