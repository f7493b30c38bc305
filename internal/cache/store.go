// Package cache stores puzzle inputs on disk, one file per puzzle.
//
// Layout:
//
//	{root}/
//	  {year}/
//	    {day:02}.txt   raw input, no framing
//
// Entries are immutable once written: inputs never change for a given user,
// so a present entry is never refetched.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aoc/internal/puzzle"

	"go.uber.org/zap"
)

// Store implements the input cache using the filesystem.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a cache rooted at root.
func NewStore(root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger}
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the deterministic location of the entry for key.
func (s *Store) Path(key puzzle.Key) string {
	return filepath.Join(s.root, fmt.Sprintf("%d", key.Year), fmt.Sprintf("%02d.txt", key.Day))
}

// Has checks if a non-empty entry exists for key.
func (s *Store) Has(key puzzle.Key) (bool, error) {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking cache entry: %w", err)
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// Get returns the cached input for key. An empty file counts as a miss.
func (s *Store) Get(key puzzle.Key) (string, bool, error) {
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache miss", zap.Stringer("key", key))
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading cache entry %s: %w", path, err)
	}
	if len(data) == 0 {
		s.logger.Warn("ignoring empty cache entry", zap.String("path", path))
		return "", false, nil
	}

	s.logger.Debug("cache hit", zap.Stringer("key", key), zap.Int("bytes", len(data)))
	return string(data), true, nil
}

// Put stores text for key. The file is written to a temp name and renamed
// into place so a concurrent reader never observes a partial entry.
func (s *Store) Put(key puzzle.Key, text string) error {
	if text == "" {
		return fmt.Errorf("refusing to cache empty input for %s", key)
	}

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := writeFileAtomic(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", path, err)
	}

	s.logger.Info("cached input", zap.Stringer("key", key), zap.String("path", path), zap.Int("bytes", len(text)))
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
