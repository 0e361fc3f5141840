package content

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Store is the raw key-value storage behind [Content]. Keys are motion
// names, values serialized curves.
type Store interface {
	// Get returns ErrNotFound for unknown keys.
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	// Delete returns ErrNotFound for unknown keys.
	Delete(key string) error
	// Keys lists all keys, most recently modified first.
	Keys() ([]string, error)
	Close() error
}

const ext = ".json"

// FileStore keeps every motion in its own JSON file inside a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the managed directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+ext)
}

func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return data, err
}

// Put writes data to a temporary file first and renames it into place, so
// readers and the directory watcher never see a partial file.
func (s *FileStore) Put(key string, data []byte) error {
	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return err
}

func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	type file struct {
		key   string
		mtime int64
	}
	var files []file
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed since ReadDir.
			continue
		}
		files = append(files, file{strings.TrimSuffix(name, ext), info.ModTime().UnixNano()})
	}
	slices.SortFunc(files, func(a, b file) int {
		if c := cmp.Compare(b.mtime, a.mtime); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.key
	}
	return keys, nil
}

func (s *FileStore) Close() error { return nil }

// Rename renames the file of from to to.
func (s *FileStore) Rename(from, to string) error {
	err := os.Rename(s.path(from), s.path(to))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, from)
	}
	return err
}
