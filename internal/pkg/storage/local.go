package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeChunkSize is the buffer size used when streaming uploads to disk.
const writeChunkSize = 8192

// LocalStore stores media files under a single root directory. All paths
// passed to its methods are relative to that root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local store rooted at root
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the store's base directory
func (s *LocalStore) Root() string {
	return s.root
}

// Abs resolves a relative path against the store root
func (s *LocalStore) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Save streams reader to the file at rel, creating parent directories and
// overwriting an existing file.
func (s *LocalStore) Save(ctx context.Context, rel string, reader io.Reader) error {
	fullPath := s.Abs(rel)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, writeChunkSize)
	if _, err := io.CopyBuffer(file, reader, buf); err != nil {
		os.Remove(fullPath) // cleanup on error
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Remove deletes the file at rel, tolerating an already-missing file
func (s *LocalStore) Remove(ctx context.Context, rel string) error {
	if err := os.Remove(s.Abs(rel)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks whether a file or directory exists at rel
func (s *LocalStore) Exists(rel string) bool {
	_, err := os.Stat(s.Abs(rel))
	return err == nil
}

// MoveTree copies every direct entry of oldDir into newDir, creating newDir
// with parents, then removes oldDir if deleteOld is set. A missing oldDir on
// removal is tolerated. Not atomic: a crash mid-copy leaves both trees.
func (s *LocalStore) MoveTree(ctx context.Context, oldDir, newDir string, deleteOld bool) error {
	src := s.Abs(oldDir)
	dst := s.Abs(newDir)

	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if err := copyEntry(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	if deleteOld {
		if err := os.RemoveAll(src); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove old directory: %w", err)
		}
	}

	return nil
}

// RemoveTree recursively removes the directory at rel, tolerating a missing one
func (s *LocalStore) RemoveTree(ctx context.Context, rel string) error {
	if err := os.RemoveAll(s.Abs(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	return nil
}

func copyEntry(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, info.Mode()); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
		}
		for _, entry := range entries {
			if err := copyEntry(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	return copyFile(src, dst, info)
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	// Preserve timestamps so moved trees keep their upload times
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
