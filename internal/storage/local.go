package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local is a FileStorage backed by the filesystem under a base directory.
type Local struct {
	basePath string
}

// NewLocal creates a Local storage rooted at basePath. The directory is
// created if missing.
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, err
	}
	return &Local{basePath: basePath}, nil
}

// SaveFile writes r at path. No overwrite: an existing file makes it return
// false untouched.
func (l *Local) SaveFile(_ context.Context, path string, r io.Reader) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	if r == nil {
		return false, ErrNilReader
	}

	full := filepath.Join(l.basePath, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return false, nil
	}

	// O_EXCL makes the no-overwrite check atomic with the create.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return false, nil
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return false, nil
	}
	return true, nil
}

// DeleteFile removes the file at path if present, then the containing folder
// when a hint is given. Absent files still count as success.
func (l *Local) DeleteFile(_ context.Context, path, containingFolder string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}

	full := filepath.Join(l.basePath, path)
	if _, err := os.Stat(full); err == nil {
		if err := os.Remove(full); err != nil {
			return false, nil
		}
	}

	if containingFolder != "" {
		if err := os.Remove(filepath.Join(l.basePath, containingFolder)); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// Exists probes for a regular file at path.
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	info, err := os.Stat(filepath.Join(l.basePath, path))
	if err != nil {
		return false, nil
	}
	return !info.IsDir(), nil
}

// GetFileInfo stats the file at path. Any failure yields nil.
func (l *Local) GetFileInfo(_ context.Context, path string) (*Info, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	info, err := os.Stat(filepath.Join(l.basePath, path))
	if err != nil || info.IsDir() {
		return nil, nil
	}
	return &Info{Path: path, Size: info.Size()}, nil
}

// GetFileStream opens the file at path for reading. I/O failure yields nil.
func (l *Local) GetFileStream(_ context.Context, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(filepath.Join(l.basePath, path))
	if err != nil {
		return nil, nil
	}
	return f, nil
}

// CleanDirectory deletes every file directly inside targetPath. Nested
// directories are left alone.
func (l *Local) CleanDirectory(_ context.Context, targetPath string) (bool, error) {
	if targetPath == "" {
		return false, ErrEmptyPath
	}

	dir := filepath.Join(l.basePath, targetPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, nil
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return false, nil
		}
	}
	return true, nil
}
