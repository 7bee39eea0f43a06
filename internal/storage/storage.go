// Package storage abstracts byte-level storage of todo attachments,
// addressed by relative path strings under a configured base location.
//
// The failure model is deliberately asymmetric: empty paths and nil readers
// are programmer errors and fail loud with an error; runtime I/O trouble
// fails quiet with a false or nil result.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrEmptyPath is returned when an operation receives an empty path.
	ErrEmptyPath = errors.New("storage: empty path")
	// ErrNilReader is returned when SaveFile receives a nil reader.
	ErrNilReader = errors.New("storage: nil reader")
)

// Info describes a stored file.
type Info struct {
	// Path is the relative path the file is addressed by.
	Path string
	// Size is the file's length in bytes.
	Size int64
}

// FileStorage stores attachment bytes under relative paths.
type FileStorage interface {
	// SaveFile writes the reader's content at path, creating parent
	// directories as needed. Returns false without writing when a file
	// already exists at path, or when an I/O error occurs.
	SaveFile(ctx context.Context, path string, r io.Reader) (bool, error)
	// DeleteFile removes the file at path if present, then removes
	// containingFolder when non-empty. Returns true even when the file did
	// not exist; false only on I/O failure.
	DeleteFile(ctx context.Context, path, containingFolder string) (bool, error)
	// Exists probes whether a file is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
	// GetFileInfo returns the stored file's path and size, or nil on any
	// failure including absence.
	GetFileInfo(ctx context.Context, path string) (*Info, error)
	// GetFileStream opens the stored file for reading, or returns nil on
	// I/O failure. The caller closes the stream.
	GetFileStream(ctx context.Context, path string) (io.ReadCloser, error)
	// CleanDirectory deletes every file directly inside targetPath,
	// non-recursively. Returns false when the directory does not exist or
	// an I/O error occurs.
	CleanDirectory(ctx context.Context, targetPath string) (bool, error)
}
