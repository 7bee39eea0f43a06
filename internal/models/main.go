// Package models defines the core data structures for users and todo items.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Validation bounds enforced at the request boundary.
const (
	// TitleMinLength is the minimum number of characters in a todo title.
	TitleMinLength = 3
	// TitleMaxLength is the maximum number of characters in a todo title.
	TitleMaxLength = 50
	// ContentMinLength is the minimum number of characters in a non-empty content.
	ContentMinLength = 15
	// ContentMaxLength is the maximum number of characters in a content.
	ContentMaxLength = 200
	// MaxTags is the maximum number of tags a todo item can carry.
	MaxTags = 3
)

// TodoItem is a user-owned task record. Every query and mutation over todo
// items is scoped by UserID: a user can only observe or modify items they own.
type TodoItem struct {
	// ID is the unique identifier, generated server-side on creation.
	ID uuid.UUID `json:"id"`
	// UserID is the identifier of the owning user.
	UserID string `json:"userId"`
	// Title is the short description of the task (3-50 characters).
	Title string `json:"title"`
	// Content is an optional longer description (15-200 characters when present).
	Content string `json:"content,omitempty"`
	// Done reports whether the task has been completed.
	Done bool `json:"done"`
	// Added is the creation timestamp, stamped exactly once by the clock.
	Added time.Time `json:"added"`
	// DueTo is the user-supplied due timestamp.
	DueTo time.Time `json:"dueTo"`
	// Tags holds up to MaxTags short labels used for filtering. Tags are
	// persisted as a comma-delimited string; the join/split lives in the
	// repository, never here.
	Tags []string `json:"tags"`
	// File is the attachment metadata, populated by lookups that include it.
	File *FileInfo `json:"file,omitempty"`
}

// FileInfo is attachment metadata associated one-to-one with a todo item.
// A record with an empty Path means "no file uploaded yet".
type FileInfo struct {
	// TodoID is the owning item's identifier, also the primary key.
	TodoID uuid.UUID `json:"todoId"`
	// Path is the relative storage path of the uploaded file.
	Path string `json:"path"`
	// Size is the stored file's length in bytes, 0 when absent.
	Size int64 `json:"size"`
}

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login address chosen by the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Admin marks the bootstrap administrator account.
	Admin bool
}

// AuthenticatedUser is the narrow view of a user the todo service consumes.
// Handlers resolve it from the request context after token validation.
type AuthenticatedUser struct {
	// ID is the authenticated user's identifier.
	ID string
}
