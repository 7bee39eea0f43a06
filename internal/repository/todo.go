// Package repository provides persistence implementations for the todo and
// user services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amoraitis/todolist/internal/models"
)

// todoColumns is the column list shared by every item query.
const todoColumns = `id, user_id, title, content, done, added, due_to, tags`

// PostgresTodoRepository implements todo item persistence against PostgreSQL.
type PostgresTodoRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresTodoRepository creates a new PostgresTodoRepository using the
// provided *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresTodoRepository(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db}
}

// encodeTags flattens the in-memory tag collection to the delimited string
// stored in the tags column. The codec lives here and nowhere else.
func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

// decodeTags parses the stored delimited string back into a tag collection.
// An empty column yields a nil slice.
func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Insert persists a new todo item together with its (empty) file record in a
// single transaction. Returns the number of affected rows.
func (r *PostgresTodoRepository) Insert(ctx context.Context, item *models.TodoItem) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO todos (id, user_id, title, content, done, added, due_to, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.UserID, item.Title, item.Content, item.Done, item.Added, item.DueTo, encodeTags(item.Tags))
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	affected, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `
		INSERT INTO files (todo_id, path, size) VALUES ($1, $2, $3)
	`, item.File.TodoID, item.File.Path, item.File.Size)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	fileAffected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return affected + fileAffected, nil
}

// GetByDone fetches all items of the given user with the given completion flag.
func (r *PostgresTodoRepository) GetByDone(ctx context.Context, userID string, done bool) ([]models.TodoItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos WHERE user_id = $1 AND done = $2
	`, userID, done)
	if err != nil {
		return nil, fmt.Errorf("GetByDone: %w", err)
	}
	return scanItems(rows)
}

// GetByTag fetches the user's items whose tag collection contains tag,
// matched as an exact case-sensitive token.
func (r *PostgresTodoRepository) GetByTag(ctx context.Context, userID, tag string) ([]models.TodoItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE user_id = $1 AND $2 = ANY(string_to_array(tags, ','))
	`, userID, tag)
	if err != nil {
		return nil, fmt.Errorf("GetByTag: %w", err)
	}
	return scanItems(rows)
}

// GetAddedSince fetches the user's incomplete items created at or after cutoff.
func (r *PostgresTodoRepository) GetAddedSince(ctx context.Context, userID string, cutoff time.Time) ([]models.TodoItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE user_id = $1 AND done = false AND added >= $2
	`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("GetAddedSince: %w", err)
	}
	return scanItems(rows)
}

// GetDueBefore fetches the user's incomplete items due at or before cutoff.
func (r *PostgresTodoRepository) GetDueBefore(ctx context.Context, userID string, cutoff time.Time) ([]models.TodoItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE user_id = $1 AND done = false AND due_to <= $2
	`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("GetDueBefore: %w", err)
	}
	return scanItems(rows)
}

// GetByDueMonth fetches the user's incomplete items whose due date falls in
// the given calendar month, in any year.
func (r *PostgresTodoRepository) GetByDueMonth(ctx context.Context, userID string, month int) ([]models.TodoItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE user_id = $1 AND done = false AND EXTRACT(MONTH FROM due_to) = $2
	`, userID, month)
	if err != nil {
		return nil, fmt.Errorf("GetByDueMonth: %w", err)
	}
	return scanItems(rows)
}

// Exists checks whether an item with the given ID exists, regardless of owner.
func (r *PostgresTodoRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM todos WHERE id = $1)`,
		id,
	).Scan(&exists)
	return exists, err
}

// GetByID fetches a single item by ID including its file record, regardless
// of owner. Returns (nil, nil) when the item does not exist.
func (r *PostgresTodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	var (
		item models.TodoItem
		tags string
		path sql.NullString
		size sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT t.id, t.user_id, t.title, t.content, t.done, t.added, t.due_to, t.tags, f.path, f.size
		FROM todos t
		LEFT JOIN files f ON f.todo_id = t.id
		WHERE t.id = $1
	`, id).Scan(&item.ID, &item.UserID, &item.Title, &item.Content, &item.Done,
		&item.Added, &item.DueTo, &tags, &path, &size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	item.Tags = decodeTags(tags)
	item.File = &models.FileInfo{TodoID: item.ID, Path: path.String, Size: size.Int64}
	return &item, nil
}

// ToggleDone flips the completion flag of the user's item. Returns the number
// of updated rows: 0 when the item does not exist or is not owned by userID.
func (r *PostgresTodoRepository) ToggleDone(ctx context.Context, id uuid.UUID, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE todos SET done = NOT done WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("ToggleDone: %w", err)
	}
	return res.RowsAffected()
}

// Update overwrites title, content and tags of the user's item. Returns the
// number of updated rows.
func (r *PostgresTodoRepository) Update(ctx context.Context, item *models.TodoItem, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE todos SET title = $1, content = $2, tags = $3 WHERE id = $4 AND user_id = $5
	`, item.Title, item.Content, encodeTags(item.Tags), item.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("Update: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the user's item and its file record in one transaction.
// Returns the total number of deleted rows: 0 when nothing matched.
func (r *PostgresTodoRepository) Delete(ctx context.Context, id uuid.UUID, userID string) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM files WHERE todo_id = $1
		AND EXISTS (SELECT 1 FROM todos WHERE id = $1 AND user_id = $2)
	`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete file: %w", err)
	}
	fileAffected, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `
		DELETE FROM todos WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete todo: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return affected + fileAffected, nil
}

// SetFile stores the uploaded file's path and size on the item's file record,
// guarded by ownership. Returns the number of updated rows.
func (r *PostgresTodoRepository) SetFile(ctx context.Context, id uuid.UUID, userID, path string, size int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE files SET path = $1, size = $2 WHERE todo_id = $3
		AND EXISTS (SELECT 1 FROM todos WHERE id = $3 AND user_id = $4)
	`, path, size, id, userID)
	if err != nil {
		return 0, fmt.Errorf("SetFile: %w", err)
	}
	return res.RowsAffected()
}

// scanItems drains rows into a slice of todo items, decoding the tags column.
func scanItems(rows *sql.Rows) ([]models.TodoItem, error) {
	defer rows.Close()

	var items []models.TodoItem
	for rows.Next() {
		var (
			item models.TodoItem
			tags string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Content,
			&item.Done, &item.Added, &item.DueTo, &tags); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		item.Tags = decodeTags(tags)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}
