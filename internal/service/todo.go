// Package service provides business-logic services for todo items and
// authentication, delegating persistence to repository interfaces.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amoraitis/todolist/internal/clock"
	"github.com/amoraitis/todolist/internal/models"
)

// TodoRepository defines the persistence operations needed by the TodoService.
type TodoRepository interface {
	// Insert persists a new item with its file record, returning affected rows.
	Insert(ctx context.Context, item *models.TodoItem) (int64, error)
	// GetByDone retrieves the user's items filtered by completion flag.
	GetByDone(ctx context.Context, userID string, done bool) ([]models.TodoItem, error)
	// GetByTag retrieves the user's items carrying the given tag.
	GetByTag(ctx context.Context, userID, tag string) ([]models.TodoItem, error)
	// GetAddedSince retrieves the user's incomplete items created at or after cutoff.
	GetAddedSince(ctx context.Context, userID string, cutoff time.Time) ([]models.TodoItem, error)
	// GetDueBefore retrieves the user's incomplete items due at or before cutoff.
	GetDueBefore(ctx context.Context, userID string, cutoff time.Time) ([]models.TodoItem, error)
	// GetByDueMonth retrieves the user's incomplete items due in the given month of any year.
	GetByDueMonth(ctx context.Context, userID string, month int) ([]models.TodoItem, error)
	// Exists reports whether an item with the given ID exists, regardless of owner.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// GetByID fetches one item including its file record, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	// ToggleDone flips the completion flag of the user's item.
	ToggleDone(ctx context.Context, id uuid.UUID, userID string) (int64, error)
	// Update overwrites title, content and tags of the user's item.
	Update(ctx context.Context, item *models.TodoItem, userID string) (int64, error)
	// Delete removes the user's item together with its file record.
	Delete(ctx context.Context, id uuid.UUID, userID string) (int64, error)
	// SetFile stores path and size on the item's file record.
	SetFile(ctx context.Context, id uuid.UUID, userID, path string, size int64) (int64, error)
}

// TodoService implements all business operations over todo items, always
// scoped to the owning user. Expected failures ("not found", "not owned",
// "nothing changed") collapse to a false return with a nil error; only
// storage-layer failures surface as errors.
type TodoService struct {
	repo  TodoRepository
	clock clock.Clock
}

// NewTodoService constructs a TodoService with the provided repository and
// clock. The clock stamps creation timestamps and anchors the date-window
// queries.
func NewTodoService(repo TodoRepository, clk clock.Clock) *TodoService {
	return &TodoService{repo: repo, clock: clk}
}

// AddItem assigns a fresh ID, stamps the creation time from the clock, sets
// the owner and an empty file record, and persists the item. The passed-in
// item is mutated with the generated fields. Returns true iff the write
// affected at least one row.
func (s *TodoService) AddItem(ctx context.Context, item *models.TodoItem, user models.AuthenticatedUser) (bool, error) {
	item.ID = uuid.New()
	item.Done = false
	item.Added = s.clock.Now()
	item.UserID = user.ID
	item.File = &models.FileInfo{TodoID: item.ID, Path: "", Size: 0}

	affected, err := s.repo.Insert(ctx, item)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetIncompleteItems returns all items of the user with done = false.
func (s *TodoService) GetIncompleteItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	return s.repo.GetByDone(ctx, user.ID, false)
}

// GetCompleteItems returns all items of the user with done = true.
func (s *TodoService) GetCompleteItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	return s.repo.GetByDone(ctx, user.ID, true)
}

// GetItemsByTag returns the user's items whose tag collection contains tag,
// matched exactly and case-sensitively.
func (s *TodoService) GetItemsByTag(ctx context.Context, user models.AuthenticatedUser, tag string) ([]models.TodoItem, error) {
	return s.repo.GetByTag(ctx, user.ID, tag)
}

// GetRecentlyAddedItems returns the user's incomplete items created within
// the last 24 hours.
func (s *TodoService) GetRecentlyAddedItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	return s.repo.GetAddedSince(ctx, user.ID, s.clock.Now().AddDate(0, 0, -1))
}

// GetDueTo2DaysItems returns the user's incomplete items due within the next
// 24 hours. The window is one day despite the historical name; already
// overdue items are included since only the upper bound is checked.
func (s *TodoService) GetDueTo2DaysItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	return s.repo.GetDueBefore(ctx, user.ID, s.clock.Now().AddDate(0, 0, 1))
}

// GetMonthlyItems returns the user's incomplete items whose due date falls in
// the given calendar month. The year is ignored: an item due next January
// and one overdue since last January both match month 1.
func (s *TodoService) GetMonthlyItems(ctx context.Context, user models.AuthenticatedUser, month int) ([]models.TodoItem, error) {
	return s.repo.GetByDueMonth(ctx, user.ID, month)
}

// Exists reports whether an item with the given ID exists. It deliberately
// skips ownership scoping; callers use it only for lightweight validation.
func (s *TodoService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// GetItem loads an item by ID including its file record. Authorization is the
// caller's responsibility. Returns nil when the item does not exist.
func (s *TodoService) GetItem(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateDone flips the completion flag of the user's item. Returns true iff
// exactly one row was updated.
func (s *TodoService) UpdateDone(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error) {
	affected, err := s.repo.ToggleDone(ctx, id, user.ID)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// UpdateTodo overwrites title, content and tags of the user's item from
// editedItem. Returns true iff exactly one row was updated.
func (s *TodoService) UpdateTodo(ctx context.Context, editedItem *models.TodoItem, user models.AuthenticatedUser) (bool, error) {
	affected, err := s.repo.Update(ctx, editedItem, user.ID)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteTodo removes the user's item and its file record. An item that does
// not exist for that user is a no-op returning false.
func (s *TodoService) DeleteTodo(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error) {
	affected, err := s.repo.Delete(ctx, id, user.ID)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SaveFile records the stored file's path and size on the user's item.
// Returns true iff at least one row changed.
func (s *TodoService) SaveFile(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser, path string, size int64) (bool, error) {
	affected, err := s.repo.SetFile(ctx, id, user.ID, path, size)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
