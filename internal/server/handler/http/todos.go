package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amoraitis/todolist/internal/middleware"
	"github.com/amoraitis/todolist/internal/models"
	"github.com/amoraitis/todolist/internal/storage"
)

// TodoService defines the interface for todo item operations required by the
// HTTP handlers. Every ownership-scoped operation receives the resolved
// current user; boolean false means "not found, not yours, or no change".
type TodoService interface {
	AddItem(ctx context.Context, item *models.TodoItem, user models.AuthenticatedUser) (bool, error)
	GetIncompleteItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error)
	GetCompleteItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error)
	GetItemsByTag(ctx context.Context, user models.AuthenticatedUser, tag string) ([]models.TodoItem, error)
	GetRecentlyAddedItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error)
	GetDueTo2DaysItems(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error)
	GetMonthlyItems(ctx context.Context, user models.AuthenticatedUser, month int) ([]models.TodoItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	UpdateDone(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error)
	UpdateTodo(ctx context.Context, editedItem *models.TodoItem, user models.AuthenticatedUser) (bool, error)
	DeleteTodo(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error)
	SaveFile(ctx context.Context, id uuid.UUID, user models.AuthenticatedUser, path string, size int64) (bool, error)
}

// TodoHandler handles HTTP requests for todo item CRUD and queries.
type TodoHandler struct {
	// TodoService performs the underlying item operations.
	TodoService TodoService
	// Storage removes the physical attachment when an item is deleted.
	Storage storage.FileStorage
	// Logger records request-level failures handlers swallow into responses.
	Logger *zap.Logger
}

// tagsPattern accepts up to three comma-separated alphanumeric/hyphen/underscore tokens.
var tagsPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9_\-]*,?){0,3}$`)

// todoItemRequest represents the JSON payload for creating or updating items.
type todoItemRequest struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Done          *bool     `json:"done"`
	DuetoDateTime time.Time `json:"duetoDateTime"`
	Tags          string    `json:"tags"`
}

// validate checks the request against the model bounds. The tag cap is
// enforced here, at the input boundary, not on the entity.
func (r *todoItemRequest) validate() error {
	if n := utf8.RuneCountInString(r.Title); n < models.TitleMinLength || n > models.TitleMaxLength {
		return fmt.Errorf("title must be %d-%d characters", models.TitleMinLength, models.TitleMaxLength)
	}
	if r.Content != "" {
		if n := utf8.RuneCountInString(r.Content); n < models.ContentMinLength || n > models.ContentMaxLength {
			return fmt.Errorf("content must be %d-%d characters", models.ContentMinLength, models.ContentMaxLength)
		}
	}
	if !tagsPattern.MatchString(r.Tags) || len(r.tags()) > models.MaxTags {
		return fmt.Errorf("maximum %d comma separated tags", models.MaxTags)
	}
	return nil
}

// tags splits the delimited input into tokens, dropping empty entries.
func (r *todoItemRequest) tags() []string {
	var tags []string
	for _, t := range strings.Split(r.Tags, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// GetAll handles GET /api/todoitems: all complete and incomplete items of
// the current user.
func (h *TodoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items := make([]models.TodoItem, 0)
	complete, err := h.TodoService.GetCompleteItems(r.Context(), user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	incomplete, err := h.TodoService.GetIncompleteItems(r.Context(), user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	items = append(items, complete...)
	items = append(items, incomplete...)

	writeJSON(w, http.StatusOK, items)
}

// GetComplete handles GET /api/todoitems/complete.
func (h *TodoHandler) GetComplete(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.TodoService.GetCompleteItems)
}

// GetIncomplete handles GET /api/todoitems/incomplete.
func (h *TodoHandler) GetIncomplete(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.TodoService.GetIncompleteItems)
}

// GetByTag handles GET /api/todoitems/bytag/{tag}.
func (h *TodoHandler) GetByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		http.Error(w, "tag required", http.StatusBadRequest)
		return
	}
	h.list(w, r, func(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
		return h.TodoService.GetItemsByTag(ctx, user, tag)
	})
}

// Home handles GET /api/todoitems/home: the dashboard aggregate of items
// added in the last day plus items due within one.
func (h *TodoHandler) Home(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	recent, err := h.TodoService.GetRecentlyAddedItems(r.Context(), user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	dueSoon, err := h.TodoService.GetDueTo2DaysItems(r.Context(), user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.TodoItem{
		"recentlyAddedTodos": emptyIfNil(recent),
		"closeDueToTodos":    emptyIfNil(dueSoon),
	})
}

// Monthly handles GET /api/todoitems/monthly/{month}: incomplete items whose
// due date falls in the given month of any year.
func (h *TodoHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "month must be 1-12", http.StatusBadRequest)
		return
	}
	h.list(w, r, func(ctx context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
		return h.TodoService.GetMonthlyItems(ctx, user, month)
	})
}

// GetByID handles GET /api/todoitems/{id}. Lookup is by ID only; the item's
// file metadata is included.
func (h *TodoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.TodoService.GetItem(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Create handles POST /api/todoitems. The server assigns the ID, creation
// timestamp, owner and empty file record.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req todoItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item := &models.TodoItem{
		Title:   req.Title,
		Content: req.Content,
		DueTo:   req.DuetoDateTime,
		Tags:    req.tags(),
	}
	created, err := h.TodoService.AddItem(r.Context(), item, user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !created {
		http.Error(w, "could not add item", http.StatusBadRequest)
		return
	}

	w.Header().Set("Location", "/api/todoitems/"+item.ID.String())
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/todoitems/{id}. A body carrying the done flag
// toggles completion; otherwise title, content and tags are overwritten.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req todoItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var (
		updated bool
		err     error
	)
	if req.Done != nil {
		updated, err = h.TodoService.UpdateDone(r.Context(), id, user)
	} else {
		if err := req.validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		edited := &models.TodoItem{
			ID:      id,
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.tags(),
		}
		updated, err = h.TodoService.UpdateTodo(r.Context(), edited, user)
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "could not update todo", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleDone handles PATCH /api/todoitems/{id}/{status}, the toggle-done
// shortcut. The status segment is accepted for route compatibility; the
// operation always flips the flag.
func (h *TodoHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	updated, err := h.TodoService.UpdateDone(r.Context(), id, user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "could not update todo", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/todoitems/{id}: removes the item with its file
// record, then the physical file from storage.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.TodoService.GetItem(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	deleted, err := h.TodoService.DeleteTodo(r.Context(), id, user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "could not delete item", http.StatusNotFound)
		return
	}

	// The rows are gone; losing the physical file is logged, not surfaced.
	if item.File != nil && item.File.Path != "" {
		if ok, err := h.Storage.DeleteFile(r.Context(), item.File.Path, id.String()); err != nil || !ok {
			h.Logger.Warn("failed to delete stored file",
				zap.String("path", item.File.Path), zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// list runs an ownership-scoped query and writes the result.
func (h *TodoHandler) list(w http.ResponseWriter, r *http.Request, query func(context.Context, models.AuthenticatedUser) ([]models.TodoItem, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := query(r.Context(), user)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(items))
}

// currentUser resolves the authenticated user from the request context,
// answering 401 when resolution fails.
func currentUser(w http.ResponseWriter, r *http.Request) (models.AuthenticatedUser, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "authorization required", http.StatusUnauthorized)
	}
	return user, ok
}

// parseID reads a UUID path parameter. Empty or malformed identifiers are a
// request error, distinct from "not found".
func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil || id == uuid.Nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func emptyIfNil(items []models.TodoItem) []models.TodoItem {
	if items == nil {
		return []models.TodoItem{}
	}
	return items
}
