package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amoraitis/todolist/internal/middleware"
	"github.com/amoraitis/todolist/internal/models"
	handler "github.com/amoraitis/todolist/internal/server/handler/http"
	"github.com/amoraitis/todolist/internal/storage"
)

// fakeTodoService scripts the handler-facing item operations and records the
// arguments it was called with.
type fakeTodoService struct {
	items     []models.TodoItem
	item      *models.TodoItem
	ok        bool
	err       error
	lastUser  models.AuthenticatedUser
	lastID    uuid.UUID
	lastItem  *models.TodoItem
	lastPath  string
	lastSize  int64
	lastTag   string
	lastMonth int
}

func (f *fakeTodoService) AddItem(_ context.Context, item *models.TodoItem, user models.AuthenticatedUser) (bool, error) {
	item.ID = uuid.New()
	f.lastItem, f.lastUser = item, user
	return f.ok, f.err
}

func (f *fakeTodoService) GetIncompleteItems(_ context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	f.lastUser = user
	return f.items, f.err
}

func (f *fakeTodoService) GetCompleteItems(_ context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	f.lastUser = user
	return f.items, f.err
}

func (f *fakeTodoService) GetItemsByTag(_ context.Context, user models.AuthenticatedUser, tag string) ([]models.TodoItem, error) {
	f.lastUser, f.lastTag = user, tag
	return f.items, f.err
}

func (f *fakeTodoService) GetRecentlyAddedItems(_ context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	f.lastUser = user
	return f.items, f.err
}

func (f *fakeTodoService) GetDueTo2DaysItems(_ context.Context, user models.AuthenticatedUser) ([]models.TodoItem, error) {
	f.lastUser = user
	return f.items, f.err
}

func (f *fakeTodoService) GetMonthlyItems(_ context.Context, user models.AuthenticatedUser, month int) ([]models.TodoItem, error) {
	f.lastUser, f.lastMonth = user, month
	return f.items, f.err
}

func (f *fakeTodoService) GetItem(_ context.Context, id uuid.UUID) (*models.TodoItem, error) {
	f.lastID = id
	return f.item, f.err
}

func (f *fakeTodoService) UpdateDone(_ context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error) {
	f.lastID, f.lastUser = id, user
	return f.ok, f.err
}

func (f *fakeTodoService) UpdateTodo(_ context.Context, editedItem *models.TodoItem, user models.AuthenticatedUser) (bool, error) {
	f.lastItem, f.lastUser = editedItem, user
	return f.ok, f.err
}

func (f *fakeTodoService) DeleteTodo(_ context.Context, id uuid.UUID, user models.AuthenticatedUser) (bool, error) {
	f.lastID, f.lastUser = id, user
	return f.ok, f.err
}

func (f *fakeTodoService) SaveFile(_ context.Context, id uuid.UUID, user models.AuthenticatedUser, path string, size int64) (bool, error) {
	f.lastID, f.lastUser, f.lastPath, f.lastSize = id, user, path, size
	return f.ok, f.err
}

// fakeStorage scripts the storage layer for handler tests.
type fakeStorage struct {
	saved    bool
	deleted  bool
	content  string
	saveErr  error
	cleanErr error

	savedPath   string
	deletedPath string
	cleanedDir  string
}

func (f *fakeStorage) SaveFile(_ context.Context, path string, r io.Reader) (bool, error) {
	f.savedPath = path
	_, _ = io.ReadAll(r)
	return f.saved, f.saveErr
}

func (f *fakeStorage) DeleteFile(_ context.Context, path, _ string) (bool, error) {
	f.deletedPath = path
	return f.deleted, nil
}

func (f *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	return f.content != "", nil
}

func (f *fakeStorage) GetFileInfo(_ context.Context, path string) (*storage.Info, error) {
	if f.content == "" {
		return nil, nil
	}
	return &storage.Info{Path: path, Size: int64(len(f.content))}, nil
}

func (f *fakeStorage) GetFileStream(_ context.Context, path string) (io.ReadCloser, error) {
	if f.content == "" {
		return nil, nil
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeStorage) CleanDirectory(_ context.Context, dir string) (bool, error) {
	f.cleanedDir = dir
	return true, f.cleanErr
}

// authedRequest builds a request carrying an authenticated user and the given
// chi URL parameters.
func authedRequest(method, target string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.WithUser(req.Context(), "user-1")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	return req.WithContext(ctx)
}

func newTodoHandler(svc *fakeTodoService, st *fakeStorage) *handler.TodoHandler {
	return &handler.TodoHandler{TodoService: svc, Storage: st, Logger: zap.NewNop()}
}

func TestGetAll_CombinesCompleteAndIncomplete(t *testing.T) {
	svc := &fakeTodoService{items: []models.TodoItem{{Title: "One"}}}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.GetAll(rec, authedRequest(http.MethodGet, "/api/todoitems", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var items []models.TodoItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	// The fake returns the same slice for both queries.
	if len(items) != 2 {
		t.Errorf("items = %d; want 2", len(items))
	}
	if svc.lastUser.ID != "user-1" {
		t.Errorf("user = %q; want user-1", svc.lastUser.ID)
	}
}

func TestList_Unauthenticated(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/todoitems/incomplete", nil)
	rec := httptest.NewRecorder()
	h.GetIncomplete(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}

func TestList_EmptyResultIsJSONArray(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.GetIncomplete(rec, authedRequest(http.MethodGet, "/api/todoitems/incomplete", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q; want []", got)
	}
}

func TestGetByTag(t *testing.T) {
	svc := &fakeTodoService{items: []models.TodoItem{{Title: "Tagged"}}}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.GetByTag(rec, authedRequest(http.MethodGet, "/api/todoitems/bytag/work", nil, map[string]string{"tag": "work"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if svc.lastTag != "work" {
		t.Errorf("tag = %q; want work", svc.lastTag)
	}
}

func TestHome_ResponseShape(t *testing.T) {
	svc := &fakeTodoService{items: []models.TodoItem{{Title: "Urgent"}}}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.Home(rec, authedRequest(http.MethodGet, "/api/todoitems/home", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body map[string][]models.TodoItem
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if _, ok := body["recentlyAddedTodos"]; !ok {
		t.Error("missing recentlyAddedTodos key")
	}
	if _, ok := body["closeDueToTodos"]; !ok {
		t.Error("missing closeDueToTodos key")
	}
}

func TestMonthly_InvalidMonth(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})

	for _, month := range []string{"0", "13", "abc"} {
		rec := httptest.NewRecorder()
		h.Monthly(rec, authedRequest(http.MethodGet, "/api/todoitems/monthly/"+month, nil, map[string]string{"month": month}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("month %q: status = %d; want 400", month, rec.Code)
		}
	}
}

func TestMonthly_Valid(t *testing.T) {
	svc := &fakeTodoService{}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.Monthly(rec, authedRequest(http.MethodGet, "/api/todoitems/monthly/6", nil, map[string]string{"month": "6"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if svc.lastMonth != 6 {
		t.Errorf("month = %d; want 6", svc.lastMonth)
	}
}

func TestGetByID(t *testing.T) {
	id := uuid.New()
	svc := &fakeTodoService{item: &models.TodoItem{ID: id, Title: "Found item"}}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.GetByID(rec, authedRequest(http.MethodGet, "/api/todoitems/"+id.String(), nil, map[string]string{"id": id.String()}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var item models.TodoItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if item.ID != id {
		t.Errorf("id = %s; want %s", item.ID, id)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.GetByID(rec, authedRequest(http.MethodGet, "/api/todoitems/"+id.String(), nil, map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestGetByID_BadIdentifiers(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})

	for _, raw := range []string{"not-a-uuid", uuid.Nil.String()} {
		rec := httptest.NewRecorder()
		h.GetByID(rec, authedRequest(http.MethodGet, "/api/todoitems/"+raw, nil, map[string]string{"id": raw}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d; want 400", raw, rec.Code)
		}
	}
}

func TestCreate_Success(t *testing.T) {
	svc := &fakeTodoService{ok: true}
	h := newTodoHandler(svc, &fakeStorage{})

	body := `{"title":"Cleaning","content":"Clean the kitchen please.","duetoDateTime":"2024-07-01T10:00:00Z","tags":"home,work"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/todoitems", strings.NewReader(body), nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201; body %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/api/todoitems/"+svc.lastItem.ID.String() {
		t.Errorf("Location = %q", loc)
	}
	if len(svc.lastItem.Tags) != 2 || svc.lastItem.Tags[0] != "home" {
		t.Errorf("tags = %v; want [home work]", svc.lastItem.Tags)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"title too short", `{"title":"ab"}`},
		{"title too long", `{"title":"` + strings.Repeat("x", 51) + `"}`},
		{"content too short", `{"title":"Cleaning","content":"tiny"}`},
		{"content too long", `{"title":"Cleaning","content":"` + strings.Repeat("x", 201) + `"}`},
		{"too many tags", `{"title":"Cleaning","tags":"a,b,c,d"}`},
		{"bad tag characters", `{"title":"Cleaning","tags":"sp ace"}`},
		{"malformed json", `{"title":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTodoHandler(&fakeTodoService{ok: true}, &fakeStorage{})
			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/todoitems", strings.NewReader(tc.body), nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", rec.Code)
			}
		})
	}
}

func TestCreate_EmptyContentAllowed(t *testing.T) {
	svc := &fakeTodoService{ok: true}
	h := newTodoHandler(svc, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/todoitems", strings.NewReader(`{"title":"Cleaning"}`), nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d; want 201; body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdate_DoneTogglesWithoutValidation(t *testing.T) {
	svc := &fakeTodoService{ok: true}
	h := newTodoHandler(svc, &fakeStorage{})
	id := uuid.New()

	// Title would fail validation; carrying done skips it entirely.
	body := `{"done":true,"title":"x"}`
	rec := httptest.NewRecorder()
	h.Update(rec, authedRequest(http.MethodPut, "/api/todoitems/"+id.String(), strings.NewReader(body), map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204; body %s", rec.Code, rec.Body.String())
	}
	if svc.lastID != id {
		t.Errorf("toggled id = %s; want %s", svc.lastID, id)
	}
}

func TestUpdate_EditFields(t *testing.T) {
	svc := &fakeTodoService{ok: true}
	h := newTodoHandler(svc, &fakeStorage{})
	id := uuid.New()

	body := `{"title":"New title","content":"Updated content goes here.","tags":"work"}`
	rec := httptest.NewRecorder()
	h.Update(rec, authedRequest(http.MethodPut, "/api/todoitems/"+id.String(), strings.NewReader(body), map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204; body %s", rec.Code, rec.Body.String())
	}
	if svc.lastItem.ID != id || svc.lastItem.Title != "New title" {
		t.Errorf("edited = %+v", svc.lastItem)
	}
}

func TestUpdate_NotOwned(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{ok: false}, &fakeStorage{})
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Update(rec, authedRequest(http.MethodPut, "/api/todoitems/"+id.String(), strings.NewReader(`{"done":true}`), map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestToggleDone(t *testing.T) {
	svc := &fakeTodoService{ok: true}
	h := newTodoHandler(svc, &fakeStorage{})
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.ToggleDone(rec, authedRequest(http.MethodPatch, "/api/todoitems/"+id.String()+"/done", nil,
		map[string]string{"id": id.String(), "status": "done"}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", rec.Code)
	}
	if svc.lastID != id {
		t.Errorf("toggled id = %s; want %s", svc.lastID, id)
	}
}

func TestDelete_RemovesStoredFile(t *testing.T) {
	id := uuid.New()
	filePath := id.String() + "/a.txt"
	svc := &fakeTodoService{
		ok:   true,
		item: &models.TodoItem{ID: id, Title: "With attachment", File: &models.FileInfo{TodoID: id, Path: filePath, Size: 3}},
	}
	st := &fakeStorage{deleted: true}
	h := newTodoHandler(svc, st)

	rec := httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodDelete, "/api/todoitems/"+id.String(), nil, map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", rec.Code)
	}
	if st.deletedPath != filePath {
		t.Errorf("deleted path = %q; want %q", st.deletedPath, filePath)
	}
}

func TestDelete_NotFound(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{}, &fakeStorage{})
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodDelete, "/api/todoitems/"+id.String(), nil, map[string]string{"id": id.String()}))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestServiceErrorYields500(t *testing.T) {
	h := newTodoHandler(&fakeTodoService{err: errors.New("db down")}, &fakeStorage{})

	rec := httptest.NewRecorder()
	h.GetIncomplete(rec, authedRequest(http.MethodGet, "/api/todoitems/incomplete", nil, nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", rec.Code)
	}
}
