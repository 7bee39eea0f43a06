package http

import (
	"io"
	"net/http"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/amoraitis/todolist/internal/models"
	"github.com/amoraitis/todolist/internal/storage"
)

// maxUploadSize caps multipart upload requests at 50 MB.
const maxUploadSize = 50 << 20

// FileHandler handles attachment upload and download for todo items.
type FileHandler struct {
	// TodoService checks ownership and records the stored file's metadata.
	TodoService TodoService
	// Storage persists and serves the attachment bytes.
	Storage storage.FileStorage
	// Logger records storage failures that are swallowed into responses.
	Logger *zap.Logger
}

// Upload handles POST /api/todoitems/{todoId} with a multipart "file" field.
// An item holds at most one file: the item's directory is cleaned before the
// new file is written, so an upload replaces any previous attachment.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// filepath.Base strips any directory components a client smuggles in.
	storagePath := id.String() + "/" + filepath.Base(header.Filename)

	if _, err := h.Storage.CleanDirectory(r.Context(), id.String()); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	saved, err := h.Storage.SaveFile(r.Context(), storagePath, file)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !saved {
		http.Error(w, "couldn't create or replace file", http.StatusBadRequest)
		return
	}

	succeeded, err := h.TodoService.SaveFile(r.Context(), id, user, storagePath, header.Size)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !succeeded {
		// The bytes landed but the item is absent or not owned; drop them
		// again so storage does not leak orphans.
		if ok, err := h.Storage.DeleteFile(r.Context(), storagePath, id.String()); err != nil || !ok {
			h.Logger.Warn("failed to remove orphaned upload",
				zap.String("path", storagePath), zap.Error(err))
		}
		http.Error(w, "couldn't create or replace file", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, models.FileInfo{TodoID: id, Path: storagePath, Size: header.Size})
}

// Download handles GET /api/todoitems/{id}/file, streaming the stored
// attachment. Items without an uploaded file answer 404.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
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
	if item == nil || item.File == nil || item.File.Path == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	stream, err := h.Storage.GetFileStream(r.Context(), item.File.Path)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if stream == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(item.File.Path)+`"`)
	if _, err := io.Copy(w, stream); err != nil {
		h.Logger.Warn("failed to stream file",
			zap.String("path", item.File.Path), zap.Error(err))
	}
}
