// Package http provides HTTP routing and middleware configuration
// for the todo service.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/amoraitis/todolist/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the todo API.
// It applies request logging globally, JSON content-type enforcement on the
// JSON-bodied routes, and bearer-token authentication on everything under
// /api/todoitems.
//
// Routes:
//
//	POST  /api/auth/register            → authHandler.Register
//	POST  /api/auth/login               → authHandler.Login
//	GET   /api/todoitems                → todoHandler.GetAll
//	GET   /api/todoitems/complete       → todoHandler.GetComplete
//	GET   /api/todoitems/incomplete     → todoHandler.GetIncomplete
//	GET   /api/todoitems/bytag/{tag}    → todoHandler.GetByTag
//	GET   /api/todoitems/home           → todoHandler.Home
//	GET   /api/todoitems/monthly/{month}→ todoHandler.Monthly
//	GET   /api/todoitems/{id}           → todoHandler.GetByID
//	POST  /api/todoitems                → todoHandler.Create
//	PUT   /api/todoitems/{id}           → todoHandler.Update
//	PATCH /api/todoitems/{id}/{status}  → todoHandler.ToggleDone
//	DELETE /api/todoitems/{id}          → todoHandler.Delete
//	POST  /api/todoitems/{id}           → fileHandler.Upload (multipart)
//	GET   /api/todoitems/{id}/file      → fileHandler.Download
func NewRouter(
	authHandler *AuthHandler,
	todoHandler *TodoHandler,
	fileHandler *FileHandler,
	logger *zap.Logger,
	jwtSecret []byte,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected group: requires a valid bearer token
		r.Route("/todoitems", func(r chi.Router) {
			r.Use(middleware.WithAuth(jwtSecret))

			r.Get("/", todoHandler.GetAll)
			r.Get("/complete", todoHandler.GetComplete)
			r.Get("/incomplete", todoHandler.GetIncomplete)
			r.Get("/bytag/{tag}", todoHandler.GetByTag)
			r.Get("/home", todoHandler.Home)
			r.Get("/monthly/{month}", todoHandler.Monthly)
			r.Get("/{id}", todoHandler.GetByID)
			r.Get("/{id}/file", fileHandler.Download)

			// Uploads are multipart; only the JSON-bodied routes enforce the
			// content type.
			r.Post("/{id}", fileHandler.Upload)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("application/json"))
				r.Post("/", todoHandler.Create)
				r.Put("/{id}", todoHandler.Update)
			})

			r.Patch("/{id}/{status}", todoHandler.ToggleDone)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	return r
}
