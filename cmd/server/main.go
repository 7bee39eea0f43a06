// Package main initializes and starts the todo-list HTTP server, setting up
// configuration, logging, the database connection, repositories, services,
// file storage, and handlers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/amoraitis/todolist/internal/clock"
	"github.com/amoraitis/todolist/internal/config"
	"github.com/amoraitis/todolist/internal/db"
	"github.com/amoraitis/todolist/internal/logger"
	"github.com/amoraitis/todolist/internal/repository"
	"github.com/amoraitis/todolist/internal/server/handler/http"
	"github.com/amoraitis/todolist/internal/service"
	"github.com/amoraitis/todolist/internal/storage"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// orDefault returns s if non-empty, otherwise fallback. It matches
// cmp.Or for two strings, which is unavailable before Go 1.22.
func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("jwt secret must be configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and apply migrations.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Initialize repositories.
	todoRepo := repository.NewPostgresTodoRepository(postgresDB)
	userRepo := repository.NewPostgresUserRepository(postgresDB)

	// Initialize business-logic services.
	todoService := service.NewTodoService(todoRepo, clock.System{})
	authService := service.NewAuthService(userRepo, []byte(options.JWTSecret), options.TokenTTL)

	// Bootstrap the administrator account if configured.
	if err := authService.EnsureAdmin(ctx, options.AdminEmail, options.AdminPassword); err != nil {
		zapLogger.Fatal("cannot seed admin user", zap.Error(err))
	}

	// Select the file storage backend.
	fileStorage, err := newFileStorage(ctx, options)
	if err != nil {
		zapLogger.Fatal("cannot init file storage", zap.Error(err))
	}

	// Create HTTP handlers for auth, todo and file endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	todoHandler := &http.TodoHandler{TodoService: todoService, Storage: fileStorage, Logger: zapLogger}
	fileHandler := &http.FileHandler{TodoService: todoService, Storage: fileStorage, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, todoHandler, fileHandler, zapLogger, []byte(options.JWTSecret))

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// newFileStorage builds the configured storage backend.
func newFileStorage(ctx context.Context, options *config.Options) (storage.FileStorage, error) {
	switch options.StorageBackend {
	case config.StorageLocal:
		return storage.NewLocal(options.FileStoragePath)
	case config.StorageS3:
		return storage.NewS3(ctx, storage.S3Options{
			Endpoint:  options.S3Endpoint,
			Region:    options.S3Region,
			Bucket:    options.S3Bucket,
			AccessKey: options.S3AccessKey,
			SecretKey: options.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", options.StorageBackend)
	}
}
