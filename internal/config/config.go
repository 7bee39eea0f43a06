// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Storage backend identifiers accepted by the -storage flag.
const (
	// StorageLocal selects the base-path filesystem backend.
	StorageLocal = "local"
	// StorageS3 selects the S3-compatible object store backend.
	StorageS3 = "s3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// StorageBackend selects the file storage implementation: "local" or "s3".
	StorageBackend string `json:"storage_backend"`

	// FileStoragePath is the base directory for the local storage backend.
	FileStoragePath string `json:"file_storage_path"`

	// S3Endpoint is the object store base endpoint (MinIO compatible).
	S3Endpoint string `json:"s3_endpoint"`
	// S3Region is the object store region.
	S3Region string `json:"s3_region"`
	// S3Bucket is the bucket holding todo attachments.
	S3Bucket string `json:"s3_bucket"`
	// S3AccessKey is the static access key for the object store.
	S3AccessKey string `json:"s3_access_key"`
	// S3SecretKey is the static secret key for the object store.
	S3SecretKey string `json:"s3_secret_key"`

	// JWTSecret signs the access tokens issued on login.
	JWTSecret string `json:"jwt_secret"`
	// TokenTTL is the validity duration of issued access tokens.
	TokenTTL time.Duration `json:"token_ttl"`

	// AdminEmail is the bootstrap administrator login. Empty disables seeding.
	AdminEmail string `json:"admin_email"`
	// AdminPassword is the bootstrap administrator password.
	AdminPassword string `json:"admin_password"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.StorageBackend, "storage", StorageLocal, "file storage backend: local or s3")
	flag.StringVar(&options.FileStoragePath, "files", "uploads", "base directory for stored files")
	flag.StringVar(&options.S3Endpoint, "s3-endpoint", "", "object store base endpoint")
	flag.StringVar(&options.S3Region, "s3-region", "us-east-1", "object store region")
	flag.StringVar(&options.S3Bucket, "s3-bucket", "todolist", "object store bucket")
	flag.StringVar(&options.S3AccessKey, "s3-access-key", "", "object store access key")
	flag.StringVar(&options.S3SecretKey, "s3-secret-key", "", "object store secret key")
	flag.StringVar(&options.JWTSecret, "jwt-secret", "", "secret key for signing access tokens")
	flag.DurationVar(&options.TokenTTL, "token-ttl", 24*time.Hour, "access token validity duration")
	flag.StringVar(&options.AdminEmail, "admin-email", "", "bootstrap admin email")
	flag.StringVar(&options.AdminPassword, "admin-password", "", "bootstrap admin password")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Address = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		options.StorageBackend = backend
	}
	if path := os.Getenv("FILE_STORAGE_PATH"); path != "" {
		options.FileStoragePath = path
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		options.AdminEmail = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		options.AdminPassword = password
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		options.S3Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		options.S3AccessKey = key
	}
	if key := os.Getenv("S3_SECRET_KEY"); key != "" {
		options.S3SecretKey = key
	}

	return options
}
