// Package service provides authentication business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/amoraitis/todolist/internal/auth"
	"github.com/amoraitis/todolist/internal/models"
	"github.com/amoraitis/todolist/internal/repository"
)

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 6

var (
	// ErrInvalidCredentials is returned when login fails, without revealing
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an already-taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrWeakPassword is returned when the password is shorter than
	// PasswordMinLength.
	ErrWeakPassword = errors.New("password too short")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// Create inserts a new user; repository.ErrEmailTaken on duplicates.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail fetches a user by email, or nil when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService implements registration and login, minting signed access
// tokens on successful authentication.
type AuthService struct {
	repo      UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService constructs an AuthService using the provided repository,
// token signing key and token validity duration.
func NewAuthService(repo UserRepository, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a new user with a bcrypt-hashed password.
// Returns ErrUserExists when the email is taken and ErrWeakPassword when the
// password is below the minimum length.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if len(password) < PasswordMinLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed access token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
}

// EnsureAdmin creates the bootstrap administrator account if it does not
// exist yet. An empty email disables seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return s.repo.Create(ctx, &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Admin:        true,
	})
}
