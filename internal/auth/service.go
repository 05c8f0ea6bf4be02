package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/teju/task-manager/backend/internal/models"
	"github.com/teju/task-manager/backend/internal/store"
)

// ErrInvalidCredentials is returned for both an unknown email and a
// wrong password, so a caller can't probe which addresses are
// registered.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword, fullName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service orchestrates registration and login: hashing, persistence and
// token issuance.
type Service struct {
	users  UserStore
	tokens *TokenService
}

func NewService(users UserStore, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register hashes the password, persists the user and issues a token
// for the new identity. Email uniqueness is enforced by the store; a
// duplicate surfaces as store.ErrDuplicateEmail. Emails are matched
// exactly as stored (case-sensitive).
func (s *Service) Register(ctx context.Context, email, password, fullName string) (string, *models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hashed), fullName)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login verifies the credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
