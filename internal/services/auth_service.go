package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired   = apierrors.NewValidation("Username is required")
	ErrUsernameLength     = apierrors.NewValidation(fmt.Sprintf("Username must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength))
	ErrInvalidEmail       = apierrors.NewValidation("A valid email address is required")
	ErrPasswordTooShort   = apierrors.NewValidation(fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	ErrUsernameTaken      = apierrors.NewConflict("Username already exists")
	ErrEmailTaken         = apierrors.NewConflict("Email already exists")
	ErrAccountExists      = apierrors.NewConflict("Username or email already exists")
	ErrInvalidCredentials = apierrors.NewUnauthorized("Invalid username/email or password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	repos    *repository.Repositories
	validate *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(repos *repository.Repositories) *AuthService {
	return &AuthService{
		repos:    repos,
		validate: validator.New(),
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates a new user. Emails are stored lowercased.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if n := len(username); n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return nil, ErrUsernameLength
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	users := s.repos.WithContext(ctx).Users
	if _, err := users.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := users.Create(user); err != nil {
		return nil, writeErr(err, ErrAccountExists, "create user")
	}

	return user, nil
}

// LoginInput holds the credentials for authentication. Identifier is a
// username or an email.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := resolveUser(s.repos.WithContext(ctx).Users, input.Identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.repos.WithContext(ctx).Users.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "user")
	}
	return user, nil
}
