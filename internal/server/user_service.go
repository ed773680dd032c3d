package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/types"
)

// DBClient is the subset of the database layer the user service needs.
// Tests substitute a fake.
type DBClient interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// UserService implements registration, login, and password rotation on top
// of the database client. Passwords are bcrypt-hashed via PasswordConfig
// and never leave this layer in any returned value.
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a UserService with the given dependencies.
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// apiUser builds the API view of a user row. The password hash stays
// behind.
func apiUser(row *db.User) *types.User {
	if row == nil {
		return nil
	}
	return &types.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
	}
}

// Register creates a new user account. The email must be unused.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for an existing account: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.db.CreateUser(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to store new user: %w", err)
	}

	// Re-read the row so the response carries the database-assigned
	// timestamps.
	row, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read created user: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("created user missing on re-read: %s", userID)
	}
	return apiUser(row), nil
}

// Login authenticates by email and password. Unknown email and wrong
// password both come back as ErrInvalidCredentials so a caller cannot
// probe which addresses have accounts.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	row, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if row == nil || !s.passwordConfig.VerifyPassword(req.Password, row.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return apiUser(row), nil
}

// UpdatePassword rotates a user's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	row, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if row == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, row.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.db.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to persist new password: %w", err)
	}
	return nil
}
