package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is an in-memory DBClient for unit tests. Lookups that miss return
// (nil, nil) to match the real database client.
type fakeDB struct {
	users   map[uuid.UUID]*db.User
	byEmail map[string]uuid.UUID
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:   make(map[uuid.UUID]*db.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (f *fakeDB) CheckEmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeDB) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()
	f.users[id] = &db.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.byEmail[email] = id
	return id, nil
}

func (f *fakeDB) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	return f.users[userID], nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return f.users[id], nil
}

func (f *fakeDB) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return &ErrUserNotFound{UserID: userID}
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func newTestUserService(fake *fakeDB) *UserService {
	passwordConfig := &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
	}
	return NewUserService(fake, passwordConfig)
}

func TestAPIUser(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		now := time.Now()
		row := &db.User{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			PasswordHash: "hashed-password",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		user := apiUser(row)
		require.NotNil(t, user)
		assert.Equal(t, row.ID, user.ID)
		assert.Equal(t, row.Name, user.Name)
		assert.Equal(t, row.Email, user.Email)
		assert.Equal(t, row.CreatedAt, user.CreatedAt)
	})

	t.Run("nil row", func(t *testing.T) {
		assert.Nil(t, apiUser(nil))
	})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		user, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Jane Doe", user.Name)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.NotEqual(t, uuid.Nil, user.ID)

		stored := fake.users[user.ID]
		require.NotNil(t, stored)
		assert.NotEqual(t, "password123", stored.PasswordHash)
		assert.True(t, svc.passwordConfig.VerifyPassword("password123", stored.PasswordHash))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		_, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Other Jane",
			Email:    "jane@example.com",
			Password: "different456",
		})
		var dup *ErrEmailAlreadyExists
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "jane@example.com", dup.Email)
		assert.Equal(t, 409, HTTPStatus(err))
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user on valid credentials", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		registered, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		user, err := svc.Login(ctx, &types.LoginRequest{
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		_, err := svc.Login(ctx, &types.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		var invalid *ErrInvalidCredentials
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 401, HTTPStatus(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		_, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &types.LoginRequest{
			Email:    "jane@example.com",
			Password: "wrongpassword",
		})
		var invalid *ErrInvalidCredentials
		require.ErrorAs(t, err, &invalid)
	})
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces password", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		registered, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		err = svc.UpdatePassword(ctx, registered.ID, "password123", "newpassword456")
		require.NoError(t, err)

		_, err = svc.Login(ctx, &types.LoginRequest{
			Email:    "jane@example.com",
			Password: "newpassword456",
		})
		assert.NoError(t, err)

		_, err = svc.Login(ctx, &types.LoginRequest{
			Email:    "jane@example.com",
			Password: "password123",
		})
		assert.Error(t, err)
	})

	t.Run("wrong current password", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		registered, err := svc.Register(ctx, &types.CreateUserRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		err = svc.UpdatePassword(ctx, registered.ID, "wrongcurrent", "newpassword456")
		var mismatch *ErrPasswordMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 401, HTTPStatus(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		fake := newFakeDB()
		svc := newTestUserService(fake)

		userID := uuid.New()
		err := svc.UpdatePassword(ctx, userID, "password123", "newpassword456")
		var notFound *ErrUserNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, userID, notFound.UserID)
		assert.Equal(t, 404, HTTPStatus(err))
	})
}
