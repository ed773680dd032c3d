//go:build integration

package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestIntegration_UserLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "it-" + uuid.New().String() + "@example.com"

	id, err := db.CreateUser(ctx, "Test User", email, "$2a$10$hash-one")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("Expected generated user ID")
	}

	u, err := db.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u == nil {
		t.Fatal("Expected user, got nil")
	}
	if u.Name != "Test User" || u.Email != email {
		t.Errorf("Unexpected user fields: %+v", u)
	}
	if u.PasswordHash != "$2a$10$hash-one" {
		t.Errorf("Password hash not persisted: %q", u.PasswordHash)
	}

	// Email lookup is case-insensitive through normalization
	byEmail, err := db.GetUserByEmail(ctx, "  "+email+" ")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Error("Expected lookup to find user regardless of whitespace")
	}

	exists, err := db.CheckEmailExists(ctx, email)
	if err != nil {
		t.Fatalf("CheckEmailExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected email to exist")
	}

	exists, err = db.CheckEmailExists(ctx, "it-missing@example.com")
	if err != nil {
		t.Fatalf("CheckEmailExists failed: %v", err)
	}
	if exists {
		t.Error("Expected missing email to not exist")
	}

	if err := db.UpdatePassword(ctx, id, "$2a$10$hash-two"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	u, err = db.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.PasswordHash != "$2a$10$hash-two" {
		t.Errorf("Expected updated hash, got %q", u.PasswordHash)
	}

	// Duplicate registration hits the unique constraint
	if _, err := db.CreateUser(ctx, "Other User", email, "$2a$10$hash-three"); err == nil {
		t.Error("Expected duplicate email to fail")
	}

	if err := db.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	u, err = db.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u != nil {
		t.Error("Expected deleted user to be gone")
	}
	if err := db.DeleteUser(ctx, id); err == nil {
		t.Error("Expected deleting a missing user to fail")
	}
}

func TestIntegration_UpdatePasswordMissingUser(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	err := db.UpdatePassword(context.Background(), uuid.New(), "$2a$10$hash")
	if err == nil {
		t.Error("Expected error for unknown user ID")
	}
}
