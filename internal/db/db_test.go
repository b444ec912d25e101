package db

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(Config{Driver: "sqlite", DBPath: ":memory:"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestUser(t *testing.T, database *DB, email string) string {
	t.Helper()

	user, err := database.CreateUser(context.Background(), email, "Test User", "not-a-real-hash")
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user.ID
}

func TestMigrationsAndHealth(t *testing.T) {
	database := newTestDB(t)

	if err := database.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	// Opening a second time over the same schema must be a no-op, not an error.
	var version int
	if err := database.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version < 1 {
		t.Errorf("schema version = %d, want >= 1", version)
	}
}

func TestCreateUser(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	user, err := database.CreateUser(ctx, "  Alice@Example.COM ", "Alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized, got %q", user.Email)
	}

	got, err := database.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("lookup returned user %s, want %s", got.ID, user.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if _, err := database.CreateUser(ctx, "dup@example.com", "First", "hash"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, err := database.CreateUser(ctx, "dup@example.com", "Second", "hash")
	if !IsValidation(err) {
		t.Fatalf("duplicate email: got %v, want validation error", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	database := newTestDB(t)

	if _, err := database.GetUserByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
