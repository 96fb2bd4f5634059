package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// SeedUser inserts a user with a unique email and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()

	u := domain.User{
		ID:           uuid.New(),
		Email:        "user-" + uuid.New().String()[:8] + "@example.com",
		DisplayName:  "Test User",
		PasswordHash: "$2a$10$test.hash.not.a.real.one",
		Timezone:     "UTC",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, display_name, password_hash, timezone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Timezone, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: seed user: %v", err)
	}

	return u
}

// SeedUserInZone inserts a user with the given IANA timezone.
func SeedUserInZone(t *testing.T, pool *pgxpool.Pool, tz string) domain.User {
	t.Helper()

	u := SeedUser(t, pool)
	_, err := pool.Exec(context.Background(),
		`UPDATE users SET timezone = $1 WHERE id = $2`, tz, u.ID)
	if err != nil {
		t.Fatalf("testhelper: set timezone: %v", err)
	}
	u.Timezone = tz
	return u
}
