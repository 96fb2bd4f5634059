package nutritionlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/nutritionlog"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/testhelper"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

func newRepo(t *testing.T) (*nutritionlog.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return nutritionlog.New(pool), pool
}

func sampleLog(userID uuid.UUID) *domain.NutritionLog {
	return &domain.NutritionLog{
		ID:     uuid.New(),
		UserID: userID,
		FoodItems: []domain.FoodItem{
			{Name: "apple", Quantity: "1 medium", Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3, Fiber: 4.4},
		},
		TotalCalories:   95,
		TotalProtein:    0.5,
		TotalCarbs:      25,
		TotalFat:        0.3,
		TotalFiber:      4.4,
		ConfidenceScore: 0.85,
		AnalysisNotes:   "clear lighting",
	}
}

func TestRepo_Create_AndGetByID(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	u := testhelper.SeedUser(t, pool)

	created, err := repo.Create(ctx, sampleLog(u.ID))
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Error("Create should return the server timestamp")
	}

	got, err := repo.GetByID(ctx, u.ID, created.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.TotalCalories != 95 {
		t.Errorf("TotalCalories = %v, want 95", got.TotalCalories)
	}
	if len(got.FoodItems) != 1 || got.FoodItems[0].Name != "apple" {
		t.Errorf("FoodItems round-trip failed: %+v", got.FoodItems)
	}
	if got.ConfidenceScore != 0.85 {
		t.Errorf("ConfidenceScore = %v, want 0.85", got.ConfidenceScore)
	}
}

func TestRepo_GetByID_OtherUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)

	created, err := repo.Create(ctx, sampleLog(owner.ID))
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err = repo.GetByID(ctx, other.ID, created.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-user GetByID = %v, want ErrNotFound", err)
	}
}

func TestRepo_Create_MissingUser(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.Create(context.Background(), sampleLog(uuid.New()))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Create with missing user = %v, want ErrNotFound (fk violation)", err)
	}
}

func TestRepo_Create_ConfidenceOutOfRange(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	u := testhelper.SeedUser(t, pool)
	l := sampleLog(u.ID)
	l.ConfidenceScore = 1.5

	_, err := repo.Create(context.Background(), l)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Create out-of-range confidence = %v, want ErrValidation (check violation)", err)
	}
}

func TestRepo_ListByCreatedRange(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	u := testhelper.SeedUser(t, pool)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		created, err := repo.Create(ctx, sampleLog(u.ID))
		if err != nil {
			t.Fatalf("Create[%d]: unexpected error: %v", i, err)
		}
		ids = append(ids, created.ID)
	}

	now := time.Now().UTC()
	logs, err := repo.ListByCreatedRange(ctx, u.ID, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListByCreatedRange: unexpected error: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("ListByCreatedRange returned %d logs, want 3", len(logs))
	}
	if logs[0].ID != ids[0] {
		t.Error("logs should be ordered oldest first")
	}

	// Window that excludes everything.
	empty, err := repo.ListByCreatedRange(ctx, u.ID, now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ListByCreatedRange empty window: unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty window returned %d logs, want 0", len(empty))
	}
}

func TestRepo_ListByCreatedRange_ExclusiveUpperBound(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	u := testhelper.SeedUser(t, pool)
	created, err := repo.Create(ctx, sampleLog(u.ID))
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	// [createdAt, createdAt) must exclude the row; [createdAt, createdAt+1ms) includes it.
	logs, err := repo.ListByCreatedRange(ctx, u.ID, created.CreatedAt, created.CreatedAt)
	if err != nil {
		t.Fatalf("ListByCreatedRange: unexpected error: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("half-open window [t, t) returned %d logs, want 0", len(logs))
	}

	logs, err = repo.ListByCreatedRange(ctx, u.ID, created.CreatedAt, created.CreatedAt.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("ListByCreatedRange: unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("window including created_at returned %d logs, want 1", len(logs))
	}
}

func TestRepo_CountByUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	u := testhelper.SeedUser(t, pool)
	if _, err := repo.Create(ctx, sampleLog(u.ID)); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	n, err := repo.CountByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("CountByUser: unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByUser = %d, want 1", n)
	}
}
