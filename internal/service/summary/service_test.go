package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

type userRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

type logRepoMock struct {
	ListByCreatedRangeFunc func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error)
}

func (m *logRepoMock) ListByCreatedRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
	return m.ListByCreatedRangeFunc(ctx, userID, from, to)
}

type summaryRepoMock struct {
	UpsertFunc func(ctx context.Context, s domain.DailySummary) error
	GetFunc    func(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error)
	upserted   []domain.DailySummary
}

func (m *summaryRepoMock) Upsert(ctx context.Context, s domain.DailySummary) error {
	m.upserted = append(m.upserted, s)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, s)
	}
	return nil
}

func (m *summaryRepoMock) Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, day)
	}
	return nil, domain.ErrNotFound
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTxFunc(ctx, fn)
}

func passthroughTx() *txManagerMock {
	return &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userInZone(id uuid.UUID, tz string) *userRepoMock {
	return &userRepoMock{
		GetByIDFunc: func(ctx context.Context, uid uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Timezone: tz}, nil
		},
	}
}

func logWith(cal, protein float64, at time.Time) domain.NutritionLog {
	return domain.NutritionLog{
		ID:            uuid.New(),
		TotalCalories: cal,
		TotalProtein:  protein,
		CreatedAt:     at,
	}
}

func TestService_ComputeForTime_SumsDayLogs(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	at := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)

	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			return []domain.NutritionLog{
				logWith(350, 20, at.Add(-2*time.Hour)),
				logWith(600, 35, at.Add(-1*time.Hour)),
				logWith(95, 0.5, at),
			}, nil
		},
	}
	sumMock := &summaryRepoMock{}

	svc := NewService(testLogger(), userInZone(userID, "UTC"), logsMock, sumMock, passthroughTx())

	got, err := svc.ComputeForTime(context.Background(), userID, at)
	if err != nil {
		t.Fatalf("ComputeForTime failed: %v", err)
	}
	if got.TotalCalories != 1045 {
		t.Errorf("TotalCalories = %v, want 1045", got.TotalCalories)
	}
	if got.TotalProtein != 55.5 {
		t.Errorf("TotalProtein = %v, want 55.5", got.TotalProtein)
	}
	if got.LogCount != 3 {
		t.Errorf("LogCount = %d, want 3", got.LogCount)
	}
	if got.Date != "2026-07-15" {
		t.Errorf("Date = %q, want 2026-07-15", got.Date)
	}
	if len(sumMock.upserted) != 1 {
		t.Fatalf("Upsert called %d times, want 1", len(sumMock.upserted))
	}
}

func TestService_ComputeForTime_Idempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	at := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)

	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			return []domain.NutritionLog{logWith(500, 30, at)}, nil
		},
	}
	sumMock := &summaryRepoMock{}

	svc := NewService(testLogger(), userInZone(userID, "UTC"), logsMock, sumMock, passthroughTx())

	// Reprocessing the same instant must not accumulate.
	for range 3 {
		got, err := svc.ComputeForTime(context.Background(), userID, at)
		if err != nil {
			t.Fatalf("ComputeForTime failed: %v", err)
		}
		if got.TotalCalories != 500 || got.LogCount != 1 {
			t.Errorf("recompute drifted: calories=%v count=%d", got.TotalCalories, got.LogCount)
		}
	}
}

func TestService_ComputeForTime_UsesUserTimezone(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tokyo, _ := time.LoadLocation("Asia/Tokyo")

	// 20:00 UTC on March 1st is already March 2nd in Tokyo.
	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	var gotFrom, gotTo time.Time
	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}

	svc := NewService(testLogger(), userInZone(userID, "Asia/Tokyo"), logsMock, &summaryRepoMock{}, passthroughTx())

	got, err := svc.ComputeForTime(context.Background(), userID, at)
	if err != nil {
		t.Fatalf("ComputeForTime failed: %v", err)
	}
	if got.Date != "2026-03-02" {
		t.Errorf("Date = %q, want 2026-03-02 (Tokyo local day)", got.Date)
	}

	wantFrom := time.Date(2026, 3, 2, 0, 0, 0, 0, tokyo).UTC()
	wantTo := time.Date(2026, 3, 3, 0, 0, 0, 0, tokyo).UTC()
	if !gotFrom.Equal(wantFrom) || !gotTo.Equal(wantTo) {
		t.Errorf("range = [%v, %v), want [%v, %v)", gotFrom, gotTo, wantFrom, wantTo)
	}
}

func TestService_GetForDay_EmptyDayIsZero(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			return nil, nil
		},
	}

	svc := NewService(testLogger(), userInZone(userID, "UTC"), logsMock, &summaryRepoMock{}, passthroughTx())

	got, err := svc.GetForDay(context.Background(), userID, "2099-01-01")
	if err != nil {
		t.Fatalf("GetForDay failed: %v", err)
	}
	if got.TotalCalories != 0 || got.LogCount != 0 {
		t.Errorf("empty day summary = %+v, want zeros", got)
	}
}

func TestService_GetForDay_ClosedDayServedFromCache(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cached := &domain.DailySummary{
		UserID:        userID,
		Date:          "2020-01-15",
		TotalCalories: 1800,
		LogCount:      4,
	}

	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			t.Error("log scan performed for a cached closed day")
			return nil, nil
		},
	}
	sumMock := &summaryRepoMock{
		GetFunc: func(ctx context.Context, uid uuid.UUID, day string) (*domain.DailySummary, error) {
			if day != "2020-01-15" {
				t.Errorf("Get called with day %q", day)
			}
			return cached, nil
		},
	}

	svc := NewService(testLogger(), userInZone(userID, "UTC"), logsMock, sumMock, passthroughTx())

	got, err := svc.GetForDay(context.Background(), userID, "2020-01-15")
	if err != nil {
		t.Fatalf("GetForDay failed: %v", err)
	}
	if got.TotalCalories != 1800 || got.LogCount != 4 {
		t.Errorf("got %+v, want cached row", got)
	}
}

func TestService_GetForDay_ClosedDayCacheMissRecomputes(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	logsMock := &logRepoMock{
		ListByCreatedRangeFunc: func(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
			return []domain.NutritionLog{logWith(420, 18, from.Add(time.Hour))}, nil
		},
	}
	sumMock := &summaryRepoMock{} // Get returns ErrNotFound

	svc := NewService(testLogger(), userInZone(userID, "UTC"), logsMock, sumMock, passthroughTx())

	got, err := svc.GetForDay(context.Background(), userID, "2020-01-15")
	if err != nil {
		t.Fatalf("GetForDay failed: %v", err)
	}
	if got.TotalCalories != 420 || got.LogCount != 1 {
		t.Errorf("got %+v, want recomputed summary", got)
	}
	if len(sumMock.upserted) != 1 {
		t.Errorf("Upsert called %d times, want 1 (backfill)", len(sumMock.upserted))
	}
}

func TestService_GetForDay_BadDate(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), userInZone(uuid.New(), "UTC"),
		&logRepoMock{}, &summaryRepoMock{}, passthroughTx())

	_, err := svc.GetForDay(context.Background(), uuid.New(), "not-a-date")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("GetForDay() error = %v, want ErrValidation", err)
	}
}

func TestService_ComputeForTime_UnknownUser(t *testing.T) {
	t.Parallel()

	usersMock := &userRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := NewService(testLogger(), usersMock, &logRepoMock{}, &summaryRepoMock{}, passthroughTx())

	_, err := svc.ComputeForTime(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ComputeForTime() error = %v, want ErrNotFound", err)
	}
}
