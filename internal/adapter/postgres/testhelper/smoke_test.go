package testhelper

import (
	"context"
	"testing"
)

// TestSetupTestDB verifies the container starts, migrations apply, and the
// core tables exist.
func TestSetupTestDB(t *testing.T) {
	pool := SetupTestDB(t)

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public'
		   AND table_name IN ('users', 'nutrition_logs', 'daily_summaries')`).Scan(&n)
	if err != nil {
		t.Fatalf("query tables: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 core tables after migration, found %d", n)
	}
}
