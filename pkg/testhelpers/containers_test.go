//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestGetTestDB_MigratedSchema(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	var count int
	err := testDB.DB.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'risk_events'").
		Scan(&count)
	if err != nil {
		t.Fatalf("failed to query schema: %v", err)
	}

	if count != 1 {
		t.Errorf("expected risk_events table after migrations, got %d", count)
	}
}
