package database

import (
	"context"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only inserts missing rows, so running it twice must succeed and
	// leave one row per role and plan. Other test packages may share the
	// database, so nothing is cleared first.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var roles int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM roles WHERE name IN ('user', 'admin', 'superadmin')",
	).Scan(&roles); err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if roles != 3 {
		t.Errorf("roles = %d, want 3", roles)
	}

	var price string
	var features int
	if err := db.QueryRow(
		"SELECT price::text, array_length(features, 1) FROM subscription_plans WHERE name = 'premium'",
	).Scan(&price, &features); err != nil {
		t.Fatalf("read premium plan: %v", err)
	}
	if price != "29.99" || features != 5 {
		t.Errorf("premium plan = %s with %d features, want 29.99 with 5", price, features)
	}

	var plans int
	if err := db.QueryRow("SELECT COUNT(*) FROM subscription_plans").Scan(&plans); err != nil {
		t.Fatalf("count plans: %v", err)
	}
	if plans < 4 {
		t.Errorf("plans = %d, want at least 4", plans)
	}
}
