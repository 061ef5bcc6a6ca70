// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

type seedRole struct {
	name        string
	permissions []string
}

// DefaultRoles are created on every start when missing.
var defaultRoles = []seedRole{
	{"user", []string{"read:own", "write:own"}},
	{"admin", []string{"read:all", "write:all", "delete:all", "manage:subscriptions", "manage:users"}},
	{"superadmin", []string{"read:all", "write:all", "delete:all", "manage:subscriptions", "manage:users", "manage:roles", "manage:system"}},
}

type seedPlan struct {
	name     string
	price    string
	features []string
}

var defaultPlans = []seedPlan{
	{"free", "0", []string{"10 prompts/month", "Basic AI responses", "Community support"}},
	{"basic", "9.99", []string{"100 prompts/month", "Advanced AI responses", "Email support", "Priority queue"}},
	{"premium", "29.99", []string{"Unlimited prompts", "Premium AI responses", "24/7 support", "API access", "Custom integrations"}},
	{"enterprise", "99.99", []string{"Everything in Premium", "Dedicated support", "Custom AI models", "SLA guarantee", "On-premise deployment"}},
}

// SeedReference inserts the roles and subscription plans that are missing.
// It is safe to run on every start.
func SeedReference(ctx context.Context, db *sql.DB) error {
	for _, r := range defaultRoles {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO roles (name, permissions) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, r.name, r.permissions); err != nil {
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
	}
	for _, p := range defaultPlans {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO subscription_plans (name, price, features) VALUES ($1, $2::text::numeric, $3)
			ON CONFLICT (name) DO NOTHING
		`, p.name, p.price, p.features); err != nil {
			return fmt.Errorf("seed plan %s: %w", p.name, err)
		}
	}
	return nil
}

// Seed populates the database with initial development data: the
// reference rows plus a verified admin account when no users exist.
func Seed(ctx context.Context, db *sql.DB) error {
	if err := SeedReference(ctx, db); err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, oauth_provider, is_otp_verified, subscription_plan, role_id)
		VALUES ($1, $2, $3, 'local', TRUE, 'enterprise', (SELECT id FROM roles WHERE name = 'admin'))
	`, "Admin", "admin@sitecraft.local", string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@sitecraft.local",
		"password", "admin",
	)

	return nil
}
