// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"sitecraft/internal/models"
)

// PlanStore reads subscription plans and roles.
type PlanStore struct {
	db *sql.DB
}

// NewPlanStore creates a new PlanStore.
func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// List returns every subscription plan, cheapest first.
func (s *PlanStore) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price::text, features FROM subscription_plans ORDER BY price ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	// A pgtype.Map scans text[] through database/sql; it is not safe for
	// concurrent use, so each query gets its own.
	tm := pgtype.NewMap()
	plans := []models.SubscriptionPlan{}
	for rows.Next() {
		var p models.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, tm.SQLScanner(&p.Features)); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Roles returns every role by name.
func (s *PlanStore) Roles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, permissions FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	tm := pgtype.NewMap()
	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, tm.SQLScanner(&r.Permissions)); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
