// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// PlanName identifies a subscription tier.
type PlanName string

const (
	PlanFree       PlanName = "free"
	PlanBasic      PlanName = "basic"
	PlanPremium    PlanName = "premium"
	PlanEnterprise PlanName = "enterprise"
)

// ValidPlan reports whether p names a known subscription tier.
func ValidPlan(p PlanName) bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionPlan is a row of the subscription_plans table. Price is kept
// as the decimal text PostgreSQL returns for numeric columns.
type SubscriptionPlan struct {
	ID       uuid.UUID `json:"id"`
	Name     PlanName  `json:"name"`
	Price    string    `json:"price"`
	Features []string  `json:"features"`
}
