// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleName is a user's permission level in the system.
type RoleName string

const (
	RoleUser       RoleName = "user"
	RoleAdmin      RoleName = "admin"
	RoleSuperAdmin RoleName = "superadmin"
)

// Role is a row of the roles table.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        RoleName  `json:"name"`
	Permissions []string  `json:"permissions"`
}

// OAuthProvider identifies how a user signed up.
type OAuthProvider string

const (
	ProviderLocal  OAuthProvider = "local"
	ProviderGoogle OAuthProvider = "google"
	ProviderGithub OAuthProvider = "github"
)

// Theme preferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User is an account of the website generator.
type User struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	PasswordHash     *string       `json:"-"` // nil for OAuth accounts
	OAuthProvider    OAuthProvider `json:"oauthProvider"`
	OAuthID          *string       `json:"-"`
	IsOTPVerified    bool          `json:"isOtpVerified"`
	SubscriptionPlan PlanName      `json:"subscriptionPlan"`
	RoleID           *uuid.UUID    `json:"-"`
	Role             RoleName      `json:"role"`
	ThemePreference  string        `json:"themePreference"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// IsAdmin returns true for the admin and superadmin roles.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// ValidTheme reports whether t is an accepted theme preference.
func ValidTheme(t string) bool {
	return t == ThemeLight || t == ThemeDark
}
