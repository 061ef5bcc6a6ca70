// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all sitecraft
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"sitecraft/internal/models"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// userColumns joins the role name so callers never need a second query.
const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.oauth_provider, u.oauth_id,
	u.is_otp_verified, u.subscription_plan, u.role_id, COALESCE(r.name, 'user'),
	u.theme_preference, u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.OAuthProvider, &u.OAuthID,
		&u.IsOTPVerified, &u.SubscriptionPlan, &u.RoleID, &u.Role,
		&u.ThemePreference, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT`+userColumns+userFrom+` WHERE u.email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT`+userColumns+userFrom+` WHERE u.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts a local account with a bcrypt-hashed password, the user
// role and the free plan. The account starts unverified.
func (s *UserStore) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, oauth_provider, subscription_plan, role_id)
		VALUES ($1, $2, $3, 'local', 'free', (SELECT id FROM roles WHERE name = 'user'))
		RETURNING id
	`, name, email, string(hash)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.FindByID(ctx, id)
}

// MarkOTPVerified records a successful email verification.
func (s *UserStore) MarkOTPVerified(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_otp_verified = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	return nil
}

// UpdateProfile changes the editable profile fields.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, theme string) (*models.User, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $1, theme_preference = $2, updated_at = NOW() WHERE id = $3
	`, name, theme, id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.FindByID(ctx, id)
}

// SetPlan changes the user's subscription plan.
func (s *UserStore) SetPlan(ctx context.Context, id uuid.UUID, plan models.PlanName) (*models.User, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET subscription_plan = $1, updated_at = NOW() WHERE id = $2
	`, plan, id)
	if err != nil {
		return nil, fmt.Errorf("set plan: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Delete removes a user by ID. Websites and prompt history cascade.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	if !user.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) == nil
}
