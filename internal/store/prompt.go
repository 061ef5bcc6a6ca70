// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sitecraft/internal/models"
)

// MaxHistory caps how many prompt history rows one request can read.
const MaxHistory = 50

// PromptStore handles the prompt history table.
type PromptStore struct {
	db *sql.DB
}

// NewPromptStore creates a new PromptStore.
func NewPromptStore(db *sql.DB) *PromptStore {
	return &PromptStore{db: db}
}

// Create inserts h and fills in its ID and CreatedAt.
func (s *PromptStore) Create(ctx context.Context, h *models.PromptHistory) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO prompt_history (user_id, prompt, ai_response)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, h.UserID, h.Prompt, h.AIResponse).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("create prompt history: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent entries, newest first. limit
// is clamped to [1, MaxHistory].
func (s *PromptStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PromptHistory, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, prompt, ai_response, created_at
		FROM prompt_history WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompt history: %w", err)
	}
	defer rows.Close()

	entries := []models.PromptHistory{}
	for rows.Next() {
		var h models.PromptHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.Prompt, &h.AIResponse, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// FindByID returns one of the user's entries. Returns nil if not found.
func (s *PromptStore) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.PromptHistory, error) {
	h := &models.PromptHistory{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, prompt, ai_response, created_at
		FROM prompt_history WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&h.ID, &h.UserID, &h.Prompt, &h.AIResponse, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find prompt history: %w", err)
	}
	return h, nil
}

// Delete removes one of the user's entries. It reports whether a row was deleted.
func (s *PromptStore) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompt_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete prompt history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete prompt history: %w", err)
	}
	return n > 0, nil
}
