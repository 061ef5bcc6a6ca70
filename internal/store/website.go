// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sitecraft/internal/jsonutil"
	"sitecraft/internal/models"
)

const websiteColumns = `
	id, user_id, website_name, prompt, html_code, css_code, js_code,
	components, vite_config, generated_path, archive_key, created_at`

// WebsiteStore handles generated website records. Every query is scoped
// to the owning user.
type WebsiteStore struct {
	db *sql.DB
}

// NewWebsiteStore creates a new WebsiteStore.
func NewWebsiteStore(db *sql.DB) *WebsiteStore {
	return &WebsiteStore{db: db}
}

func scanWebsite(row rowScanner) (*models.Website, error) {
	w := &models.Website{}
	var comps, entry []byte
	if err := row.Scan(
		&w.ID, &w.UserID, &w.Name, &w.Prompt, &w.HTMLCode, &w.CSSCode, &w.JSCode,
		&comps, &entry, &w.GeneratedPath, &w.ArchiveKey, &w.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(comps) > 0 {
		if err := json.Unmarshal(comps, &w.Components); err != nil {
			return nil, fmt.Errorf("decode components: %w", err)
		}
	}
	if len(entry) > 0 {
		if err := json.Unmarshal(entry, &w.Entry); err != nil {
			return nil, fmt.Errorf("decode vite config: %w", err)
		}
	}
	return w, nil
}

// nullableJSON encodes v for a jsonb column; a nil value becomes NULL.
func nullableJSON(v any, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	b, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Create inserts w and fills in its ID and CreatedAt.
func (s *WebsiteStore) Create(ctx context.Context, w *models.Website) error {
	comps, err := nullableJSON(w.Components, len(w.Components) == 0)
	if err != nil {
		return fmt.Errorf("encode components: %w", err)
	}
	entry, err := nullableJSON(w.Entry, w.Entry == nil)
	if err != nil {
		return fmt.Errorf("encode vite config: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO websites (user_id, website_name, prompt, html_code, css_code, js_code, components, vite_config, generated_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, w.UserID, w.Name, w.Prompt, w.HTMLCode, w.CSSCode, w.JSCode, comps, entry, w.GeneratedPath,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create website: %w", err)
	}
	return nil
}

// FindByID returns the user's website. Returns nil if not found.
func (s *WebsiteStore) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Website, error) {
	w, err := scanWebsite(s.db.QueryRowContext(ctx,
		`SELECT`+websiteColumns+` FROM websites WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find website: %w", err)
	}
	return w, nil
}

// ListByUser returns the user's websites, newest first.
func (s *WebsiteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Website, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+websiteColumns+` FROM websites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	sites := []models.Website{}
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		sites = append(sites, *w)
	}
	return sites, rows.Err()
}

// SetGeneratedPath records where the project was materialized.
func (s *WebsiteStore) SetGeneratedPath(ctx context.Context, id uuid.UUID, path string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE websites SET generated_path = $1 WHERE id = $2`, path, id); err != nil {
		return fmt.Errorf("set generated path: %w", err)
	}
	return nil
}

// SetArchiveKey records the object key of the uploaded project archive.
func (s *WebsiteStore) SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE websites SET archive_key = $1 WHERE id = $2`, key, id); err != nil {
		return fmt.Errorf("set archive key: %w", err)
	}
	return nil
}

// Delete removes the user's website. It reports whether a row was deleted.
func (s *WebsiteStore) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM websites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete website: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete website: %w", err)
	}
	return n > 0, nil
}
