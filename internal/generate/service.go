// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generate turns a user prompt into a persisted, materialized
// website: it builds the model prompt, calls the active provider, runs the
// normalization and sanitization pipeline over the response, then saves
// and writes the project.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitecraft/internal/ai"
	"sitecraft/internal/models"
	"sitecraft/internal/normalize"
	"sitecraft/internal/project"
	"sitecraft/internal/sanitize"
)

// ErrEmptyPrompt is returned when the prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is required")

// FlaggedError is returned when moderation rejects the prompt.
type FlaggedError struct {
	Categories []string
}

func (e *FlaggedError) Error() string {
	return fmt.Sprintf("Your prompt was flagged for: %s. Please reformulate your request and try again.",
		strings.Join(e.Categories, ", "))
}

// ProviderError is a model API failure with a user-facing message.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string { return "Failed to generate website: " + e.Message }
func (e *ProviderError) Unwrap() error { return e.Err }

// PersistError reports that the website was saved but its project files
// could not be written.
type PersistError struct {
	Website *models.Website
	Err     error
}

func (e *PersistError) Error() string { return fmt.Sprintf("materialize website: %v", e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// Model is the generation and moderation surface of the provider registry.
type Model interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// WebsiteRepository persists websites.
type WebsiteRepository interface {
	Create(ctx context.Context, w *models.Website) error
	SetGeneratedPath(ctx context.Context, id uuid.UUID, path string) error
}

// PromptRepository persists prompt history.
type PromptRepository interface {
	Create(ctx context.Context, h *models.PromptHistory) error
}

// Writer materializes a project on disk.
type Writer interface {
	Write(ctx context.Context, userID, websiteID string, p project.Project, websiteName string) (string, error)
}

// Service orchestrates one generation.
type Service struct {
	model    Model
	websites WebsiteRepository
	prompts  PromptRepository
	writer   Writer
	now      func() time.Time
}

// NewService creates a generation service.
func NewService(model Model, websites WebsiteRepository, prompts PromptRepository, writer Writer) *Service {
	return &Service{model: model, websites: websites, prompts: prompts, writer: writer, now: time.Now}
}

// Process runs the response pipeline: normalize, sanitize and drop entry
// placeholders that would shadow real components.
func Process(raw string) project.Project {
	p := sanitize.Project(normalize.FromResponse(raw))
	c, ok := p.(*project.CanonicalProject)
	if !ok || c.Entry == nil {
		return p
	}
	names := c.Names()
	if c.Entry.MainJSX != "" {
		c.Entry.MainJSX = sanitize.StripShadowingPlaceholders(c.Entry.MainJSX, names)
	}
	if c.Entry.MainJS != "" {
		c.Entry.MainJS = sanitize.StripShadowingPlaceholders(c.Entry.MainJS, names)
	}
	return c
}

// Generate produces, saves and materializes a website. A *PersistError
// carries the saved record when only the file write failed.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, prompt, websiteName string) (*models.Website, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if err := s.moderate(ctx, prompt); err != nil {
		return nil, err
	}

	start := s.now()
	raw, err := s.model.Generate(ctx, SystemPrompt, EnhancePrompt(prompt))
	if err != nil {
		return nil, providerError(err)
	}
	slog.Info("website generated", "user_id", userID, "response_bytes", len(raw), "duration", time.Since(start))

	name := strings.TrimSpace(websiteName)
	if name == "" {
		name = fmt.Sprintf("Website %d", s.now().UnixMilli())
	}

	site := &models.Website{UserID: userID, Name: name, Prompt: prompt}
	site.SetProject(Process(raw))
	if err := s.websites.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("save website: %w", err)
	}

	if err := s.prompts.Create(ctx, &models.PromptHistory{UserID: userID, Prompt: prompt, AIResponse: raw}); err != nil {
		// History is secondary to the website itself.
		slog.Error("save prompt history", "user_id", userID, "error", err)
	}

	dir, err := s.writer.Write(ctx, userID.String(), site.ID.String(), site.Project(), name)
	if err != nil {
		slog.Error("materialize website", "website_id", site.ID, "error", err)
		return site, &PersistError{Website: site, Err: err}
	}
	if err := s.websites.SetGeneratedPath(ctx, site.ID, dir); err != nil {
		return site, &PersistError{Website: site, Err: err}
	}
	site.GeneratedPath = dir
	return site, nil
}

// moderate fails open when the moderation call itself errors; providers
// apply their own filters.
func (s *Service) moderate(ctx context.Context, prompt string) error {
	res, err := s.model.CheckPrompt(ctx, prompt)
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return nil
	}
	if res == nil || res.Safe {
		return nil
	}
	slog.Warn("prompt flagged by moderation", "categories", strings.Join(res.Categories, ", "))
	return &FlaggedError{Categories: res.Categories}
}

func providerError(err error) error {
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || strings.Contains(apiErr.Message, "Incorrect API key"):
		return &ProviderError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid " + apiErr.Provider + " API key. Please check that the configured key is valid.",
			Err:        err,
		}
	case apiErr.StatusCode == http.StatusForbidden || strings.Contains(apiErr.Message, "Premium or Team plan"):
		return &ProviderError{
			StatusCode: http.StatusForbidden,
			Message:    apiErr.Provider + " API requires a Premium or Team plan. Your API key is valid, but your account needs to be upgraded.",
			Err:        err,
		}
	default:
		return &ProviderError{StatusCode: http.StatusBadGateway, Message: apiErr.Message, Err: err}
	}
}
