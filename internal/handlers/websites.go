// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"sitecraft/internal/generate"
	"sitecraft/internal/materialize"
	"sitecraft/internal/middleware"
	"sitecraft/internal/models"
	"sitecraft/internal/preview"
	"sitecraft/internal/slug"
	"sitecraft/internal/storage"
)

// Generator produces and persists websites. *generate.Service implements it.
type Generator interface {
	Generate(ctx context.Context, userID uuid.UUID, prompt, websiteName string) (*models.Website, error)
}

// WebsiteStore is the persistence used by the website handlers.
// *store.WebsiteStore implements it.
type WebsiteStore interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Website, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Website, error)
	SetGeneratedPath(ctx context.Context, id uuid.UUID, path string) error
	SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

// PreviewInvalidator drops cached preview documents.
// *cache.PreviewCache implements it.
type PreviewInvalidator interface {
	Invalidate(ctx context.Context, key string)
}

// ArchiveStore keeps project archives in object storage.
// *storage.Client implements it.
type ArchiveStore interface {
	UploadArchive(ctx context.Context, key string, body io.Reader, size int64) error
	DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Websites groups the website, preview and download handlers.
type Websites struct {
	generator Generator
	websites  WebsiteStore
	files     *materialize.Materializer
	previews  *preview.Renderer
	cache     PreviewInvalidator
	archives  ArchiveStore
}

// NewWebsites creates the website handler group. cache and archives may
// be nil.
func NewWebsites(generator Generator, websites WebsiteStore, files *materialize.Materializer, previews *preview.Renderer, cache PreviewInvalidator, archives ArchiveStore) *Websites {
	return &Websites{
		generator: generator,
		websites:  websites,
		files:     files,
		previews:  previews,
		cache:     cache,
		archives:  archives,
	}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	WebsiteName string `json:"websiteName"`
}

// Generate runs a generation for the current user.
func (h *Websites) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateGenerate(req.Prompt, req.WebsiteName); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	site, err := h.generator.Generate(r.Context(), middleware.UserID(r.Context()), req.Prompt, req.WebsiteName)
	if err != nil {
		writeGenerateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

// writeGenerateError maps generation failures onto HTTP responses.
func writeGenerateError(w http.ResponseWriter, err error) {
	var (
		flagged  *generate.FlaggedError
		provider *generate.ProviderError
		persist  *generate.PersistError
	)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("generation canceled by client")
	case errors.Is(err, generate.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "Prompt is required.")
	case errors.As(err, &flagged):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      flagged.Error(),
			"categories": flagged.Categories,
		})
	case errors.As(err, &provider):
		slog.Error("generation provider error", "status", provider.StatusCode, "error", provider.Err)
		writeError(w, provider.StatusCode, provider.Error())
	case errors.As(err, &persist):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Website was saved but its project files could not be written.",
			"website": persist.Website,
		})
	default:
		serverError(w, "generate website", err)
	}
}

// List returns the current user's websites, newest first.
func (h *Websites) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.websites.ListByUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		serverError(w, "list websites", err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// Get returns one website.
func (h *Websites) Get(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// Delete removes a website with its files, archive and cached preview.
func (h *Websites) Delete(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	deleted, err := h.websites.Delete(ctx, site.UserID, site.ID)
	if err != nil {
		serverError(w, "delete website", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Website not found")
		return
	}

	if err := h.files.Remove(site.GeneratedPath); err != nil {
		slog.Warn("remove website files", "website_id", site.ID, "error", err)
	}
	if h.archives != nil && site.ArchiveKey != "" {
		if err := h.archives.Delete(ctx, site.ArchiveKey); err != nil {
			slog.Warn("delete website archive", "website_id", site.ID, "error", err)
		}
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, site.ID.String())
	}

	slog.Info("website deleted", "website_id", site.ID)
	writeJSON(w, http.StatusOK, message{Message: "Website deleted"})
}

// Download sends the project as a zip archive. With object storage the
// archive is uploaded once and the client is redirected to a signed link.
func (h *Websites) Download(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	dir, err := h.ensureFiles(ctx, site)
	if err != nil {
		serverError(w, "materialize for download", err)
		return
	}
	filename := slug.Archive(site.Name, site.ID.String())

	if h.archives != nil {
		link, err := h.archiveLink(ctx, site, dir, filename)
		if err != nil {
			serverError(w, "archive upload", err)
			return
		}
		http.Redirect(w, r, link, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if err := materialize.Archive(dir, w); err != nil {
		// Headers are gone; the client sees a truncated archive.
		slog.Error("stream archive", "website_id", site.ID, "error", err)
	}
}

func (h *Websites) archiveLink(ctx context.Context, site *models.Website, dir, filename string) (string, error) {
	key := site.ArchiveKey
	if key == "" {
		var buf bytes.Buffer
		if err := materialize.Archive(dir, &buf); err != nil {
			return "", err
		}
		key = storage.ArchiveKey(site.UserID.String(), site.ID.String())
		if err := h.archives.UploadArchive(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
			return "", err
		}
		if err := h.websites.SetArchiveKey(ctx, site.ID, key); err != nil {
			return "", err
		}
		site.ArchiveKey = key
	}
	return h.archives.DownloadURL(ctx, key, filename, storage.DefaultLinkExpiry)
}

// ensureFiles returns the project directory, writing the project again
// when an earlier write failed or the files were removed.
func (h *Websites) ensureFiles(ctx context.Context, site *models.Website) (string, error) {
	if site.GeneratedPath != "" {
		if info, err := os.Stat(site.GeneratedPath); err == nil && info.IsDir() {
			return site.GeneratedPath, nil
		}
	}
	dir, err := h.files.Write(ctx, site.UserID.String(), site.ID.String(), site.Project(), site.Name)
	if err != nil {
		return "", err
	}
	if err := h.websites.SetGeneratedPath(ctx, site.ID, dir); err != nil {
		return "", err
	}
	site.GeneratedPath = dir
	return dir, nil
}

// load fetches the {id} website of the current user, writing 400 or 404
// when it cannot.
func (h *Websites) load(w http.ResponseWriter, r *http.Request) (*models.Website, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	site, err := h.websites.FindByID(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		serverError(w, "find website", err)
		return nil, false
	}
	if site == nil {
		writeError(w, http.StatusNotFound, "Website not found")
		return nil, false
	}
	return site, true
}
