// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"sitecraft/internal/markdown"
	"sitecraft/internal/middleware"
	"sitecraft/internal/store"
)

// Prompts groups the prompt history handlers.
type Prompts struct {
	prompts *store.PromptStore
}

// NewPrompts creates the prompt history handler group.
func NewPrompts(prompts *store.PromptStore) *Prompts {
	return &Prompts{prompts: prompts}
}

// History lists the user's recent prompts. ?limit= defaults to and is
// capped at store.MaxHistory.
func (h *Prompts) History(w http.ResponseWriter, r *http.Request) {
	limit := store.MaxHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.prompts.ListByUser(r.Context(), middleware.UserID(r.Context()), limit)
	if err != nil {
		serverError(w, "list prompt history", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Delete removes one history entry.
func (h *Prompts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.prompts.Delete(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		serverError(w, "delete prompt history", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Prompt not found")
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Prompt deleted"})
}

// Response renders the raw model response of an entry as HTML.
func (h *Prompts) Response(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.prompts.FindByID(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		serverError(w, "find prompt history", err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "Prompt not found")
		return
	}

	html, err := markdown.RenderResponse(entry.AIResponse)
	if err != nil {
		serverError(w, "render prompt response", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
