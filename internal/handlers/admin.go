// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"sitecraft/internal/ai"
	"sitecraft/internal/middleware"
)

// AdminAI lets administrators inspect and switch the generation provider
// at runtime.
type AdminAI struct {
	registry *ai.Registry
}

// NewAdminAI creates the provider admin handler group.
func NewAdminAI(registry *ai.Registry) *AdminAI {
	return &AdminAI{registry: registry}
}

type providersResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

type switchRequest struct {
	Name string `json:"name"`
}

// Providers lists the configured providers and the active one.
func (h *AdminAI) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providersResponse{
		Active:    h.registry.ActiveName(),
		Available: h.registry.Available(),
	})
}

// SetActive switches the active provider. Only providers with an API key
// can be selected.
func (h *AdminAI) SetActive(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if !h.registry.HasProvider(name) {
		writeError(w, http.StatusBadRequest, "Provider is not configured")
		return
	}
	if err := h.registry.SetActive(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("ai provider switched", "provider", name, "by", middleware.UserID(r.Context()))
	h.Providers(w, r)
}
