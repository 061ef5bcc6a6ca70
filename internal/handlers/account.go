// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"sitecraft/internal/middleware"
	"sitecraft/internal/models"
	"sitecraft/internal/session"
	"sitecraft/internal/store"
)

// Account groups the profile and subscription handlers.
type Account struct {
	sessions *session.Store
	users    *store.UserStore
	plans    *store.PlanStore
}

// NewAccount creates the account handler group.
func NewAccount(sessions *session.Store, users *store.UserStore, plans *store.PlanStore) *Account {
	return &Account{sessions: sessions, users: users, plans: plans}
}

type profileRequest struct {
	Name            string `json:"name"`
	ThemePreference string `json:"themePreference"`
}

type upgradeRequest struct {
	Plan string `json:"plan"`
}

// Profile returns the current user.
func (h *Account) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		serverError(w, "profile lookup", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the user's name and theme.
func (h *Account) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ThemePreference == "" {
		req.ThemePreference = models.ThemeLight
	}
	if msg := validateProfile(req.Name, req.ThemePreference); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), middleware.UserID(r.Context()), strings.TrimSpace(req.Name), req.ThemePreference)
	if err != nil {
		serverError(w, "update profile", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.refreshSession(r, user)
	writeJSON(w, http.StatusOK, user)
}

// Plans lists the subscription plans.
func (h *Account) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		serverError(w, "list plans", err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// Upgrade switches the user's plan. Payment is handled elsewhere.
func (h *Account) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan := models.PlanName(strings.ToLower(strings.TrimSpace(req.Plan)))
	if !models.ValidPlan(plan) {
		writeError(w, http.StatusBadRequest, "Unknown subscription plan")
		return
	}

	user, err := h.users.SetPlan(r.Context(), middleware.UserID(r.Context()), plan)
	if err != nil {
		serverError(w, "set plan", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	slog.Info("subscription changed", "user_id", user.ID, "plan", plan)
	h.refreshSession(r, user)
	writeJSON(w, http.StatusOK, user)
}

// refreshSession copies changed user fields into the session. Failures
// only leave stale display data behind.
func (h *Account) refreshSession(r *http.Request, user *models.User) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || h.sessions == nil {
		return
	}
	updated := *sess
	updated.Name = user.Name
	updated.Plan = string(user.SubscriptionPlan)
	if err := h.sessions.Update(r.Context(), r, &updated); err != nil {
		slog.Warn("session refresh", "error", err)
	}
}
