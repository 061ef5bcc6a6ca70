// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains of the
// sitecraft API. Everything under /api is JSON and CSRF protected; the
// website, prompt and account groups require a session.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecraft/internal/handlers"
	"sitecraft/internal/middleware"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Auth     *handlers.Auth
	Websites *handlers.Websites
	Prompts  *handlers.Prompts
	Account  *handlers.Account
	AdminAI  *handlers.AdminAI
}

// Options configures the router.
type Options struct {
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool
	// HSTSMaxAge enables Strict-Transport-Security when positive.
	HSTSMaxAge time.Duration
	// GenerateLimit throttles the generate endpoint. Nil disables it.
	GenerateLimit *middleware.RateLimiter
}

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessions middleware.SessionGetter, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(middleware.HeaderOptions{HSTSMaxAge: opts.HSTSMaxAge}))
	r.Use(middleware.LoadSession(sessions))

	// Health check, no auth and no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/csrf", csrfHandler)
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Post("/verify-otp", h.Auth.VerifyOTP)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/websites", func(r chi.Router) {
				r.Get("/", h.Websites.List)
				r.With(limit(opts.GenerateLimit)).Post("/generate", h.Websites.Generate)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Websites.Get)
					r.Delete("/", h.Websites.Delete)
					r.Get("/preview", h.Websites.Preview)
					r.Get("/preview/frame", h.Websites.PreviewFrame)
					r.Get("/preview/qr", h.Websites.PreviewQR)
					r.Get("/download", h.Websites.Download)
				})
			})

			r.Route("/prompts/history", func(r chi.Router) {
				r.Get("/", h.Prompts.History)
				r.Delete("/{id}", h.Prompts.Delete)
				r.Get("/{id}/response", h.Prompts.Response)
			})

			r.Get("/subscriptions/plans", h.Account.Plans)
			r.Post("/subscriptions/upgrade", h.Account.Upgrade)

			r.Get("/users/profile", h.Account.Profile)
			r.Put("/users/profile", h.Account.UpdateProfile)

			r.Route("/admin/ai", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.AdminAI.Providers)
				r.Put("/", h.AdminAI.SetActive)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// csrfHandler lets a fresh client obtain the CSRF cookie before its first
// unsafe request.
func csrfHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
