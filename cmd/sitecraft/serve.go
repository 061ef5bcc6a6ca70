// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sitecraft/internal/ai"
	"sitecraft/internal/cache"
	"sitecraft/internal/config"
	"sitecraft/internal/database"
	"sitecraft/internal/generate"
	"sitecraft/internal/handlers"
	"sitecraft/internal/materialize"
	"sitecraft/internal/middleware"
	"sitecraft/internal/otp"
	"sitecraft/internal/preview"
	"sitecraft/internal/router"
	"sitecraft/internal/session"
	"sitecraft/internal/storage"
	"sitecraft/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// providerConfigs maps every provider to its configured credentials.
// Providers without a key are skipped by the registry.
func providerConfigs(cfg *config.Config) map[string]ai.ProviderConfig {
	pc := func(key, model, baseURL string) ai.ProviderConfig {
		return ai.ProviderConfig{
			APIKey:      key,
			Model:       model,
			BaseURL:     baseURL,
			Temperature: cfg.AITemperature,
			MaxTokens:   cfg.AIMaxTokens,
		}
	}
	return map[string]ai.ProviderConfig{
		ai.V0:      pc(cfg.V0Key, cfg.V0Model, cfg.V0BaseURL),
		ai.OpenAI:  pc(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
		ai.Mistral: pc(cfg.MistralKey, cfg.MistralModel, cfg.MistralBaseURL),
		ai.Claude:  pc(cfg.ClaudeKey, cfg.ClaudeModel, cfg.ClaudeBaseURL),
		ai.Gemini:  pc(cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiBaseURL),
	}
}

// runServe loads configuration, connects to services, sets up routing,
// and runs the HTTP server until SIGINT or SIGTERM.
func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	setupServerLogging(cfg.IsDev())
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	// Roles and plans are required everywhere; the dev admin only in development.
	seed := database.SeedReference
	if cfg.IsDev() {
		seed = database.Seed
	}
	if err := seed(ctx, db); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	valkeyClient, err := cache.ConnectValkey(ctx, cache.ValkeyOptions{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// Outside development the server sits behind HTTPS.
	secureCookies := !cfg.IsDev()
	var hstsMaxAge time.Duration
	if secureCookies {
		hstsMaxAge = 180 * 24 * time.Hour
	}
	sessionStore := session.NewStore(valkeyClient, session.Options{
		TTL:    cfg.SessionTTL,
		Secure: secureCookies,
	})
	codes := otp.New(valkeyClient, otp.LogMailer{}, cfg.OTPExpiry)

	userStore := store.NewUserStore(db)
	planStore := store.NewPlanStore(db)
	websiteStore := store.NewWebsiteStore(db)
	promptStore := store.NewPromptStore(db)

	registry := ai.NewRegistry(cfg.AIProvider, providerConfigs(cfg))
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)
	if !registry.HasProvider(cfg.AIProvider) {
		slog.Warn("active ai provider has no api key, generation will fail", "provider", cfg.AIProvider)
	}

	previewCache, err := cache.NewPreviewCache(valkeyClient, cache.DefaultL1Size, cfg.PreviewCacheTTL)
	if err != nil {
		return fmt.Errorf("preview cache: %w", err)
	}
	renderer := preview.NewRenderer(previewCache)

	if err := os.MkdirAll(cfg.SitesDir, 0o755); err != nil {
		return fmt.Errorf("create sites dir: %w", err)
	}
	files := materialize.New(cfg.SitesDir)

	// Object storage is optional; downloads stream from disk without it.
	var archives handlers.ArchiveStore
	if cfg.S3Enabled() {
		client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			return fmt.Errorf("s3 storage: %w", err)
		}
		if client != nil {
			archives = client
			slog.Info("s3 archive storage connected", "endpoint", cfg.S3Endpoint, "bucket", client.Bucket())
		}
	} else {
		slog.Warn("s3 storage not configured, downloads stream from disk")
	}

	generator := generate.NewService(registry, websiteStore, promptStore, files)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitGenerate > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitGenerate, time.Hour, middleware.ByUser)
		defer limiter.Stop()
	}

	r := router.New(sessionStore, router.Handlers{
		Auth:     handlers.NewAuth(sessionStore, userStore, codes),
		Websites: handlers.NewWebsites(generator, websiteStore, files, renderer, previewCache, archives),
		Prompts:  handlers.NewPrompts(promptStore),
		Account:  handlers.NewAccount(sessionStore, userStore, planStore),
		AdminAI:  handlers.NewAdminAI(registry),
	}, router.Options{
		SecureCookies: secureCookies,
		HSTSMaxAge:    hstsMaxAge,
		GenerateLimit: limiter,
	})

	// WriteTimeout must accommodate generation requests that wait on the
	// model for a minute or more.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
		slog.Info("shutdown requested", "reason", ctx.Err())
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
