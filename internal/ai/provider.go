// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai talks to the code generation models. Every provider
// implements Provider, and the Registry selects the active one by name.
// v0, OpenAI and Mistral share the OpenAI-compatible chat client; Gemini
// uses the official genai client and Claude the Messages API.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Provider names.
const (
	V0      = "v0"
	OpenAI  = "openai"
	Mistral = "mistral"
	Claude  = "claude"
	Gemini  = "gemini"
)

// Provider defines the interface that all AI providers must implement.
type Provider interface {
	// Generate sends a prompt to the model and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the user's request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "v0", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and sampling settings for a single
// provider. Generated projects are large, so MaxTokens should be generous
// enough that responses are rarely cut off.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// APIError is returned when a provider answers with an error status.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	moderator Moderator // nil when no moderation endpoint is configured
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys, and unknown names,
// are skipped. Prompts are moderated through OpenAI when an OpenAI key is
// configured.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case V0:
			r.providers[name] = newChat(V0, cfg, "https://api.v0.dev/v1")
		case OpenAI:
			r.providers[name] = newChat(OpenAI, cfg, "https://api.openai.com/v1")
		case Mistral:
			r.providers[name] = newChat(Mistral, cfg, "https://api.mistral.ai/v1")
		case Claude:
			r.providers[name] = newClaude(cfg)
		case Gemini:
			p, err := newGemini(context.Background(), cfg)
			if err != nil {
				slog.Warn("gemini provider unavailable", "error", err)
				continue
			}
			r.providers[name] = p
		}
	}

	if cfg, ok := configs[OpenAI]; ok && cfg.APIKey != "" {
		r.moderator = newOpenAIModerator(cfg.APIKey, cfg.BaseURL)
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all configured providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// SetModerator replaces the prompt moderator. A nil moderator disables
// moderation.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckPrompt runs the user prompt through the moderation API before
// generation. Without a moderator every prompt is reported safe.
func (r *Registry) CheckPrompt(ctx context.Context, prompt string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, prompt)
}

// HasProvider checks whether a named provider is configured.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
