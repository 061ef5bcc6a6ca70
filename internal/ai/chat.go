// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// generationTimeout bounds one model call. Complete projects take minutes
// to generate.
const generationTimeout = 5 * time.Minute

// chatProvider implements Provider over an OpenAI-compatible chat
// completions API. v0, OpenAI and Mistral all speak this protocol and
// differ only in base URL and model names.
type chatProvider struct {
	name   string
	config ProviderConfig
	client *openai.Client
}

func newChat(name string, cfg ProviderConfig, defaultBaseURL string) *chatProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: generationTimeout}

	return &chatProvider{
		name:   name,
		config: cfg,
		client: openai.NewClientWithConfig(oc),
	}
}

func (p *chatProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's
// response text.
func (p *chatProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrap(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		slog.Warn("model output hit the token limit", "provider", p.name, "max_tokens", p.config.MaxTokens)
	}
	return choice.Message.Content, nil
}

// wrap converts client errors carrying an HTTP status into *APIError.
func (p *chatProvider) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: p.name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := strings.TrimSpace(string(reqErr.Body))
		if msg == "" {
			msg = http.StatusText(reqErr.HTTPStatusCode)
		}
		return &APIError{Provider: p.name, StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return fmt.Errorf("%s chat: %w", p.name, err)
}
