// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiProvider implements the Provider interface with the official
// Gemini client.
type geminiProvider struct {
	config ProviderConfig
	client *genai.Client
}

func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiProvider{config: cfg, client: client}, nil
}

func (p *geminiProvider) Name() string { return Gemini }

// Generate sends a generateContent request and joins the text parts of the
// first candidate.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if p.config.Temperature > 0 {
		gc.Temperature = genai.Ptr(p.config.Temperature)
	}
	if p.config.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(p.config.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, genai.Text(userPrompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini: no text in response")
	}
	return text.String(), nil
}
