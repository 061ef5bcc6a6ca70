// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // flagged category names, empty when safe
}

// Moderator checks user prompts for policy violations before they are
// sent to a generation model.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// openAIModerator uses the OpenAI moderation endpoint, which is free for
// every OpenAI key holder.
type openAIModerator struct {
	client *openai.Client
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	oc.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	return &openAIModerator{client: openai.NewClientWithConfig(oc)}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	resp, err := m.client.Moderations(ctx, openai.ModerationRequest{
		Model: openai.ModerationOmniLatest,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}
	if len(resp.Results) == 0 || !resp.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	flagged, err := flaggedCategories(resp.Results[0].Categories)
	if err != nil {
		return nil, err
	}
	return &ModerationResult{Safe: false, Categories: flagged}, nil
}

// flaggedCategories lists the flagged categories by their API names in
// readable form: "hate/threatening" becomes "hate (threatening)".
func flaggedCategories(c openai.ResultCategories) ([]string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("moderation categories: %w", err)
	}
	var byName map[string]bool
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("moderation categories: %w", err)
	}

	var out []string
	for name, hit := range byName {
		if !hit {
			continue
		}
		display := name
		if i := strings.IndexByte(name, '/'); i >= 0 {
			display = name[:i] + " (" + name[i+1:] + ")"
		}
		out = append(out, strings.ReplaceAll(display, "-", " "))
	}
	sort.Strings(out)
	return out, nil
}
