// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generate

import (
	"embed"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// DetailedPromptThreshold is the prompt length above which the user's text
// is kept verbatim instead of getting category requirements.
const DetailedPromptThreshold = 800

var (
	// SystemPrompt instructs the model about the required response shape.
	SystemPrompt = mustPrompt("system")

	detailedPrompt  = mustPrompt("detailed")
	universalPrompt = mustPrompt("universal")
)

// category maps prompt keywords to an extra requirement block. The first
// matching category wins.
type category struct {
	keywords []string
	body     string
}

var categories = []category{
	{keywords: []string{"shop", "store", "business", "cake", "bakery"}, body: mustPrompt("shop")},
	{keywords: []string{"calculator", "calc"}, body: mustPrompt("calculator")},
	{keywords: []string{"todo", "task"}, body: mustPrompt("todo")},
}

var genericPrompt = mustPrompt("generic")

func mustPrompt(name string) string {
	b, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		panic("generate: missing prompt " + name)
	}
	return strings.TrimRight(string(b), "\n")
}

// EnhancePrompt wraps the user's prompt with build requirements. Long
// prompts are preserved verbatim inside a fixed frame; short ones get the
// requirement block of the first matching category.
func EnhancePrompt(prompt string) string {
	if len(prompt) > DetailedPromptThreshold {
		return strings.Replace(detailedPrompt, "{{PROMPT}}", prompt, 1)
	}

	var b strings.Builder
	b.WriteString("Create a ")
	b.WriteString(prompt)
	b.WriteString(" as a Vite project with component-based architecture. Break down the UI into reusable components:\n\n")
	b.WriteString(categoryFor(prompt))
	b.WriteString("\n\n")
	b.WriteString(universalPrompt)
	return b.String()
}

func categoryFor(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, c := range categories {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.body
			}
		}
	}
	return genericPrompt
}
