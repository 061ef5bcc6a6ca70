// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives package names and file names from free-form
// website names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// quotes are dropped so "Mom's Bakery" reads momsbakery, not mom-s.
	quotes = regexp.MustCompile("['’`\"]")
	// separators collapses every run of other characters into one hyphen.
	separators = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	// Fallback is used when a name has no usable characters.
	Fallback = "generated-website"
	maxLen   = 64
)

// Generate lower-cases s and joins its ASCII letters and digits with
// hyphens. Example: "Hello, World! 2026" → "hello-world-2026".
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = quotes.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Package returns a name usable as an npm package name: the slug of name,
// cut at a hyphen boundary to at most 64 characters, or Fallback.
func Package(name string) string {
	s := Generate(name)
	if len(s) > maxLen {
		cut := s[:maxLen]
		if s[maxLen] != '-' {
			if i := strings.LastIndexByte(cut, '-'); i > 0 {
				cut = cut[:i]
			}
		}
		s = strings.Trim(cut, "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Archive returns the download file name for a website's project archive.
func Archive(name, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return Package(name) + ".zip"
	}
	return Package(name) + "-" + id + ".zip"
}
