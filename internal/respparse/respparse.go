// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package respparse turns raw model output into a decoded JSON object,
// tolerating markdown fences and output that was cut off mid-value.
package respparse

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"sitecraft/internal/project"
)

const fence = "```"

// repairSuffixes are tried in order against truncated text. Each closes an
// open string and then the innermost containers of the usual response shapes.
var repairSuffixes = []string{
	"\"\n}\n]\n}",
	"\"\n}\n}",
	"\"\n]\n}",
}

// partialEscape matches an incomplete \u escape at the end of a string.
var partialEscape = regexp.MustCompile(`\\u[0-9a-fA-F]{0,3}$`)

// Document is a successfully decoded response.
type Document struct {
	// Raw holds the exact bytes that were accepted, including any suffix.
	Raw json.RawMessage
	// Value is the decoded top-level object.
	Value map[string]any
	// Repaired is true when a closing suffix had to be appended.
	Repaired bool
	// Suffix is the appended closing sequence, if any.
	Suffix string
}

// StripFence removes one markdown code fence from the outermost boundaries
// of s: a leading fence line with an optional language tag and a trailing
// fence. Backtick runs anywhere else in the text are left alone.
func StripFence(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, fence) {
		if i := strings.IndexByte(t, '\n'); i >= 0 {
			t = t[i+1:]
		} else {
			t = strings.TrimLeft(t[len(fence):], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}
	t = strings.TrimSpace(t)
	if strings.HasSuffix(t, fence) {
		t = t[:len(t)-len(fence)]
	}
	return strings.TrimSpace(t)
}

// Parse decodes a raw model response. It tries the fence-stripped text,
// then truncation repair, then the unstripped text. When everything fails
// the returned error is a *project.ParseFailure carrying the raw text.
func Parse(raw string) (*Document, error) {
	stripped := StripFence(raw)
	if stripped != strings.TrimSpace(raw) {
		slog.Debug("response fence stripped")
	}

	doc, err := ParseRepaired(stripped)
	if err == nil {
		return doc, nil
	}

	if stripped != raw {
		if doc, rawErr := decode(raw); rawErr == nil {
			slog.Debug("response parsed without fence stripping")
			return doc, nil
		}
	}

	return nil, &project.ParseFailure{Raw: raw, Err: err}
}

// ParseRepaired decodes text strictly and, when the failure indicates
// truncation, retries with each repair candidate.
func ParseRepaired(text string) (*Document, error) {
	doc, err := decode(text)
	if err == nil {
		return doc, nil
	}
	if !Truncated(err) {
		return nil, err
	}

	for _, suffix := range repairSuffixes {
		if doc, repErr := decode(text + suffix); repErr == nil {
			slog.Debug("truncated response repaired", "suffix", suffix)
			doc.Repaired = true
			doc.Suffix = suffix
			return doc, nil
		}
	}

	if repaired, closer, ok := balance(text); ok {
		if doc, repErr := decode(repaired); repErr == nil {
			slog.Debug("truncated response repaired by bracket balancing", "suffix", closer)
			doc.Repaired = true
			doc.Suffix = closer
			return doc, nil
		}
	}

	return nil, err
}

// Truncated reports whether a decode error means the input ended early.
func Truncated(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return strings.Contains(syn.Error(), "unexpected end of JSON input")
	}
	return false
}

// decode strictly parses text as a JSON object.
func decode(text string) (*Document, error) {
	data := []byte(strings.TrimSpace(text))
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("response is not a JSON object")
	}
	return &Document{Raw: json.RawMessage(data), Value: v}, nil
}

// balance closes every container left open at the end of text. It returns
// the repaired text and the closing sequence that was appended.
func balance(text string) (string, string, bool) {
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", "", false
			}
			stack = stack[:len(stack)-1]
		}
	}

	body := strings.TrimRight(text, " \t\r\n")
	var closer strings.Builder
	if inString {
		if escaped {
			body = body[:len(body)-1]
		}
		body = partialEscape.ReplaceAllString(body, "")
		closer.WriteByte('"')
	} else {
		body = strings.TrimRight(body, ", \t\r\n")
	}
	for i := len(stack) - 1; i >= 0; i-- {
		closer.WriteByte(stack[i])
	}
	if closer.Len() == 0 {
		return "", "", false
	}
	return body + closer.String(), closer.String(), true
}
