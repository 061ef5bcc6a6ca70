// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package normalize converts any recognised model response shape into one
// renderable project. Decoded objects are classified against JSON schemas
// for the files-list, component and flat-markup shapes; undecodable text
// goes through an extraction fallback that always yields something.
package normalize

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"sitecraft/internal/jsonutil"
	"sitecraft/internal/project"
	"sitecraft/internal/respparse"
)

// Extraction patterns for responses that did not decode as a whole.
var (
	componentsObject = regexp.MustCompile(`(?s)\{.*"components".*\}`)
	legacyObject     = regexp.MustCompile(`(?s)\{.*"html".*"css".*"js".*\}`)

	htmlBlock = regexp.MustCompile("(?s)```(?:html|HTML)\\s*\\n(.*?)```")
	cssBlock  = regexp.MustCompile("(?s)```(?:css|CSS)\\s*\\n(.*?)```")
	jsBlock   = regexp.MustCompile("(?s)```(?:javascript|js|JS)\\s*\\n(.*?)```")
	htmlTag   = regexp.MustCompile(`(?is)<html[^>]*>(.*?)</html>`)
	styleTag  = regexp.MustCompile(`(?is)<style>(.*?)</style>`)
	scriptTag = regexp.MustCompile(`(?is)<script>(.*?)</script>`)
)

// FromResponse runs the full parse, classify and resolve chain.
func FromResponse(raw string) project.Project {
	doc, err := respparse.Parse(raw)
	return Resolve(Classify(raw, doc, err))
}

// Classify maps a parse result onto the Shape union. A failed parse is
// returned as *project.ParseFailure; a decoded object is checked against
// the files-list shape first, then the component shape, and is otherwise
// read as the flat markup shape.
func Classify(raw string, doc *respparse.Document, err error) project.Shape {
	if err != nil || doc == nil {
		var pf *project.ParseFailure
		if errors.As(err, &pf) {
			return pf
		}
		return &project.ParseFailure{Raw: raw, Err: err}
	}
	return classifyValue(doc.Value)
}

func classifyValue(v map[string]any) project.Shape {
	switch {
	case matches(schemas.files, v):
		files := decodeFiles(v["files"])
		slog.Debug("converting files-list response", "files", len(files))
		converted := ConvertFiles(files, decodeEntry(v["viteConfig"]))
		if len(converted.Components) == 0 {
			slog.Debug("files-list response has no components, using flat markup fields")
			return decodeLegacy(v)
		}
		return converted

	case matches(schemas.canonical, v):
		p := decodeCanonical(v)
		if len(p.Components) == 0 {
			slog.Debug("component response is empty, using flat markup fields")
			return decodeLegacy(v)
		}
		return p

	default:
		if !matches(schemas.legacy, v) {
			slog.Debug("response has no recognised fields, using placeholders")
		}
		return decodeLegacy(v)
	}
}

// Resolve turns any Shape into a renderable Project. It never returns nil.
func Resolve(s project.Shape) project.Project {
	switch v := s.(type) {
	case *project.CanonicalProject:
		if len(v.Components) == 0 {
			return project.Placeholder()
		}
		return v
	case *project.LegacyProject:
		return v.WithPlaceholders()
	case *project.ParseFailure:
		return recoverText(v.Raw)
	default:
		return project.Placeholder()
	}
}

// recoverText is the extraction fallback for text that did not decode.
func recoverText(raw string) project.Project {
	for _, re := range []*regexp.Regexp{componentsObject, legacyObject} {
		m := re.FindString(raw)
		if m == "" {
			continue
		}
		doc, err := respparse.ParseRepaired(m)
		if err != nil {
			slog.Debug("embedded object did not decode", "error", err)
			continue
		}
		slog.Debug("recovered embedded object from response", "repaired", doc.Repaired)
		return Resolve(classifyValue(doc.Value))
	}

	slog.Debug("extracting code blocks from response")
	legacy := &project.LegacyProject{
		HTML: firstCapture(raw, htmlBlock, htmlTag),
		CSS:  firstCapture(raw, cssBlock, styleTag),
		JS:   firstCapture(raw, jsBlock, scriptTag),
	}
	return legacy.WithPlaceholders()
}

func firstCapture(s string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func decodeCanonical(v map[string]any) *project.CanonicalProject {
	items, _ := v["components"].([]any)
	p := &project.CanonicalProject{Components: make([]project.Component, 0, len(items))}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p.Components = append(p.Components, project.Component{
			Name:     jsonutil.StringOrJSON(m["name"]),
			Type:     jsonutil.StringOrJSON(m["type"]),
			Path:     jsonutil.StringOrJSON(m["path"]),
			Code:     jsonutil.StringOrJSON(m["code"]),
			Language: jsonutil.StringOrJSON(m["language"]),
		})
	}
	p.Entry = decodeEntry(v["viteConfig"])
	return p
}

func decodeEntry(v any) *project.EntryConfig {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &project.EntryConfig{
		PackageJSON: jsonutil.StringOrJSON(m["packageJson"]),
		ViteConfig:  jsonutil.StringOrJSON(m["viteConfig"]),
		IndexHTML:   jsonutil.StringOrJSON(m["indexHtml"]),
		MainJS:      jsonutil.StringOrJSON(m["mainJs"]),
		MainJSX:     jsonutil.StringOrJSON(m["mainJsx"]),
		StyleCSS:    jsonutil.StringOrJSON(m["styleCss"]),
	}
}

func decodeFiles(v any) []project.File {
	items, _ := v.([]any)
	files := make([]project.File, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		files = append(files, project.File{
			Path:    jsonutil.StringOrJSON(m["path"]),
			Content: jsonutil.StringOrJSON(m["content"]),
		})
	}
	return files
}

func decodeLegacy(v map[string]any) *project.LegacyProject {
	return &project.LegacyProject{
		HTML: firstString(v, "html", "HTML"),
		CSS:  firstString(v, "css", "CSS"),
		JS:   firstString(v, "js", "JS", "javascript"),
	}
}

func firstString(v map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := v[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
