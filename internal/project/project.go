// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package project defines the generated project data model shared by the
// parsing, normalization, preview and materialization stages.
//
// A model response resolves to exactly one Shape: a CanonicalProject, a
// LegacyProject, or a ParseFailure. Once a failure has been recovered the
// narrower Project union is used downstream, so consumers only ever switch
// over the two renderable alternatives.
package project

import (
	"fmt"
	"strings"
)

// Component kinds.
const (
	KindComponent = "component"
	KindPage      = "page"
	KindUtil      = "util"
)

// Placeholder values used when a legacy block is missing.
const (
	PlaceholderHTML = "<div>Generated Website</div>"
	PlaceholderCSS  = "body { margin: 0; padding: 0; }"
	PlaceholderJS   = "// JavaScript code"
)

// Component is one generated source unit.
type Component struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Path     string `json:"path"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// IsMarkup reports whether the component is written in a markup-with-script
// dialect (JSX/TSX), either by declaration or by its content.
func (c Component) IsMarkup() bool {
	switch strings.ToLower(c.Language) {
	case "jsx", "tsx":
		return true
	}
	p := strings.ToLower(c.Path)
	if strings.HasSuffix(p, ".jsx") || strings.HasSuffix(p, ".tsx") {
		return true
	}
	return strings.Contains(c.Code, "import React") ||
		strings.Contains(c.Code, "from 'react'") ||
		strings.Contains(c.Code, `from "react"`) ||
		(strings.Contains(c.Code, "<") && strings.Contains(c.Code, "className="))
}

// EntryConfig holds the optional project-level files. Every field is
// independently optional; materialization fills in defaults.
type EntryConfig struct {
	PackageJSON string `json:"packageJson,omitempty"`
	ViteConfig  string `json:"viteConfig,omitempty"`
	IndexHTML   string `json:"indexHtml,omitempty"`
	MainJS      string `json:"mainJs,omitempty"`
	MainJSX     string `json:"mainJsx,omitempty"`
	StyleCSS    string `json:"styleCss,omitempty"`
}

// EntrySource returns the entry composition source, preferring mainJsx.
func (e *EntryConfig) EntrySource() string {
	if e == nil {
		return ""
	}
	if e.MainJSX != "" {
		return e.MainJSX
	}
	return e.MainJS
}

// Stylesheet returns the project stylesheet or "".
func (e *EntryConfig) Stylesheet() string {
	if e == nil {
		return ""
	}
	return e.StyleCSS
}

// File is one entry of the files-list response shape.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Shape is the result of interpreting a raw model response.
// It is implemented by *CanonicalProject, *LegacyProject and *ParseFailure.
type Shape interface {
	shape()
}

// Project is a renderable project: *CanonicalProject or *LegacyProject.
type Project interface {
	Shape
	project()
}

// CanonicalProject is the component-based representation.
type CanonicalProject struct {
	Components []Component  `json:"components"`
	Entry      *EntryConfig `json:"viteConfig,omitempty"`
}

func (*CanonicalProject) shape()   {}
func (*CanonicalProject) project() {}

// Names returns the component names in declaration order.
func (p *CanonicalProject) Names() []string {
	names := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		names = append(names, c.Name)
	}
	return names
}

// Clone returns a deep copy.
func (p *CanonicalProject) Clone() *CanonicalProject {
	out := &CanonicalProject{Components: make([]Component, len(p.Components))}
	copy(out.Components, p.Components)
	if p.Entry != nil {
		e := *p.Entry
		out.Entry = &e
	}
	return out
}

// LegacyProject is the flat markup/stylesheet/script representation.
type LegacyProject struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

func (*LegacyProject) shape()   {}
func (*LegacyProject) project() {}

// WithPlaceholders returns a copy where every empty block holds its placeholder.
func (p *LegacyProject) WithPlaceholders() *LegacyProject {
	out := *p
	if strings.TrimSpace(out.HTML) == "" {
		out.HTML = PlaceholderHTML
	}
	if strings.TrimSpace(out.CSS) == "" {
		out.CSS = PlaceholderCSS
	}
	if strings.TrimSpace(out.JS) == "" {
		out.JS = PlaceholderJS
	}
	return &out
}

// Placeholder returns the generic project used when nothing could be recovered.
func Placeholder() *LegacyProject {
	return &LegacyProject{HTML: PlaceholderHTML, CSS: PlaceholderCSS, JS: PlaceholderJS}
}

// ParseFailure records a response that could not be decoded even after
// repair. It keeps the raw text so the normalizer can run its extraction
// fallback.
type ParseFailure struct {
	Raw string
	Err error
}

func (*ParseFailure) shape() {}

func (f *ParseFailure) Error() string {
	if f.Err == nil {
		return "parse failure"
	}
	return fmt.Sprintf("parse failure: %v", f.Err)
}

func (f *ParseFailure) Unwrap() error { return f.Err }
