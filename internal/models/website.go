// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"sitecraft/internal/project"
)

// Website is a generated project as persisted. A canonical project stores
// Components and Entry with empty legacy fields; a legacy project stores
// the three flat blocks with Components and Entry nil.
type Website struct {
	ID            uuid.UUID            `json:"id"`
	UserID        uuid.UUID            `json:"userId"`
	Name          string               `json:"websiteName"`
	Prompt        string               `json:"prompt"`
	HTMLCode      string               `json:"htmlCode"`
	CSSCode       string               `json:"cssCode"`
	JSCode        string               `json:"jsCode"`
	Components    []project.Component  `json:"components,omitempty"`
	Entry         *project.EntryConfig `json:"viteConfig,omitempty"`
	GeneratedPath string               `json:"generatedPath"`
	ArchiveKey    string               `json:"-"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// SetProject stores p in the website's columns.
func (w *Website) SetProject(p project.Project) {
	switch p := p.(type) {
	case *project.CanonicalProject:
		w.Components = p.Components
		w.Entry = p.Entry
		w.HTMLCode, w.CSSCode, w.JSCode = "", "", ""
	case *project.LegacyProject:
		w.Components = nil
		w.Entry = nil
		w.HTMLCode, w.CSSCode, w.JSCode = p.HTML, p.CSS, p.JS
	}
}

// Project rebuilds the project value from the stored columns.
func (w *Website) Project() project.Project {
	if len(w.Components) > 0 {
		return &project.CanonicalProject{Components: w.Components, Entry: w.Entry}
	}
	return &project.LegacyProject{HTML: w.HTMLCode, CSS: w.CSSCode, JS: w.JSCode}
}

// PromptHistory records one generation request and the raw model output.
type PromptHistory struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Prompt     string    `json:"prompt"`
	AIResponse string    `json:"aiResponse"`
	CreatedAt  time.Time `json:"createdAt"`
}
