// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package preview turns a project into one self-contained HTML document
// that renders it in a sandboxed frame without a build step. Every
// component is rewritten into its own closure in a flat script scope, an
// entry composition mounts them, and the whole script runs guarded so a
// broken generation shows a diagnostic panel instead of a blank frame.
package preview

import (
	"context"
	"fmt"
	"log/slog"

	"sitecraft/internal/normalize"
	"sitecraft/internal/project"
	"sitecraft/internal/respparse"
)

// Stage is a step of a single render.
type Stage int

const (
	StageIdle Stage = iota
	StageParsing
	StageNormalizing
	StageSanitizing
	StageRewriting
	StageSynthesizing
	StageRendered
	StageFailed
)

var stageNames = [...]string{
	StageIdle:         "idle",
	StageParsing:      "parsing",
	StageNormalizing:  "normalizing",
	StageSanitizing:   "sanitizing",
	StageRewriting:    "rewriting",
	StageSynthesizing: "synthesizing",
	StageRendered:     "rendered",
	StageFailed:       "failed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// run is the state of one render. A new run is created for every request.
type run struct {
	opts  Options
	stage Stage
	trail []Stage
}

func newRun(opts Options) *run {
	return &run{opts: opts, stage: StageIdle, trail: []Stage{StageIdle}}
}

func (r *run) enter(s Stage) {
	slog.Debug("preview stage", "from", r.stage, "to", s)
	r.stage = s
	r.trail = append(r.trail, s)
}

// Cache stores synthesized documents by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, doc []byte)
}

// Renderer produces preview documents, consulting an optional cache.
// It holds no per-render state and is safe for concurrent use.
type Renderer struct {
	cache Cache
}

// NewRenderer creates a renderer. A nil cache disables caching.
func NewRenderer(cache Cache) *Renderer {
	return &Renderer{cache: cache}
}

// Render returns the preview document for a persisted project. Documents
// are cached under key when a key is given; the output is a pure function
// of the project, so a cached document is always current until the
// project is deleted.
func (r *Renderer) Render(ctx context.Context, key string, p project.Project, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.cache != nil && key != "" {
		if doc, ok := r.cache.Get(ctx, key); ok {
			return doc, nil
		}
	}

	doc := []byte(newRun(opts).synthesize(p))

	if r.cache != nil && key != "" {
		r.cache.Set(ctx, key, doc)
	}
	return doc, nil
}

// RenderResponse runs the whole chain on a raw model response.
func (r *Renderer) RenderResponse(ctx context.Context, raw string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	run := newRun(opts)
	run.enter(StageParsing)
	doc, err := respparse.Parse(raw)
	run.enter(StageNormalizing)
	p := normalize.Resolve(normalize.Classify(raw, doc, err))
	return []byte(run.synthesize(p)), nil
}
