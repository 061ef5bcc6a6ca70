// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"runtime/debug"
	"strings"
	"text/template"

	"sitecraft/internal/normalize"
	"sitecraft/internal/project"
	"sitecraft/internal/sanitize"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var documents = template.Must(template.New("preview").ParseFS(templateFS, "templates/*.html.tmpl"))

var (
	closingScript = regexp.MustCompile(`(?i)</(script)`)
	closingStyle  = regexp.MustCompile(`(?i)</(style)`)
)

const defaultTitle = "Generated Website"

// Options carries per-render settings.
type Options struct {
	WebsiteName string
}

func (o Options) title() string {
	if strings.TrimSpace(o.WebsiteName) == "" {
		return defaultTitle
	}
	return o.WebsiteName
}

type scriptPage struct {
	Title     string
	Style     string
	MountID   string
	Fallbacks string
	Units     string
	Entry     string
}

type legacyPage struct {
	Title  string
	Style  string
	Markup string
	Script string
}

type failurePage struct {
	Title   string
	Message string
	Stack   string
}

// Synthesize builds the complete preview document for p. It never fails:
// any fault while building the document produces a document describing
// the fault instead.
func Synthesize(p project.Project, opts Options) string {
	return newRun(opts).synthesize(p)
}

func (r *run) synthesize(p project.Project) (doc string) {
	defer func() {
		if v := recover(); v != nil {
			doc = r.failure(fmt.Errorf("%v", v), string(debug.Stack()))
		}
	}()

	if r.stage != StageNormalizing {
		r.enter(StageNormalizing)
	}
	p = normalize.Resolve(p)

	r.enter(StageSanitizing)
	p = sanitize.Project(p)

	var out string
	var err error
	switch v := p.(type) {
	case *project.CanonicalProject:
		r.enter(StageRewriting)
		prog := Rewrite(v)
		r.enter(StageSynthesizing)
		out, err = r.program(prog, v.Entry.Stylesheet())
	case *project.LegacyProject:
		r.enter(StageSynthesizing)
		out, err = r.legacy(v)
	default:
		err = fmt.Errorf("unsupported project %T", p)
	}
	if err != nil {
		return r.failure(err, "")
	}

	r.enter(StageRendered)
	return sanitize.ReplaceBrokenImages(out, sanitize.DocumentWindow)
}

func (r *run) program(prog *Program, style string) (string, error) {
	page := scriptPage{
		Title:     r.opts.title(),
		Style:     escapeStyle(style),
		MountID:   prog.MountID,
		Fallbacks: escapeScript(prog.FallbackCode()),
		Units:     escapeScript(prog.UnitCode()),
		Entry:     escapeScript(prog.Entry),
	}
	name := "react.html.tmpl"
	if prog.Dialect == DialectScript {
		name = "script.html.tmpl"
	}
	return execute(name, page)
}

// legacy embeds flat blocks. A block that is already a full document is
// used as the base, and the stylesheet and script are injected only when
// the document does not carry its own.
func (r *run) legacy(p *project.LegacyProject) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(p.HTML))
	if !strings.Contains(lower, "<!doctype") && !strings.Contains(lower, "<html") {
		return execute("legacy.html.tmpl", legacyPage{
			Title:  r.opts.title(),
			Style:  escapeStyle(p.CSS),
			Markup: p.HTML,
			Script: escapeScript(p.JS),
		})
	}

	doc := p.HTML
	if !strings.Contains(strings.ToLower(doc), "<style") && p.CSS != "" {
		doc = insertBefore(doc, "</head>", "<style>"+escapeStyle(p.CSS)+"</style>", false)
	}
	if !strings.Contains(strings.ToLower(doc), "<script") && p.JS != "" {
		doc = insertBefore(doc, "</body>", "<script>"+escapeScript(p.JS)+"</script>", true)
	}
	return doc, nil
}

// insertBefore inserts s before the first case-insensitive occurrence of
// marker. Without the marker s is appended, or prepended when atEnd is
// false.
func insertBefore(doc, marker, s string, atEnd bool) string {
	if i := strings.Index(strings.ToLower(doc), marker); i >= 0 {
		return doc[:i] + s + doc[i:]
	}
	if atEnd {
		return doc + s
	}
	return s + doc
}

func (r *run) failure(err error, stack string) string {
	r.enter(StageFailed)
	slog.Warn("preview synthesis failed", "error", err)
	out, terr := execute("failure", failurePage{Title: r.opts.title(), Message: err.Error(), Stack: stack})
	if terr != nil {
		return "<!DOCTYPE html><html><body><pre>" + template.HTMLEscapeString(err.Error()) + "</pre></body></html>"
	}
	return out
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := documents.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return buf.String(), nil
}

func escapeScript(s string) string {
	return closingScript.ReplaceAllString(s, `<\/$1`)
}

func escapeStyle(s string) string {
	return closingStyle.ReplaceAllString(s, `<\/$1`)
}
