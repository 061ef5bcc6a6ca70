// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package materialize

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"sitecraft/internal/jsonutil"
	"sitecraft/internal/project"
	"sitecraft/internal/slug"
)

//go:embed defaults/*.tmpl
var defaultsFS embed.FS

var defaults = template.Must(template.New("defaults").ParseFS(defaultsFS, "defaults/*.tmpl"))

var (
	// mainScriptRef matches a reference to src/main.js but not src/main.jsx.
	mainScriptRef = regexp.MustCompile(`src/main\.js\b`)
	nonIdent      = regexp.MustCompile(`[^A-Za-z0-9_$]`)
	fullDocument  = regexp.MustCompile(`(?i)<!doctype|<html[\s>]`)
)

// file is one file of a materialized project. Path is slash-separated and
// relative to the project directory.
type file struct {
	Path    string
	Content string
}

// plan lists every file to write for p.
func plan(p project.Project, websiteName string) ([]file, error) {
	switch v := p.(type) {
	case *project.CanonicalProject:
		return canonicalFiles(v, websiteName)
	case *project.LegacyProject:
		return legacyFiles(v, websiteName)
	default:
		return nil, fmt.Errorf("unsupported project %T", p)
	}
}

func canonicalFiles(p *project.CanonicalProject, websiteName string) ([]file, error) {
	var e project.EntryConfig
	if p.Entry != nil {
		e = *p.Entry
	}

	var files []file
	add := func(name, content string) {
		files = append(files, file{Path: name, Content: content})
	}

	index := e.IndexHTML
	if index == "" {
		s, err := render("index.html.tmpl", page{Name: siteName(websiteName)})
		if err != nil {
			return nil, err
		}
		index = s
	}
	add("index.html", mainScriptRef.ReplaceAllString(index, "src/main.jsx"))

	pkg := e.PackageJSON
	if pkg == "" {
		s, err := packageJSON(websiteName)
		if err != nil {
			return nil, err
		}
		pkg = s
	}
	add("package.json", pkg)

	for _, d := range []struct {
		name, given, tmpl string
	}{
		{"vite.config.js", e.ViteConfig, "vite.config.js.tmpl"},
		{"src/style.css", e.StyleCSS, "style.css.tmpl"},
		{".gitignore", "", "gitignore.tmpl"},
	} {
		content := d.given
		if content == "" {
			s, err := render(d.tmpl, nil)
			if err != nil {
				return nil, err
			}
			content = s
		}
		add(d.name, content)
	}

	entry := e.EntrySource()
	if entry == "" {
		s, err := render("main.jsx.tmpl", entryImports(p.Components))
		if err != nil {
			return nil, err
		}
		entry = s
	}
	add("src/main.jsx", entry)

	for _, c := range p.Components {
		rel, err := componentPath(c)
		if err != nil {
			return nil, err
		}
		add(rel, c.Code)
	}
	return dedupe(files), nil
}

func legacyFiles(p *project.LegacyProject, websiteName string) ([]file, error) {
	index := p.HTML
	if !fullDocument.MatchString(index) {
		s, err := render("legacy.html.tmpl", page{Name: siteName(websiteName), Markup: p.HTML})
		if err != nil {
			return nil, err
		}
		index = s
	}
	return []file{
		{Path: "index.html", Content: index},
		{Path: "styles.css", Content: p.CSS},
		{Path: "app.js", Content: p.JS},
	}, nil
}

// componentPath places a component under src/ unless its declared path
// already starts there. JSX units declared with a .js extension are
// written as .jsx so the build tool transforms them.
func componentPath(c project.Component) (string, error) {
	p := filepath.ToSlash(strings.TrimSpace(c.Path))
	p = strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
	if p == "" {
		p = "components/" + jsName(c.Name) + ".jsx"
	}
	if !strings.HasPrefix(p, "src/") {
		p = "src/" + p
	}
	if strings.EqualFold(c.Language, "jsx") && strings.HasSuffix(p, ".js") {
		p += "x"
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) || path.Clean(p) == "src" {
		return "", fmt.Errorf("%w: component %q at %q", ErrUnsafePath, c.Name, c.Path)
	}
	return path.Clean(p), nil
}

// dedupe keeps the last file written to each path.
func dedupe(files []file) []file {
	last := make(map[string]int, len(files))
	for i, f := range files {
		if j, ok := last[f.Path]; ok {
			slog.Debug("duplicate project file replaced", "path", f.Path, "index", j)
		}
		last[f.Path] = i
	}
	out := make([]file, 0, len(last))
	for i, f := range files {
		if last[f.Path] == i {
			out = append(out, f)
		}
	}
	return out
}

type page struct {
	Name   string
	Markup string
}

type entryImport struct {
	Name   string
	Import string
}

// entryImports lists the components the default entry renders, in
// declaration order.
func entryImports(components []project.Component) []entryImport {
	var out []entryImport
	for _, c := range components {
		if c.Type != "" && c.Type != project.KindComponent {
			continue
		}
		switch strings.ToLower(c.Language) {
		case "js", "jsx", "":
		default:
			continue
		}
		rel, err := componentPath(c)
		if err != nil {
			continue
		}
		rel = strings.TrimPrefix(rel, "src/")
		rel = strings.TrimSuffix(rel, path.Ext(rel))
		out = append(out, entryImport{Name: jsName(c.Name), Import: "./" + rel})
	}
	return out
}

// manifest is the default package.json.
type manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Type            string            `json:"type"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func packageJSON(websiteName string) (string, error) {
	b, err := jsonutil.MarshalNoEscapeIndent(manifest{
		Name:    slug.Package(websiteName),
		Version: "1.0.0",
		Private: true,
		Type:    "module",
		Scripts: map[string]string{
			"dev":     "vite",
			"build":   "vite build",
			"preview": "vite preview",
		},
		Dependencies: map[string]string{
			"react":     "^18.2.0",
			"react-dom": "^18.2.0",
		},
		DevDependencies: map[string]string{
			"vite":                 "^5.0.0",
			"@vitejs/plugin-react": "^4.2.0",
		},
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding package.json: %w", err)
	}
	return string(b) + "\n", nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := defaults.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering default %s: %w", name, err)
	}
	return buf.String(), nil
}

func siteName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Generated Website"
	}
	return name
}

// jsName turns a component name into an identifier usable in an import.
func jsName(name string) string {
	s := nonIdent.ReplaceAllString(name, "")
	if s == "" {
		return "Component"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "C" + s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
