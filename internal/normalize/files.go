// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package normalize

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"sitecraft/internal/project"
)

var (
	componentFile = regexp.MustCompile(`(?i)^(?:src/)?components?/.*\.(?:tsx|jsx|js)$`)
	pageFile      = regexp.MustCompile(`(?i)^(?:src/)?(?:app|pages)/.*\.(?:tsx|jsx|js)$`)
	stylesheet    = regexp.MustCompile(`(?i)\.(?:css|scss)$`)
	nameSplit     = regexp.MustCompile(`[-_.\s]+`)
	jsxElement    = regexp.MustCompile(`return\s*\(?\s*<[A-Za-z>]`)

	pageImport        = regexp.MustCompile(`import\s+[\w{}\s,*]+\s+from\s+['"][^'"]+['"]\s*;?\s*`)
	pageSideImport    = regexp.MustCompile(`(?m)^\s*import\s+['"][^'"]+['"]\s*;?[ \t]*\n?`)
	pageUseDirective  = regexp.MustCompile(`(?m)^\s*['"]use\s+(?:client|server)['"]\s*;?[ \t]*\n?`)
	pageExportNamed   = regexp.MustCompile(`export\s+default\s+function\s+\w+\s*\(`)
	pageExportAnon    = regexp.MustCompile(`export\s+default\s+function\s*\(`)
	pageExportIdent   = regexp.MustCompile(`(?m)export\s+default\s+(\w+)\s*;?\s*$`)
	pageExportDefault = regexp.MustCompile(`export\s+default\s+`)
)

// bootTail mounts App when the entry source does not render anything itself.
const bootTail = "\n\nconst rootEl = document.getElementById('root');\n" +
	"if (rootEl && typeof ReactDOM !== 'undefined') {\n" +
	"  if (typeof ReactDOM.createRoot === 'function') {\n" +
	"    ReactDOM.createRoot(rootEl).render(<App />);\n" +
	"  } else {\n" +
	"    ReactDOM.render(<App />, rootEl);\n" +
	"  }\n" +
	"}\n"

// ConvertFiles converts the files-list response shape into the component
// shape. Component files become components, the page file (if any) becomes
// the entry composition, and every stylesheet is concatenated. Fields of
// existing that the conversion does not produce are kept.
func ConvertFiles(files []project.File, existing *project.EntryConfig) *project.CanonicalProject {
	comps := []project.Component{}
	var pages []project.File
	var styles []string

	for _, f := range files {
		switch {
		case !isMarkupFile(f):
			// Plain script modules such as utils.js are not components.
		case componentFile.MatchString(f.Path):
			comps = append(comps, project.Component{
				Name:     ComponentName(f.Path),
				Type:     project.KindComponent,
				Path:     jsxPath(srcPath(f.Path)),
				Code:     f.Content,
				Language: "jsx",
			})
		case pageFile.MatchString(f.Path):
			pages = append(pages, f)
		case stylesheet.MatchString(f.Path):
			styles = append(styles, f.Content)
		}
	}

	var entry string
	page, hasPage := pickPage(pages)
	switch {
	case hasPage && len(comps) > 0:
		entry = RewritePage(page.Content)
	case hasPage:
		// A lone page is itself the only component.
		name := ComponentName(page.Path)
		comps = append(comps, project.Component{
			Name:     name,
			Type:     project.KindPage,
			Path:     jsxPath(srcPath(page.Path)),
			Code:     page.Content,
			Language: "jsx",
		})
		entry = ComposeApp([]string{name})
	case len(comps) > 0:
		entry = ComposeApp(componentNames(comps))
	}

	out := project.EntryConfig{}
	if existing != nil {
		out = *existing
	}
	if entry != "" {
		out.MainJSX = entry
		out.MainJS = entry
	}
	if style := strings.Join(styles, "\n\n"); style != "" {
		out.StyleCSS = style
	}

	return &project.CanonicalProject{Components: comps, Entry: &out}
}

// ComponentName derives an exposed identifier from a file path: the base
// name is split on separators and each segment gets an upper-case first
// letter. Inner capitals are kept so "HeroSection.tsx" stays "HeroSection".
func ComponentName(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	for _, seg := range nameSplit.Split(base, -1) {
		seg = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '$' {
				return r
			}
			return -1
		}, seg)
		if seg == "" {
			continue
		}
		runes := []rune(seg)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}

	name := b.String()
	if name == "" {
		return "Component"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "C" + name
	}
	return name
}

// RewritePage turns a page module into an entry composition: imports and
// the "use client" directive are removed, the default export is renamed
// to App, and a mount tail is appended when the page renders nothing.
func RewritePage(src string) string {
	out := pageUseDirective.ReplaceAllString(src, "")
	out = pageImport.ReplaceAllString(out, "")
	out = pageSideImport.ReplaceAllString(out, "")
	out = pageExportNamed.ReplaceAllString(out, "function App(")
	out = pageExportAnon.ReplaceAllString(out, "function App(")

	if m := pageExportIdent.FindStringSubmatch(out); m != nil {
		if name := m[1]; name != "App" {
			q := regexp.QuoteMeta(name)
			out = regexp.MustCompile(`\bconst\s+`+q+`\s*=`).ReplaceAllString(out, "const App =")
			out = regexp.MustCompile(`\bfunction\s+`+q+`\s*\(`).ReplaceAllString(out, "function App(")
		}
		out = pageExportIdent.ReplaceAllString(out, "")
	}
	out = pageExportDefault.ReplaceAllString(out, "")

	if !strings.Contains(out, "ReactDOM.createRoot") && !strings.Contains(out, "ReactDOM.render") {
		out += bootTail
	}
	return out
}

// ComposeApp synthesizes an entry composition rendering every name in order.
func ComposeApp(names []string) string {
	tags := make([]string, 0, len(names))
	for _, n := range names {
		tags = append(tags, "<"+n+" />")
	}
	return "function App() { return (<>" + strings.Join(tags, " ") + "</>); }\n" +
		strings.TrimPrefix(bootTail, "\n\n")
}

// isMarkupFile reports whether f may hold a component. A .js file counts
// only when its content uses markup.
func isMarkupFile(f project.File) bool {
	if !strings.HasSuffix(strings.ToLower(f.Path), ".js") {
		return true
	}
	return project.Component{Path: f.Path, Code: f.Content}.IsMarkup() || jsxElement.MatchString(f.Content)
}

// jsxPath gives markup held in a .js file the .jsx extension Vite needs
// to transpile it.
func jsxPath(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ".js") {
		return p[:len(p)-len(".js")] + ".jsx"
	}
	return p
}

// pickPage prefers a page or index file when several pages are present.
func pickPage(pages []project.File) (project.File, bool) {
	if len(pages) == 0 {
		return project.File{}, false
	}
	for _, p := range pages {
		base := strings.ToLower(path.Base(p.Path))
		base = strings.TrimSuffix(base, path.Ext(base))
		if base == "page" || base == "index" {
			return p, true
		}
	}
	return pages[0], true
}

func srcPath(p string) string {
	if strings.HasPrefix(p, "src/") {
		return p
	}
	return "src/" + p
}

func componentNames(comps []project.Component) []string {
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, c.Name)
	}
	return names
}
