// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"log/slog"
	"regexp"
	"strings"

	"sitecraft/internal/sanitize"
)

const entryName = "App"

var (
	entryExportFunc = regexp.MustCompile(`export\s+default\s+(async\s+)?function\s*\(`)
	entryExport     = regexp.MustCompile(`\bexport\s+(?:default\s+)?`)
	appAssignment   = regexp.MustCompile(`\b(?:const|let|var)\s+App\s*=\s*`)
	functionLike    = regexp.MustCompile(`^(?:async\s*)?(?:\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>|function\b)`)
	renderCall      = regexp.MustCompile(`(?m)^.*\bReactDOM\s*\.\s*(?:render|createRoot)\b|^.*(?:^|[^.\w$])createRoot\s*\(`)
	mountLookup     = regexp.MustCompile(`getElementById\(\s*['"]([\w-]+)['"]\s*\)`)
	mountInRender   = regexp.MustCompile(`(?:createRoot|render)\s*\([^;]*?getElementById\(\s*['"]([\w-]+)['"]\s*\)`)
	jsxTag          = regexp.MustCompile(`<([A-Z][\w$]*)[\s/>]`)
)

// entry rewrites the entry composition and returns it with the id of the
// element it mounts into. A missing entry is synthesized.
func (rw *rewriter) entry(src string, names []string) (string, string) {
	roots := rw.rootNames(names)
	if strings.TrimSpace(src) == "" {
		slog.Debug("no entry composition, synthesizing one", "components", len(names))
		rw.bind(entryName, BindingUnit)
		return appDefinition(roots) + "\n\n" + boot(defaultMountID), defaultMountID
	}

	code := sanitize.FixDollarInterpolation(src)
	code = useDirective.ReplaceAllString(code, "")
	code = rw.rewriteImports(code, entryName, true)

	var exported string
	if m := exportDefaultFunc.FindStringSubmatch(code); m != nil {
		exported = m[3]
	} else if m := exportDefaultIdent.FindStringSubmatch(code); m != nil {
		exported = m[1]
	}
	code = entryExportFunc.ReplaceAllString(code, "${1}function App(")
	code = exportList.ReplaceAllString(code, "")
	code = exportStar.ReplaceAllString(code, "")
	code = exportDefaultIdent.ReplaceAllString(code, "")
	code = entryExport.ReplaceAllString(code, "")
	code = trimSharedDestructure(code)
	code = sanitize.StripShadowingPlaceholders(code, names)

	if exported != "" && exported != entryName && !rw.isComponent(exported) &&
		!declares(code, entryName) && declares(code, exported) {
		slog.Debug("renaming default export of entry composition", "from", exported)
		code = renameIdent(code, exported, entryName)
	}
	code = adaptApp(code, roots)

	mount := defaultMountID
	if m := mountInRender.FindStringSubmatch(code); m != nil {
		mount = m[1]
	} else if m := mountLookup.FindStringSubmatch(code); m != nil {
		mount = m[1]
	}
	if !renderCall.MatchString(code) {
		slog.Debug("entry composition never mounts, appending boot sequence")
		code = strings.TrimRight(code, " \t\r\n") + "\n\n" + boot(mount)
	}
	if !declares(code, entryName) {
		slog.Warn("entry composition lost its App declaration, injecting one")
		code = appDefinition(roots) + "\n\n" + code
	}

	rw.bind(entryName, BindingUnit)
	return strings.TrimSpace(code), mount
}

// adaptApp makes sure the entry declares App as a function. An arrow or
// function-expression assignment becomes a function declaration calling
// it; an entry without any App gets one synthesized ahead of its mount
// code.
func adaptApp(code string, names []string) string {
	if regexp.MustCompile(`\bfunction\s+App\s*\(|\bclass\s+App\b`).MatchString(code) {
		return code
	}

	if loc := appAssignment.FindStringIndex(code); loc != nil {
		end := statementEnd(code, loc[1])
		expr := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(code[loc[1]:end]), ";"))
		if !functionLike.MatchString(expr) {
			slog.Debug("entry assigns a non-function App, composing it from the components")
			return code[:loc[0]] + appDefinition(names) + code[end:]
		}
		fn := "function App(props) {\n  return (" + expr + ")(props);\n}"
		return code[:loc[0]] + fn + code[end:]
	}

	def := appDefinition(names)
	if loc := renderCall.FindStringIndex(code); loc != nil {
		before := strings.TrimRight(code[:loc[0]], " \t\r\n")
		if before != "" {
			before += "\n\n"
		}
		return before + def + "\n\n" + strings.TrimLeft(code[loc[0]:], " \t\r\n")
	}
	return strings.TrimRight(code, " \t\r\n") + "\n\n" + def
}

// rootNames are the components a synthesized App renders. A component
// named App already composes the page, so it is rendered alone.
func (rw *rewriter) rootNames(names []string) []string {
	if rw.appUnit != "" {
		return []string{rw.appUnit}
	}
	return names
}

// appDefinition renders every component in order inside one fragment.
func appDefinition(names []string) string {
	var b strings.Builder
	b.WriteString("function App() {\n  return (\n    <>")
	for _, n := range names {
		b.WriteString("\n      <")
		b.WriteString(n)
		b.WriteString(" />")
	}
	b.WriteString("\n    </>\n  );\n}")
	return b.String()
}

// boot mounts App with the root API when present, else the legacy render.
func boot(mount string) string {
	return "var rootEl = document.getElementById('" + mount + "');\n" +
		"if (rootEl && typeof ReactDOM.createRoot === 'function') {\n" +
		"  ReactDOM.createRoot(rootEl).render(<App />);\n" +
		"} else if (rootEl) {\n" +
		"  ReactDOM.render(<App />, rootEl);\n" +
		"}"
}

// builtinTypes are capitalised globals that look like tags in type
// annotations or comparisons.
var builtinTypes = map[string]bool{
	"React": true, "ReactDOM": true, "String": true, "Number": true, "Boolean": true,
	"Object": true, "Array": true, "Promise": true, "Map": true, "Set": true,
	"Date": true, "Error": true, "Record": true, "Partial": true,
}

// unresolvedTags finds capitalised tags the entry renders that nothing in
// the scope declares and returns them as stub names.
func (rw *rewriter) unresolvedTags(entry string) []string {
	var stubs []string
	for _, m := range jsxTag.FindAllStringSubmatch(entry, -1) {
		name := m[1]
		if builtinTypes[name] || rw.bound[name] || bindsName(entry, name) {
			continue
		}
		slog.Warn("entry renders an unknown component, declaring an empty one", "component", name)
		rw.bind(name, BindingStub)
		stubs = append(stubs, name)
	}
	return stubs
}
