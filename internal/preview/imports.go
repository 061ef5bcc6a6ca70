// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	importStmt       = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:type\s+)?([\w$*{}\s,]+?)\s*from\s*['"]([^'"\n]+)['"][ \t]*;?`)
	sideEffectImport = regexp.MustCompile(`(?m)^[ \t]*import\s*['"][^'"\n]+['"][ \t]*;?`)
	strayImport      = regexp.MustCompile(`(?m)^[ \t]*import\s.*$`)
	useDirective     = regexp.MustCompile(`(?m)^[ \t]*['"]use\s+(?:client|server)['"][ \t]*;?`)
	reactDestructure = regexp.MustCompile(`const\s*\{([^{}]*)\}\s*=\s*React\s*;?`)
)

// sharedHooks are destructured from React once at the top of the preview
// script, so the entry composition must not declare them again.
var sharedHooks = []string{
	"useState", "useEffect", "useRef", "useCallback",
	"useMemo", "useContext", "useReducer", "useLayoutEffect",
}

// previewDataNames are sample-data identifiers that generated entry
// compositions commonly assume exist.
var previewDataNames = []string{
	"movieData", "products", "productData", "items",
	"listData", "movies", "posts", "courses",
}

type namedImport struct {
	Imported string
	Local    string
}

type importClause struct {
	Default   string
	Namespace string
	Named     []namedImport
}

func (c importClause) locals() []string {
	var out []string
	if c.Default != "" {
		out = append(out, c.Default)
	}
	if c.Namespace != "" {
		out = append(out, c.Namespace)
	}
	for _, n := range c.Named {
		out = append(out, n.Local)
	}
	return out
}

func parseImportClause(s string) importClause {
	var c importClause
	if i := strings.IndexByte(s, '{'); i >= 0 {
		if j := strings.LastIndexByte(s, '}'); j > i {
			c.Named = parseBindingList(s[i+1:j], "as")
			s = s[:i] + s[j+1:]
		}
	}
	for _, part := range strings.Split(s, ",") {
		f := strings.Fields(part)
		switch {
		case len(f) == 3 && f[0] == "*" && f[1] == "as":
			c.Namespace = f[2]
		case len(f) == 1 && f[0] != "*":
			c.Default = f[0]
		}
	}
	return c
}

// parseBindingList reads "a, b as c" (sep "as") or "a, b: c" (sep ":").
func parseBindingList(s, sep string) []namedImport {
	var out []namedImport
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if sep == ":" {
			part = strings.Replace(part, ":", " : ", 1)
		}
		f := strings.Fields(part)
		switch {
		case len(f) == 1:
			out = append(out, namedImport{Imported: f[0], Local: f[0]})
		case len(f) == 2 && f[0] == "type":
			out = append(out, namedImport{Imported: f[1], Local: f[1]})
		case len(f) == 3 && f[1] == sep:
			out = append(out, namedImport{Imported: f[0], Local: f[2]})
		}
	}
	return out
}

// destructure renders "const { a, b: c } = from;" or "" for no bindings.
func destructure(bindings []namedImport, from string) string {
	if len(bindings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if b.Imported == b.Local {
			parts = append(parts, b.Local)
		} else {
			parts = append(parts, b.Imported+": "+b.Local)
		}
	}
	return "const { " + strings.Join(parts, ", ") + " } = " + from + ";"
}

// placeholderDecl declares a stand-in for an imported name that nothing in
// the preview provides. Capitalised names are rendered as components, so
// they get a pass-through component; everything else gets an empty value.
func placeholderDecl(name string, namespace bool) string {
	switch {
	case namespace:
		return "const " + name + " = {};"
	case isUpper(name):
		return "const " + name + " = function (props) { return props && props.children ? props.children : null; };"
	default:
		return "const " + name + " = [];"
	}
}

// rewriteImports replaces every import statement of one unit. React and
// ReactDOM imports become destructuring of the runtime globals; other
// bindings are dropped when the scope already provides them and otherwise
// replaced with a placeholder declaration.
func (rw *rewriter) rewriteImports(src, unit string, entry bool) string {
	out := importStmt.ReplaceAllStringFunc(src, func(stmt string) string {
		m := importStmt.FindStringSubmatch(stmt)
		clause, from := parseImportClause(m[1]), m[2]
		lead := stmt[:len(stmt)-len(strings.TrimLeft(stmt, " \t"))]

		var decls []string
		switch from {
		case "react":
			named := clause.Named
			if entry {
				named = withoutShared(named)
			}
			decls = appendNonEmpty(decls, destructure(named, "React"))
			for _, alias := range []string{clause.Default, clause.Namespace} {
				if alias != "" && alias != "React" {
					decls = append(decls, "const "+alias+" = React;")
				}
			}
		case "react-dom", "react-dom/client":
			decls = appendNonEmpty(decls, destructure(clause.Named, "ReactDOM"))
			for _, alias := range []string{clause.Default, clause.Namespace} {
				if alias != "" && alias != "ReactDOM" {
					decls = append(decls, "const "+alias+" = ReactDOM;")
				}
			}
		default:
			for _, local := range clause.locals() {
				switch {
				case rw.provided[local]:
				case rw.isComponent(local):
					if !entry {
						slog.Debug("component imports a sibling component", "component", unit, "imports", local)
					}
				case entry && local == entryName:
					slog.Debug("entry imports App, composing it from the components")
				case entry && isPreviewDataName(local):
				case entry && rw.bound[local]:
				default:
					decls = append(decls, placeholderDecl(local, local == clause.Namespace))
					if entry {
						rw.bind(local, BindingPlaceholder)
					}
				}
			}
		}
		if len(decls) == 0 {
			return ""
		}
		return lead + strings.Join(decls, "\n"+lead)
	})
	out = sideEffectImport.ReplaceAllString(out, "")
	return strayImport.ReplaceAllString(out, "")
}

// trimSharedDestructure drops hook names the preview script already
// destructures from React out of the entry's own destructuring statements.
func trimSharedDestructure(src string) string {
	return reactDestructure.ReplaceAllStringFunc(src, func(stmt string) string {
		m := reactDestructure.FindStringSubmatch(stmt)
		return destructure(withoutShared(parseBindingList(m[1], ":")), "React")
	})
}

func withoutShared(in []namedImport) []namedImport {
	var out []namedImport
	for _, b := range in {
		shared := false
		for _, h := range sharedHooks {
			if b.Local == h {
				shared = true
				break
			}
		}
		if !shared {
			out = append(out, b)
		}
	}
	return out
}

func appendNonEmpty(list []string, s string) []string {
	if s == "" {
		return list
	}
	return append(list, s)
}
