// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"log/slog"
	"regexp"
	"strings"

	"sitecraft/internal/project"
)

const scriptMountID = "app"

var defaultImport = regexp.MustCompile(`import\s+([A-Za-z_$][\w$]*)\s+from\s+['"][^'"]+['"]`)

// rewriteScript builds the program for projects whose components are plain
// script. Each component becomes a function named by its exposed
// identifier that runs the component source in its own scope and returns
// whatever the source's main function returns.
func (rw *rewriter) rewriteScript(p *project.CanonicalProject) *Program {
	prog := &Program{Dialect: DialectScript, MountID: scriptMountID}
	rw.provided["jsx"] = true

	for _, c := range p.Components {
		switch strings.ToLower(c.Language) {
		case "js", "javascript", "":
		default:
			slog.Debug("component skipped in script preview", "component", c.Name, "language", c.Language)
			continue
		}
		name := rw.exposedName(c.Name)
		prog.Units = append(prog.Units, Unit{Name: name, Body: rw.scriptUnit(c.Code, name)})
		rw.bind(name, BindingUnit)
	}

	prog.Entry = mountCalls(scriptOrder(p.Entry.EntrySource(), prog.Units))
	prog.Bindings = rw.bindings
	return prog
}

func (rw *rewriter) scriptUnit(code, name string) string {
	code = useDirective.ReplaceAllString(code, "")
	code = rw.rewriteImports(code, name, false)
	code, exported := stripExports(code, name)

	target := exported
	if target == "" || !declares(code, target) {
		target = mainDeclaration(code)
	}

	var b strings.Builder
	b.WriteString("function " + name + "() {\n")
	b.WriteString(strings.TrimSpace(code))
	b.WriteString("\n")
	if target != "" {
		b.WriteString("return typeof " + target + " === 'function' ? " + target + "() : undefined;\n")
	} else {
		slog.Warn("script component declares no function", "component", name)
	}
	b.WriteString("}")
	return b.String()
}

// scriptOrder lists the units to mount: the entry's default imports when
// they name known units, otherwise every unit in declaration order.
func scriptOrder(entry string, units []Unit) []string {
	var order []string
	seen := map[string]bool{}
	for _, m := range defaultImport.FindAllStringSubmatch(entry, -1) {
		for _, u := range units {
			if strings.EqualFold(u.Name, m[1]) && !seen[u.Name] {
				seen[u.Name] = true
				order = append(order, u.Name)
			}
		}
	}
	if len(order) > 0 {
		return order
	}
	for _, u := range units {
		order = append(order, u.Name)
	}
	return order
}

func mountCalls(names []string) string {
	var b strings.Builder
	b.WriteString("var app = document.getElementById('" + scriptMountID + "');\n")
	b.WriteString("if (app) {\n")
	for _, n := range names {
		b.WriteString("  mount(app, " + n + "());\n")
	}
	b.WriteString("}")
	return b.String()
}
