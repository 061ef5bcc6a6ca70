// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"sitecraft/internal/project"
	"sitecraft/internal/sanitize"
)

// Dialect selects which document the synthesizer emits.
type Dialect int

const (
	// DialectMarkup runs units through the in-browser JSX transpiler.
	DialectMarkup Dialect = iota
	// DialectScript runs plain script units against a small DOM helper.
	DialectScript
)

// BindingKind says where an identifier in the execution scope comes from.
type BindingKind int

const (
	BindingUnit BindingKind = iota
	BindingPlaceholder
	BindingFallback
	BindingStub
)

func (k BindingKind) String() string {
	switch k {
	case BindingUnit:
		return "unit"
	case BindingPlaceholder:
		return "placeholder"
	case BindingFallback:
		return "fallback"
	case BindingStub:
		return "stub"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// Binding is one identifier of the shared execution scope.
type Binding struct {
	Name string
	Kind BindingKind
}

// Unit is one component after rewriting: an exposed identifier and a body
// with no import or export syntax.
type Unit struct {
	Name string
	Body string
}

// Program is the rewriter output for one render. It is built from scratch
// on every call and never shared between renders.
type Program struct {
	Dialect   Dialect
	Units     []Unit
	Entry     string
	Fallbacks []string
	Stubs     []string
	MountID   string
	Bindings  []Binding
}

// FallbackCode declares every fallback data name unless something already
// defined it at run time.
func (p *Program) FallbackCode() string {
	lines := make([]string, 0, len(p.Fallbacks))
	for _, name := range p.Fallbacks {
		lines = append(lines, "if (typeof "+name+" === 'undefined') { var "+name+" = []; }")
	}
	return strings.Join(lines, "\n")
}

// UnitCode joins every unit body.
func (p *Program) UnitCode() string {
	bodies := make([]string, 0, len(p.Units)+len(p.Stubs))
	for _, u := range p.Units {
		bodies = append(bodies, u.Body)
	}
	for _, name := range p.Stubs {
		bodies = append(bodies, "const "+name+" = function () { return null; };")
	}
	return strings.Join(bodies, "\n\n")
}

const defaultMountID = "root"

var (
	exportList            = regexp.MustCompile(`(?m)^[ \t]*export\s*\{[^}]*\}(?:\s*from\s*['"][^'"]+['"])?[ \t]*;?`)
	exportStar            = regexp.MustCompile(`(?m)^[ \t]*export\s*\*\s*(?:as\s+[\w$]+\s+)?from\s*['"][^'"]+['"][ \t]*;?`)
	exportDefaultFunc     = regexp.MustCompile(`export\s+default\s+(async\s+)?function\s*(\*?)\s*([A-Za-z_$][\w$]*)\s*\(`)
	exportDefaultAnonFunc = regexp.MustCompile(`export\s+default\s+(async\s+)?function\s*\(`)
	exportDefaultClass    = regexp.MustCompile(`export\s+default\s+class\s+([A-Za-z_$][\w$]*)`)
	exportDefaultAnonCls  = regexp.MustCompile(`export\s+default\s+class\b`)
	exportDefaultDecl     = regexp.MustCompile(`export\s+default\s+(const|let|var)\s+([A-Za-z_$][\w$]*)`)
	exportDefaultIdent    = regexp.MustCompile(`(?m)export\s+default\s+([A-Za-z_$][\w$]*)[ \t]*;?[ \t]*$`)
	exportDefaultExpr     = regexp.MustCompile(`export\s+default\s+`)
	exportKeyword         = regexp.MustCompile(`(?m)^([ \t]*)export\s+`)

	topDecl = regexp.MustCompile(`(?m)^(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(|^class\s+([A-Za-z_$][\w$]*)|^(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*((?:async\s*)?(?:\(|function\b|[A-Za-z_$][\w$]*\s*=>|React\.memo|memo\(|React\.forwardRef|forwardRef\())?`)
)

// rewriter is the per-render context threaded through every pass.
type rewriter struct {
	// appUnit is the exposed name of a component called App. The entry
	// composition owns the name App, so such a component is renamed.
	appUnit    string
	components map[string]bool
	provided   map[string]bool
	bound      map[string]bool
	bindings   []Binding
}

func newRewriter() *rewriter {
	return &rewriter{
		components: map[string]bool{},
		provided:   map[string]bool{},
		bound:      map[string]bool{},
	}
}

func (rw *rewriter) bind(name string, kind BindingKind) {
	if rw.bound[name] {
		return
	}
	rw.bound[name] = true
	rw.bindings = append(rw.bindings, Binding{Name: name, Kind: kind})
}

func (rw *rewriter) isComponent(name string) bool {
	return rw.components[name]
}

// Rewrite turns a canonical project into the units, entry composition and
// fallbacks of one preview script. When no component uses markup the
// program targets the plain script document instead.
func Rewrite(p *project.CanonicalProject) *Program {
	rw := newRewriter()

	markup := false
	for _, c := range p.Components {
		if c.IsMarkup() {
			markup = true
			break
		}
	}
	if !markup {
		return rw.rewriteScript(p)
	}

	var selected []project.Component
	var names []string
	for _, c := range p.Components {
		if !isMarkupUnit(c) {
			slog.Debug("component skipped in markup preview", "component", c.Name, "language", c.Language)
			continue
		}
		name := rw.unitName(c.Name)
		selected = append(selected, c)
		names = append(names, name)
	}

	prog := &Program{Dialect: DialectMarkup, MountID: defaultMountID}
	for i, c := range selected {
		prog.Units = append(prog.Units, Unit{Name: names[i], Body: rw.markupUnit(c.Code, names[i])})
		rw.bind(names[i], BindingUnit)
	}

	prog.Entry, prog.MountID = rw.entry(p.Entry.EntrySource(), names)
	prog.Stubs = rw.unresolvedTags(prog.Entry)

	assembled := prog.UnitCode() + "\n\n" + prog.Entry
	for _, name := range previewDataNames {
		if !bindsName(assembled, name) {
			prog.Fallbacks = append(prog.Fallbacks, name)
			rw.bind(name, BindingFallback)
		}
	}
	prog.Bindings = rw.bindings
	return prog
}

// isMarkupUnit reports whether a component belongs in the markup script.
func isMarkupUnit(c project.Component) bool {
	switch strings.ToLower(c.Language) {
	case "jsx", "js", "tsx", "javascript":
		return true
	case "":
		return c.IsMarkup()
	}
	return false
}

// unitName is exposedName for markup units, keeping App free for the
// entry composition.
func (rw *rewriter) unitName(name string) string {
	if identifier(name) != entryName {
		return rw.exposedName(name)
	}
	unique := rw.exposedName(entryName + "Component")
	if rw.appUnit == "" {
		rw.appUnit = unique
	}
	slog.Debug("component named App renamed", "component", name, "exposed", unique)
	return unique
}

// exposedName derives a unique identifier for a component.
func (rw *rewriter) exposedName(name string) string {
	id := identifier(name)
	unique := id
	for n := 2; rw.components[unique]; n++ {
		unique = fmt.Sprintf("%s%d", id, n)
	}
	if unique != id {
		slog.Warn("duplicate component name renamed", "component", name, "exposed", unique)
	}
	rw.components[unique] = true
	return unique
}

// markupUnit rewrites one component and wraps it in its own closure so
// helpers declared by different components cannot collide.
func (rw *rewriter) markupUnit(code, name string) string {
	code = sanitize.FixDollarInterpolation(code)
	code = useDirective.ReplaceAllString(code, "")
	code = rw.rewriteImports(code, name, false)
	code, exported := stripExports(code, name)
	code = exposeAs(code, name, exported)
	code = defaultProps(code, name)

	var ret string
	if declares(code, name) {
		ret = "return typeof " + name + " !== 'undefined' ? " + name + " : function () { return null; };"
	} else {
		slog.Warn("component declares nothing to expose, using empty component", "component", name)
		ret = "return function () { return null; };"
	}
	return "const " + name + " = (function () {\n" + strings.TrimSpace(code) + "\n" + ret + "\n})();"
}

// stripExports removes every export form while keeping the declarations.
// It returns the identifier the unit exported by default, if any.
func stripExports(code, name string) (string, string) {
	var exported string

	code = exportList.ReplaceAllString(code, "")
	code = exportStar.ReplaceAllString(code, "")

	if m := exportDefaultFunc.FindStringSubmatch(code); m != nil {
		exported = m[3]
	}
	code = exportDefaultFunc.ReplaceAllString(code, "${1}function${2} ${3}(")
	if m := exportDefaultClass.FindStringSubmatch(code); m != nil {
		exported = m[1]
	}
	code = exportDefaultClass.ReplaceAllString(code, "class $1")
	if m := exportDefaultDecl.FindStringSubmatch(code); m != nil {
		exported = m[2]
	}
	code = exportDefaultDecl.ReplaceAllString(code, "$1 $2")
	if m := exportDefaultIdent.FindStringSubmatch(code); m != nil {
		exported = m[1]
		code = exportDefaultIdent.ReplaceAllString(code, "")
	}

	anon := name
	if declares(code, name) {
		anon = name + "Default"
	} else if exported == "" {
		exported = name
	}
	code = exportDefaultAnonFunc.ReplaceAllString(code, "${1}function "+anon+"(")
	code = exportDefaultAnonCls.ReplaceAllString(code, "class "+anon)

	for {
		loc := exportDefaultExpr.FindStringIndex(code)
		if loc == nil {
			break
		}
		if declares(code, name) {
			code = code[:loc[0]] + code[statementEnd(code, loc[1]):]
			continue
		}
		code = code[:loc[0]] + "const " + name + " = " + code[loc[1]:]
		exported = name
	}

	return exportKeyword.ReplaceAllString(code, "$1"), exported
}

// exposeAs renames the unit's main declaration to name unless the unit
// already declares name.
func exposeAs(code, name, exported string) string {
	if declares(code, name) {
		return code
	}
	target := exported
	if target == "" || !declares(code, target) {
		target = mainDeclaration(code)
	}
	if target == "" || target == name {
		return code
	}
	slog.Debug("renaming component declaration", "from", target, "to", name)
	return renameIdent(code, target, name)
}

// mainDeclaration guesses the component a unit defines: the last top-level
// capitalised function-like declaration, then the last capitalised one of
// any kind, then the last function-like one.
func mainDeclaration(code string) string {
	var upperFn, upper, fn string
	for _, m := range topDecl.FindAllStringSubmatch(code, -1) {
		var name string
		isFn := true
		switch {
		case m[1] != "":
			name = m[1]
		case m[2] != "":
			name = m[2]
		default:
			name, isFn = m[3], m[4] != ""
		}
		if isUpper(name) {
			upper = name
			if isFn {
				upperFn = name
			}
		}
		if isFn {
			fn = name
		}
	}
	switch {
	case upperFn != "":
		return upperFn
	case upper != "":
		return upper
	default:
		return fn
	}
}

// objectProps get an empty object default when destructured without one.
var objectProps = map[string]bool{"product": true, "item": true, "data": true, "user": true}

// defaultProps gives component parameters defaults so the entry can render
// a component without passing props.
func defaultProps(code, name string) string {
	q := regexp.QuoteMeta(name)
	heads := []string{
		`(\bfunction\s+` + q + `\s*\(\s*)`,
		`(\b(?:const|let|var)\s+` + q + `\s*=\s*(?:async\s*)?\(\s*)`,
	}
	for _, head := range heads {
		bare := regexp.MustCompile(head + `props(\s*\))`)
		code = bare.ReplaceAllString(code, "${1}props = {}${2}")

		destructured := regexp.MustCompile(head + `\{([^{}]*)\}(\s*\))`)
		code = destructured.ReplaceAllStringFunc(code, func(sig string) string {
			m := destructured.FindStringSubmatch(sig)
			return m[1] + "{" + defaultFields(m[2]) + "}" + m[3]
		})
	}
	return code
}

func defaultFields(list string) string {
	parts := strings.Split(list, ",")
	for i, part := range parts {
		field := strings.TrimSpace(part)
		if field == "" || strings.ContainsAny(field, "=:.") {
			continue
		}
		lead := part[:strings.Index(part, field)]
		tail := part[strings.Index(part, field)+len(field):]
		switch {
		case objectProps[field]:
			parts[i] = lead + field + " = {}" + tail
		case isPreviewDataName(field):
			parts[i] = lead + field + " = []" + tail
		}
	}
	return strings.Join(parts, ",")
}

func isPreviewDataName(name string) bool {
	for _, n := range previewDataNames {
		if n == name {
			return true
		}
	}
	return false
}
