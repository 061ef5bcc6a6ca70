// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"sitecraft/internal/project"
)

func jsx(name, code string) project.Component {
	return project.Component{
		Name:     name,
		Type:     project.KindComponent,
		Path:     "src/components/" + name + ".jsx",
		Code:     code,
		Language: "jsx",
	}
}

func unitBody(t *testing.T, prog *Program, name string) string {
	t.Helper()
	for _, u := range prog.Units {
		if u.Name == name {
			return u.Body
		}
	}
	t.Fatalf("no unit named %q in %v", name, prog.Units)
	return ""
}

func TestRewriteStripsModuleSyntax(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []string
		notWant []string
	}{
		{
			name:    "named default function",
			code:    "import React from 'react';\nexport default function Header() { return <h1>Hi</h1>; }",
			want:    []string{"function Header() {"},
			notWant: []string{"import", "export"},
		},
		{
			name:    "default export of identifier is renamed",
			code:    "const HeroSection = () => <section>Hi</section>;\nexport default HeroSection;",
			want:    []string{"const Header = () => <section>Hi</section>;"},
			notWant: []string{"HeroSection", "export"},
		},
		{
			name: "anonymous default arrow",
			code: "export default () => <footer>f</footer>;",
			want: []string{"const Header = () => <footer>f</footer>;"},
		},
		{
			name: "anonymous default function",
			code: "export default function ({ title }) { return <h1>{title}</h1>; }",
			want: []string{"function Header({ title })"},
		},
		{
			name:    "named exports lose the keyword",
			code:    "export const Badge = () => <b/>;\nexport function Header() { return <Badge />; }\nexport { Badge };",
			want:    []string{"const Badge = () => <b/>;", "function Header() {"},
			notWant: []string{"export"},
		},
		{
			name:    "react hooks import becomes destructuring",
			code:    "import React, { useState, useId as id } from 'react';\nfunction Header() { const [a] = useState(0); return <p>{id()}</p>; }",
			want:    []string{"const { useState, useId: id } = React;"},
			notWant: []string{"import"},
		},
		{
			name:    "use client directive",
			code:    "'use client';\nexport default function Header() { return null; }",
			notWant: []string{"use client"},
		},
		{
			name: "unknown imports get placeholders",
			code: "import { motion } from 'framer-motion';\nimport Link from 'next/link';\nimport * as Icons from 'lucide-react';\nexport default function Header() { return <Link>x</Link>; }",
			want: []string{
				"const motion = [];",
				"const Link = function (props) {",
				"const Icons = {};",
			},
		},
		{
			name:    "side effect import",
			code:    "import './Header.css';\nexport default function Header() { return null; }",
			notWant: []string{"Header.css"},
		},
		{
			name:    "multi-line import",
			code:    "import {\n  a,\n  b\n} from './util';\nexport default function Header() { return null; }",
			want:    []string{"const a = [];", "const b = [];"},
			notWant: []string{"import"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := Rewrite(&project.CanonicalProject{Components: []project.Component{jsx("Header", tt.code)}})
			body := unitBody(t, prog, "Header")
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q:\n%s", w, body)
				}
			}
			inner := strings.TrimPrefix(body, "const Header = (function () {")
			for _, nw := range tt.notWant {
				if strings.Contains(inner, nw) {
					t.Errorf("body still contains %q:\n%s", nw, body)
				}
			}
		})
	}
}

func TestRewriteSiblingImportIsNotPlaceholder(t *testing.T) {
	prog := Rewrite(&project.CanonicalProject{Components: []project.Component{
		jsx("Card", "import Button from './Button';\nexport default function Card() { return <Button />; }"),
		jsx("Button", "export default function Button() { return <button>go</button>; }"),
	}})

	body := unitBody(t, prog, "Card")
	if strings.Contains(body, "const Button") {
		t.Errorf("sibling component shadowed inside Card:\n%s", body)
	}
}

func TestRewriteIsolatesHelpers(t *testing.T) {
	icon := "function Icon() { return <i/>; }\n"
	prog := Rewrite(&project.CanonicalProject{Components: []project.Component{
		jsx("Nav", icon+"export default function Nav() { return <Icon />; }"),
		jsx("Footer", icon+"export default function Footer() { return <Icon />; }"),
	}})

	code := prog.UnitCode()
	if n := strings.Count(code, "function Icon()"); n != 2 {
		t.Errorf("expected both helpers kept, got %d", n)
	}
	for _, name := range []string{"Nav", "Footer"} {
		if !strings.Contains(code, "const "+name+" = (function () {\n") {
			t.Errorf("unit %s is not wrapped in a closure:\n%s", name, code)
		}
	}
}

func TestRewriteDefaultProps(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{
			code: "export default function ProductCard({ product, onAdd }) { return <p>{product.name}</p>; }",
			want: "function ProductCard({ product = {}, onAdd })",
		},
		{
			code: "export default function ProductCard(props) { return <p>{props.x}</p>; }",
			want: "function ProductCard(props = {})",
		},
		{
			code: "const ProductCard = ({ items }) => <ul>{items.map(i => <li>{i}</li>)}</ul>;\nexport default ProductCard;",
			want: "const ProductCard = ({ items = [] }) =>",
		},
		{
			code: "export default function ProductCard({ product = { id: 1 } }) { return null; }",
			want: "function ProductCard({ product = { id: 1 } })",
		},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			prog := Rewrite(&project.CanonicalProject{Components: []project.Component{jsx("ProductCard", tt.code)}})
			if body := unitBody(t, prog, "ProductCard"); !strings.Contains(body, tt.want) {
				t.Errorf("want %q in:\n%s", tt.want, body)
			}
		})
	}
}

func TestRewriteDeclaresEachComponentOnce(t *testing.T) {
	forms := []func(string) string{
		func(n string) string {
			return "export default function " + identifier(n) + "() { return <div>" + n + "</div>; }"
		},
		func(n string) string {
			return "const Inner = () => <span/>;\nconst Local = () => <div><Inner /></div>;\nexport default Local;"
		},
		func(n string) string { return "function helper() { return 1; }\nexport default () => <p>{helper()}</p>;" },
		func(n string) string { return "export function Widget({ product }) { return <b>{product.name}</b>; }" },
	}
	sets := [][]string{
		{"Header"},
		{"Header", "Hero", "Footer"},
		{"nav-bar", "Nav Bar", "products"},
		{"Card", "Card", "Card"},
		{"Pricing", "Testimonials", "FAQ", "Contact", "Footer"},
	}

	for _, set := range sets {
		t.Run(strings.Join(set, ","), func(t *testing.T) {
			var comps []project.Component
			for i, name := range set {
				comps = append(comps, jsx(name, forms[i%len(forms)](name)))
			}
			prog := Rewrite(&project.CanonicalProject{Components: comps})

			if len(prog.Units) != len(set) {
				t.Fatalf("got %d units for %d components", len(prog.Units), len(set))
			}
			code := prog.UnitCode()
			outer := prog.FallbackCode() + "\n" + prog.Entry
			for _, u := range prog.Units {
				decl := regexp.MustCompile(`(?m)^const ` + regexp.QuoteMeta(u.Name) + ` = \(function \(\) \{$`)
				if n := len(decl.FindAllString(code, -1)); n != 1 {
					t.Errorf("%s declared %d times", u.Name, n)
				}
				if declares(outer, u.Name) {
					t.Errorf("%s declared again outside its unit", u.Name)
				}
				if !strings.Contains(prog.Entry, "<"+u.Name+" />") {
					t.Errorf("entry never renders %s:\n%s", u.Name, prog.Entry)
				}
			}
			assertUniqueBindings(t, prog)
		})
	}
}

func assertUniqueBindings(t *testing.T, prog *Program) {
	t.Helper()
	seen := map[string]BindingKind{}
	for _, b := range prog.Bindings {
		if k, ok := seen[b.Name]; ok {
			t.Errorf("%s bound twice (%s and %s)", b.Name, k, b.Kind)
		}
		seen[b.Name] = b.Kind
	}
}

func TestRewriteExposedNames(t *testing.T) {
	prog := Rewrite(&project.CanonicalProject{Components: []project.Component{
		jsx("nav-bar", "export default function NavBar() { return null; }"),
		jsx("Card", "export default function Card() { return null; }"),
		jsx("Card", "export default function Card() { return null; }"),
		jsx("3d", "export default () => null;"),
	}})

	var got []string
	for _, u := range prog.Units {
		got = append(got, u.Name)
	}
	want := []string{"Navbar", "Card", "Card2", "C3d"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", got, want)
	}
	if body := unitBody(t, prog, "Card2"); !strings.Contains(body, "function Card2()") {
		t.Errorf("duplicate not renamed inside its unit:\n%s", body)
	}
}

func TestRewriteEntry(t *testing.T) {
	comps := []project.Component{jsx("Header", "export default function Header() { return <h1>Hi</h1>; }")}

	t.Run("arrow app becomes a function", func(t *testing.T) {
		entry := strings.Join([]string{
			"import React from 'react';",
			"import ReactDOM from 'react-dom/client';",
			"import Header from './components/Header';",
			"import { products } from './data';",
			"const Header = [];",
			"const App = () => {",
			"  const [n, setN] = useState(0);",
			"  return (<div><Header /><p>{products.length}</p></div>);",
			"};",
			"ReactDOM.createRoot(document.getElementById('main')).render(<App />);",
			"export default App;",
		}, "\n")
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		for _, w := range []string{"function App(props) {", "return (() => {", "})(props);", "ReactDOM.createRoot"} {
			if !strings.Contains(prog.Entry, w) {
				t.Errorf("entry missing %q:\n%s", w, prog.Entry)
			}
		}
		for _, nw := range []string{"import", "export", "const App", "const Header = [];"} {
			if strings.Contains(prog.Entry, nw) {
				t.Errorf("entry still contains %q:\n%s", nw, prog.Entry)
			}
		}
		if prog.MountID != "main" {
			t.Errorf("mount = %q, want main", prog.MountID)
		}
		if !strings.Contains(prog.FallbackCode(), "if (typeof products === 'undefined') { var products = []; }") {
			t.Errorf("missing products fallback:\n%s", prog.FallbackCode())
		}
		assertUniqueBindings(t, prog)
	})

	t.Run("missing app is inserted before mounting", func(t *testing.T) {
		entry := "const root = ReactDOM.createRoot(document.getElementById('root'));\nroot.render(<App />);"
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		fn := strings.Index(prog.Entry, "function App() {")
		root := strings.Index(prog.Entry, "const root =")
		if fn < 0 || root < 0 || fn > root {
			t.Errorf("App not declared before mounting:\n%s", prog.Entry)
		}
		if !strings.Contains(prog.Entry, "<Header />") {
			t.Errorf("synthesized App does not render Header:\n%s", prog.Entry)
		}
	})

	t.Run("entry without mount gets boot", func(t *testing.T) {
		entry := "export default function Home() { return <Header />; }"
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		for _, w := range []string{"function App() { return <Header />; }", "ReactDOM.createRoot(rootEl).render(<App />);", "ReactDOM.render(<App />, rootEl);"} {
			if !strings.Contains(prog.Entry, w) {
				t.Errorf("entry missing %q:\n%s", w, prog.Entry)
			}
		}
	})

	t.Run("shared hooks are not redeclared", func(t *testing.T) {
		entry := "import React, { useState, useId } from 'react';\nconst { useEffect, useTransition } = React;\nfunction App() { return <Header />; }\nReactDOM.render(<App />, document.getElementById('root'));"
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		if strings.Contains(prog.Entry, "useState") || strings.Contains(prog.Entry, "useEffect") {
			t.Errorf("shared hook redeclared:\n%s", prog.Entry)
		}
		for _, w := range []string{"const { useId } = React;", "const { useTransition } = React;"} {
			if !strings.Contains(prog.Entry, w) {
				t.Errorf("entry missing %q:\n%s", w, prog.Entry)
			}
		}
	})

	t.Run("unknown imports and tags", func(t *testing.T) {
		entry := "import { formatPrice } from './utils';\nimport Layout from './Layout';\nfunction App() { return <Layout><Header /><Missing /></Layout>; }\nReactDOM.render(<App />, document.getElementById('root'));"
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		if !strings.Contains(prog.Entry, "const formatPrice = [];") {
			t.Errorf("no placeholder for formatPrice:\n%s", prog.Entry)
		}
		if !strings.Contains(prog.Entry, "const Layout = function (props)") {
			t.Errorf("no placeholder component for Layout:\n%s", prog.Entry)
		}
		if len(prog.Stubs) != 1 || prog.Stubs[0] != "Missing" {
			t.Errorf("stubs = %v, want [Missing]", prog.Stubs)
		}
		if !strings.Contains(prog.UnitCode(), "const Missing = function () { return null; };") {
			t.Errorf("stub not declared")
		}
		kinds := map[string]BindingKind{}
		for _, b := range prog.Bindings {
			kinds[b.Name] = b.Kind
		}
		want := map[string]BindingKind{
			"Header": BindingUnit, "App": BindingUnit, "formatPrice": BindingPlaceholder,
			"Layout": BindingPlaceholder, "Missing": BindingStub, "products": BindingFallback,
		}
		for name, kind := range want {
			if kinds[name] != kind {
				t.Errorf("%s bound as %s, want %s", name, kinds[name], kind)
			}
		}
		assertUniqueBindings(t, prog)
	})
}

// appDecl matches a declaration of App in the shared scope.
var appDecl = regexp.MustCompile(`\bfunction\s+App\s*\(|\b(?:const|let|var|class)\s+App\b`)

func TestRewriteEntryComposesImportedApp(t *testing.T) {
	comps := []project.Component{
		jsx("Header", "export default function Header() { return <h1>Hi</h1>; }"),
		jsx("Footer", "export default function Footer() { return <footer>Bye</footer>; }"),
	}
	tests := []struct {
		name  string
		entry string
	}{
		{"vite main imports App", "import React from 'react';\nimport ReactDOM from 'react-dom/client';\nimport App from './App.jsx';\nReactDOM.createRoot(document.getElementById('root')).render(<App />);"},
		{"extensionless import", "import App from './App';\nReactDOM.render(<App />, document.getElementById('root'));"},
		{"placeholder array", "const App = [];\nReactDOM.render(<App />, document.getElementById('root'));"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: tt.entry}})

			for _, w := range []string{"<Header />", "<Footer />"} {
				if !strings.Contains(prog.Entry, w) {
					t.Errorf("entry does not render %s:\n%s", w, prog.Entry)
				}
			}
			if strings.Contains(prog.Entry, "props.children") || strings.Contains(prog.Entry, "const App") {
				t.Errorf("App left as a placeholder:\n%s", prog.Entry)
			}
			if n := len(appDecl.FindAllString(prog.UnitCode()+"\n"+prog.Entry, -1)); n != 1 {
				t.Errorf("App declared %d times:\n%s", n, prog.Entry)
			}
			assertUniqueBindings(t, prog)
		})
	}
}

func TestRewriteComponentNamedApp(t *testing.T) {
	comps := []project.Component{
		jsx("Header", "export default function Header() { return <h1>Hi</h1>; }"),
		jsx("App", "import Header from './components/Header';\nexport default function App() { return <main><Header /></main>; }"),
	}
	for _, entry := range []string{
		"",
		"import App from './App';\nReactDOM.createRoot(document.getElementById('root')).render(<App />);",
	} {
		prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

		var names []string
		for _, u := range prog.Units {
			names = append(names, u.Name)
		}
		if strings.Join(names, ",") != "Header,AppComponent" {
			t.Errorf("units = %v, want [Header AppComponent]", names)
		}
		if !strings.Contains(prog.UnitCode(), "function AppComponent()") {
			t.Errorf("App unit not renamed:\n%s", prog.UnitCode())
		}
		if !strings.Contains(prog.Entry, "<AppComponent />") {
			t.Errorf("entry does not render the App component:\n%s", prog.Entry)
		}
		if n := len(appDecl.FindAllString(prog.UnitCode()+"\n"+prog.Entry, -1)); n != 1 {
			t.Errorf("App declared %d times:\n%s\n%s", n, prog.UnitCode(), prog.Entry)
		}
		assertUniqueBindings(t, prog)
	}
}

func TestRewriteFallbacksSkipDeclaredData(t *testing.T) {
	comps := []project.Component{
		jsx("List", "const products = [{ id: 1 }];\nexport default function List() { return <ul>{products.map(p => <li>{p.id}</li>)}</ul>; }"),
	}
	entry := "const { items, movies: films } = window.data || {};\nfunction App() { return <List />; }\nReactDOM.render(<App />, document.getElementById('root'));"
	prog := Rewrite(&project.CanonicalProject{Components: comps, Entry: &project.EntryConfig{MainJSX: entry}})

	for _, declared := range []string{"products", "items"} {
		for _, f := range prog.Fallbacks {
			if f == declared {
				t.Errorf("fallback emitted for declared %q", declared)
			}
		}
	}
	if !strings.Contains(prog.FallbackCode(), "var posts = [];") {
		t.Errorf("undeclared data name has no fallback:\n%s", prog.FallbackCode())
	}
}

func TestRewriteScriptDialect(t *testing.T) {
	p := &project.CanonicalProject{
		Components: []project.Component{
			{Name: "Greeting", Language: "js", Code: "export default function Greeting() {\n  const el = document.createElement('h1');\n  el.textContent = 'Hi';\n  return el;\n}"},
			{Name: "Counter", Language: "js", Code: "import { jsx } from './jsx';\nconst Counter = () => jsx('button', null, '0');\nexport default Counter;"},
			{Name: "Styles", Language: "css", Code: "body{}"},
		},
		Entry: &project.EntryConfig{MainJS: "import Counter from './components/Counter';\nimport Greeting from './components/Greeting';"},
	}
	prog := Rewrite(p)

	if prog.Dialect != DialectScript || prog.MountID != "app" {
		t.Fatalf("dialect = %v, mount = %q", prog.Dialect, prog.MountID)
	}
	if len(prog.Units) != 2 {
		t.Fatalf("got %d units, want 2", len(prog.Units))
	}
	if body := unitBody(t, prog, "Greeting"); !strings.Contains(body, "return typeof Greeting === 'function' ? Greeting() : undefined;") {
		t.Errorf("Greeting body:\n%s", body)
	}
	counter := unitBody(t, prog, "Counter")
	if strings.Contains(counter, "const jsx") {
		t.Errorf("global jsx helper shadowed:\n%s", counter)
	}
	c, g := strings.Index(prog.Entry, "mount(app, Counter());"), strings.Index(prog.Entry, "mount(app, Greeting());")
	if c < 0 || g < 0 || c > g {
		t.Errorf("mount order does not follow entry imports:\n%s", prog.Entry)
	}
}

func TestStatementEnd(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{src: "() => { a; b; };\nnext()", want: len("() => { a; b; };")},
		{src: "() => (\n  <p>Don't stop</p>\n)\nReactDOM.render(x)", want: len("() => (\n  <p>Don't stop</p>\n)")},
		{src: "x\nconst y = 1", want: 1},
		{src: "foo(", want: 4},
		{src: "a }", want: 2},
		{src: "'a;b' + c;", want: len("'a;b' + c;")},
	}

	for _, tt := range tests {
		if got := statementEnd(tt.src, 0); got != tt.want {
			t.Errorf("statementEnd(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestRenameIdent(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "const Old = 1; use(Old);", want: "const New = 1; use(New);"},
		{in: "obj.Old + Old", want: "obj.Old + New"},
		{in: `"Old" + Old`, want: `"Old" + New`},
		{in: "OldX + Old + $Old", want: "OldX + New + $Old"},
		{in: "// Old\nOld", want: "// Old\nNew"},
		{in: "<Old.Item /><Old />", want: "<New.Item /><New />"},
		{in: "<h1>Old</h1><Old />", want: "<h1>Old</h1><New />"},
		{in: "<h1>\n  Welcome to Old\n</h1>", want: "<h1>\n  Welcome to Old\n</h1>"},
		{in: "<p>{Old}</p>", want: "<p>{New}</p>"},
		{in: "`Old ${Old} ${`${Old}`}`", want: "`Old ${New} ${`${New}`}`"},
		{in: "const f = () => Old; const a = x > Old;", want: "const f = () => New; const a = x > New;"},
		{in: "useState<string>(Old)", want: "useState<string>(New)"},
	}

	for _, tt := range tests {
		if got := renameIdent(tt.in, "Old", "New"); got != tt.want {
			t.Errorf("renameIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Header", "Header"},
		{"hero section", "Herosection"},
		{"Foot er", "Footer"},
		{"9lives", "C9lives"},
		{"", "Component"},
		{"émoji", "Moji"},
	}
	for _, tt := range tests {
		if got := identifier(tt.in); got != tt.want {
			t.Errorf("identifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
