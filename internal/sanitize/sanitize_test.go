// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"regexp"
	"strings"
	"testing"

	"sitecraft/internal/project"
)

// bareInterpolation finds ${ inside markup text.
var bareInterpolation = regexp.MustCompile(`>[^<{]*\$\{[^<]*<`)

func TestFixDollarInterpolation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "price in paragraph",
			input: "<p>Total: ${price}</p>",
			want:  "<p>Total: {'$' + price}</p>",
		},
		{
			name:  "method call",
			input: "<span>${item.price.toFixed(2)}</span>",
			want:  "<span>{'$' + item.price.toFixed(2)}</span>",
		},
		{
			name:  "two in one text node",
			input: "<p>${a} to ${b}</p>",
			want:  "<p>{'$' + a} to {'$' + b}</p>",
		},
		{
			name:  "template literal untouched",
			input: "const s = `<p>${price}</p>`;",
			want:  "const s = `<p>${price}</p>`;",
		},
		{
			name:  "inside expression container untouched",
			input: "<p>{`Total: ${price}`}</p>",
			want:  "<p>{`Total: ${price}`}</p>",
		},
		{
			name:  "arrow function body untouched",
			input: "const f = () => alert('${x}');\nreturn <div/>;",
			want:  "const f = () => alert('${x}');\nreturn <div/>;",
		},
		{
			name:  "currency sign before interpolation",
			input: "<p>Price: $${product.price}</p>",
			want:  "<p>Price: {'$' + product.price}</p>",
		},
		{
			name:  "several currency signs",
			input: "<b>$$${n}</b>",
			want:  "<b>{'$' + n}</b>",
		},
		{
			name:  "literal dollar amount kept",
			input: "<p>From $5 or ${x}</p>",
			want:  "<p>From $5 or {'$' + x}</p>",
		},
		{
			name:  "no interpolation",
			input: "<p>Hello</p>",
			want:  "<p>Hello</p>",
		},
		{
			name:  "attribute values untouched",
			input: `<a href="/x/${id}">go</a>`,
			want:  `<a href="/x/${id}">go</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixDollarInterpolation(tt.input)
			if got != tt.want {
				t.Errorf("FixDollarInterpolation(%q)\n got %q\nwant %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDollarInterpolationLeavesNoBarePlaceholder(t *testing.T) {
	src := "function Cart({ price }) {\n  return (\n    <div className=\"cart\">\n      <p>Total: ${price}</p>\n    </div>\n  );\n}"
	got := Source(src)
	if bareInterpolation.MatchString(got) {
		t.Errorf("bare ${ left in markup text:\n%s", got)
	}
	if !strings.Contains(got, "<p>Total: {'$' + price}</p>") {
		t.Errorf("unexpected rewrite:\n%s", got)
	}
}

func TestFixFalsyAssignment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "if (!isOpen || !product = {}) return null;", want: "if (!isOpen || !product) return null;"},
		{input: "if (!items = []) {}", want: "if (!items) {}"},
		{input: "if (! data = { }) x()", want: "if (!data) x()"},
		{input: "if (a !== b) {}", want: "if (a !== b) {}"},
		{input: "const x = {};", want: "const x = {};"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FixFalsyAssignment(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceBrokenImagesByContext(t *testing.T) {
	avatar := `<img className="avatar" src="https://i.imgur.com/abc123.png" alt="me" />`
	hero := `<section className="hero"><img src="https://imgur.com/xyz.jpg" /></section>`

	gotAvatar := ReplaceBrokenImages(avatar, DefaultWindow)
	if !strings.Contains(gotAvatar, "https://picsum.photos/96/96") {
		t.Errorf("avatar image not replaced with 96x96: %s", gotAvatar)
	}
	gotHero := ReplaceBrokenImages(hero, DefaultWindow)
	if !strings.Contains(gotHero, "https://picsum.photos/1200/600") {
		t.Errorf("hero image not replaced with 1200x600: %s", gotHero)
	}
	if strings.Contains(gotAvatar+gotHero, "imgur.com") {
		t.Errorf("unreliable host left behind")
	}
}

func TestImageSize(t *testing.T) {
	tests := []struct {
		name    string
		context string
		w, h    int
	}{
		{name: "default", context: "<img src=x>", w: 400, h: 300},
		{name: "banner", context: `<div class="banner">`, w: 1200, h: 600},
		{name: "logo", context: `<img class="logo">`, w: 96, h: 96},
		{name: "product card", context: `<div class="product">`, w: 400, h: 300},
		{name: "hero wins over avatar", context: `hero ... avatar`, w: 1200, h: 600},
		{name: "explicit size", context: `<img width="320" height="200">`, w: 320, h: 200},
		{name: "explicit overrides keyword", context: `avatar width: 64`, w: 64, h: 96},
		{name: "clamped low", context: `width=10 height=5`, w: 48, h: 48},
		{name: "clamped high", context: `width=5000 height=5000`, w: 1200, h: 800},
		{name: "substring is not a keyword", context: `<div class="heroic">`, w: 400, h: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := imageSize(tt.context)
			if w != tt.w || h != tt.h {
				t.Errorf("imageSize(%q) = %dx%d, want %dx%d", tt.context, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestReplaceBrokenImagesUsesOwnOffset(t *testing.T) {
	// The same URL twice: the first sits next to a logo, the second far
	// away next to a banner.
	url := "https://i.imgur.com/same.png"
	src := `<img class="logo" src="` + url + `">` + strings.Repeat(" ", 600) + `<div class="banner"><img src="` + url + `"></div>`

	got := ReplaceBrokenImages(src, DefaultWindow)
	first := strings.Index(got, "https://picsum.photos/96/96")
	second := strings.Index(got, "https://picsum.photos/1200/600")
	if first < 0 || second < 0 || first > second {
		t.Errorf("occurrences not sized independently: %s", got)
	}
}

func TestPassesAreIdempotent(t *testing.T) {
	inputs := []string{
		"<p>Total: ${price}</p>",
		"<p>${a} to ${b}</p><span>${c.d(1)}</span>",
		"if (!open || !product = {}) { return <p>${x}</p> }",
		`<img class="avatar" src="https://i.imgur.com/a.png"><p>${n}</p>`,
		"const s = `${a}`; return <b>${b}</b>;",
		"plain text with no markup",
		"<p>{`keep ${this}`}</p>",
		"<p>Price: $${product.price}</p>",
		"<li>$${a} and $ ${b} and $$${c}</li>",
		"",
	}

	for _, in := range inputs {
		once := Source(in)
		twice := Source(once)
		if once != twice {
			t.Errorf("Source not idempotent for %q:\n once %q\ntwice %q", in, once, twice)
		}
		if bareInterpolation.MatchString(once) {
			t.Errorf("bare ${ left in markup text of %q: %q", in, once)
		}

		if s1, s2 := Script(in), Script(Script(in)); s1 != s2 {
			t.Errorf("Script not idempotent for %q", in)
		}
	}
}

func TestStripShadowingPlaceholders(t *testing.T) {
	entry := "const Header = [];\nconst hero = [];\nlet Footer = {};\nconst products = [];\nfunction App() { return <><Header /><Hero /></>; }"
	got := StripShadowingPlaceholders(entry, []string{"Header", "Hero", "Foot er"})

	for _, gone := range []string{"const Header", "const hero", "let Footer"} {
		if strings.Contains(got, gone) {
			t.Errorf("placeholder %q not removed:\n%s", gone, got)
		}
	}
	if !strings.Contains(got, "const products = [];") {
		t.Errorf("unrelated declaration removed:\n%s", got)
	}
}

func TestProjectReturnsSanitizedCopy(t *testing.T) {
	orig := &project.CanonicalProject{
		Components: []project.Component{
			{Name: "Cart", Code: "<p>${total}</p>", Language: "jsx"},
		},
		Entry: &project.EntryConfig{MainJSX: "if (!a = []) {}", StyleCSS: "body{}"},
	}

	got := Project(orig).(*project.CanonicalProject)
	if got.Components[0].Code != "<p>{'$' + total}</p>" {
		t.Errorf("component code = %q", got.Components[0].Code)
	}
	if got.Entry.MainJSX != "if (!a) {}" {
		t.Errorf("entry = %q", got.Entry.MainJSX)
	}
	if orig.Components[0].Code != "<p>${total}</p>" || orig.Entry.MainJSX != "if (!a = []) {}" {
		t.Errorf("input project was modified")
	}
}

func TestProjectLegacyKeepsTemplateLiterals(t *testing.T) {
	orig := &project.LegacyProject{
		HTML: `<img class="hero" src="https://imgur.com/a.png">`,
		CSS:  "body{}",
		JS:   "el.innerHTML = `<p>${name}</p>`; if (!x = {}) go();",
	}

	got := Project(orig).(*project.LegacyProject)
	if !strings.Contains(got.JS, "`<p>${name}</p>`") {
		t.Errorf("template literal altered: %q", got.JS)
	}
	if !strings.Contains(got.JS, "if (!x) go();") {
		t.Errorf("falsy assignment kept: %q", got.JS)
	}
	if !strings.Contains(got.HTML, "https://picsum.photos/1200/600") {
		t.Errorf("image not replaced: %q", got.HTML)
	}
}
