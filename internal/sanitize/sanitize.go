// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize fixes known classes of invalid generated source. Each
// pass is a pure string-to-string function and running a pass twice gives
// the same result as running it once.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"sitecraft/internal/project"
)

var (
	falsyObject = regexp.MustCompile(`!\s*(\w+)\s*=\s*\{\s*\}`)
	falsyArray  = regexp.MustCompile(`!\s*(\w+)\s*=\s*\[\s*\]`)
)

// FixDollarInterpolation rewrites ${expr} occurring in markup text (between
// a closing '>' and the next '<') to {'$' + expr}. The in-browser
// transpiler reads a bare ${ in JSX text as the start of a template literal.
// Occurrences inside template literals or inside an expression container
// are left alone.
func FixDollarInterpolation(src string) string {
	if !strings.Contains(src, "${") {
		return src
	}

	var b strings.Builder
	b.Grow(len(src) + 16)

	inTemplate := false
	inText := false
	depth := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '`' && !escapedAt(src, i):
			inTemplate = !inTemplate
		case inTemplate:
		case c == '>':
			if closesTag(src, i) {
				inText, depth = true, 0
			}
		case c == '<':
			inText = false
		case !inText:
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '$' && depth == 0 && strings.HasPrefix(strings.TrimLeft(src[i:], "$"), "{"):
			// A currency sign written in front of ${expr} is folded into
			// the same rewrite so no '$' is left next to the new brace.
			open := i + len(src[i:]) - len(strings.TrimLeft(src[i:], "$"))
			end := strings.IndexByte(src[open+1:], '}')
			if end < 0 {
				break
			}
			expr := src[open+1 : open+1+end]
			if strings.TrimSpace(expr) == "" || strings.ContainsAny(expr, "<>{`") {
				break
			}
			b.WriteString("{'$' + ")
			b.WriteString(expr)
			b.WriteByte('}')
			i = open + 1 + end
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesTag reports whether the '>' at i plausibly ends a markup tag rather
// than being part of an arrow or comparison operator.
func closesTag(src string, i int) bool {
	if i > 0 {
		switch src[i-1] {
		case '=', '-', '>':
			return false
		}
	}
	if i+1 < len(src) {
		switch src[i+1] {
		case '=', '>':
			return false
		}
	}
	return true
}

// escapedAt reports whether the byte at i is preceded by an odd number of
// backslashes.
func escapedAt(src string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && src[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// FixFalsyAssignment rewrites "!name = {}" and "!name = []" to "!name".
func FixFalsyAssignment(src string) string {
	out := falsyObject.ReplaceAllString(src, "!${1}")
	return falsyArray.ReplaceAllString(out, "!${1}")
}

// Source applies all three passes with the default context window.
func Source(src string) string {
	return ReplaceBrokenImages(FixFalsyAssignment(FixDollarInterpolation(src)), DefaultWindow)
}

// Script applies the passes that are safe for plain script and markup
// documents. The dollar pass is skipped because ${ is legitimate there.
func Script(src string) string {
	return ReplaceBrokenImages(FixFalsyAssignment(src), DefaultWindow)
}

// Project returns a sanitized copy of p. Component bodies and the entry
// composition get every pass; flat legacy blocks get the falsy-assignment
// and image passes.
func Project(p project.Project) project.Project {
	switch v := p.(type) {
	case *project.CanonicalProject:
		out := v.Clone()
		for i := range out.Components {
			out.Components[i].Code = Source(out.Components[i].Code)
		}
		if out.Entry != nil {
			if out.Entry.MainJSX != "" {
				out.Entry.MainJSX = Source(out.Entry.MainJSX)
			}
			if out.Entry.MainJS != "" {
				out.Entry.MainJS = Source(out.Entry.MainJS)
			}
		}
		return out
	case *project.LegacyProject:
		return &project.LegacyProject{
			HTML: Script(v.HTML),
			CSS:  ReplaceBrokenImages(v.CSS, DefaultWindow),
			JS:   Script(v.JS),
		}
	default:
		return p
	}
}

// StripShadowingPlaceholders removes empty placeholder declarations such as
// "const Header = [];" for every name that is a real component, both as
// given and in its lower-camel form.
func StripShadowingPlaceholders(entry string, names []string) string {
	for _, name := range names {
		name = strings.Join(strings.Fields(name), "")
		if name == "" {
			continue
		}
		for _, n := range uniq(name, lowerFirst(name)) {
			re := regexp.MustCompile(`(?:const|let|var)\s+` + regexp.QuoteMeta(n) + `\s*=\s*(?:\[\s*\]|\{\s*\})\s*;?\s*`)
			entry = re.ReplaceAllString(entry, "")
		}
	}
	return entry
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func uniq(a, b string) []string {
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}
