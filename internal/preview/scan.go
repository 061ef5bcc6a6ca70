// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// statementStart matches the first token of a line that begins a new
// top-level statement.
var statementStart = regexp.MustCompile(`^(?:(?:ReactDOM|function|const|let|var|class|if|document|root|window|export|import)\b|//)`)

// statementEnd returns the offset just past the statement that starts at
// from. Bracket depth is tracked so a semicolon inside a function body does
// not end an assignment. A statement also ends at a newline at depth zero
// when the next line starts a new statement.
func statementEnd(src string, from int) int {
	depth := 0
	for i := from; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return i
			}
		case '\'', '"':
			i = skipQuoted(src, i) - 1
		case '`':
			if j := strings.IndexByte(src[i+1:], '`'); j >= 0 {
				i += j + 1
			}
		case ';':
			if depth == 0 {
				return i + 1
			}
		case '\n':
			if depth == 0 && statementStart.MatchString(strings.TrimLeft(src[i+1:], " \t\r\n")) {
				return i
			}
		}
	}
	return len(src)
}

// skipQuoted returns the offset after the quoted string starting at i. An
// unterminated quote ends at the end of the line, since a lone apostrophe in
// markup text is not a string.
func skipQuoted(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(src)
}

// renameIdent replaces every whole-identifier occurrence of from with to,
// skipping quoted strings, line comments, property accesses, the literal
// parts of template strings and markup text.
func renameIdent(src, from, to string) string {
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			j := skipQuoted(src, i)
			b.WriteString(src[i:j])
			i = j
			continue
		case c == '`':
			i = renameInTemplate(&b, src, i, from, to)
			continue
		case c == '>' && endsMarkupTag(src, i):
			j := i + 1
			for j < len(src) && !strings.ContainsRune("<{;", rune(src[j])) {
				j++
			}
			b.WriteString(src[i:j])
			i = j
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			b.WriteString(src[i : i+j])
			i += j
			continue
		case identStart(c):
			j := i + 1
			for j < len(src) && identPart(src[j]) {
				j++
			}
			if word := src[i:j]; word == from && (i == 0 || src[i-1] != '.') {
				b.WriteString(to)
			} else {
				b.WriteString(word)
			}
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// renameInTemplate copies the template literal starting at i, renaming
// only inside ${} substitutions. It returns the offset after the literal.
func renameInTemplate(b *strings.Builder, src string, i int, from, to string) int {
	b.WriteByte('`')
	for j := i + 1; j < len(src); j++ {
		switch c := src[j]; {
		case c == '\\':
			end := min(j+2, len(src))
			b.WriteString(src[j:end])
			j = end - 1
		case c == '`':
			b.WriteByte('`')
			return j + 1
		case c == '$' && j+1 < len(src) && src[j+1] == '{':
			end := closingBrace(src, j+1)
			b.WriteString("${")
			b.WriteString(renameIdent(src[j+2:end], from, to))
			if end < len(src) {
				b.WriteByte('}')
			}
			j = end
		default:
			b.WriteByte(c)
		}
	}
	return len(src)
}

// closingBrace returns the offset of the brace closing the one at open, or
// len(src) when it is never closed.
func closingBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(src)
}

// endsMarkupTag reports whether the '>' at i closes a JSX tag opened
// earlier on the same line. Arrows and spaced comparisons do not count.
func endsMarkupTag(src string, i int) bool {
	if i == 0 {
		return false
	}
	prev := src[i-1]
	if !identPart(prev) && !strings.ContainsRune(`"'}/<`, rune(prev)) {
		return false
	}
	if i+1 < len(src) && strings.ContainsRune("=>(,", rune(src[i+1])) {
		return false
	}
	lineStart := strings.LastIndexByte(src[:i], '\n') + 1
	for j := i - 1; j >= lineStart; j-- {
		if src[j] != '<' {
			continue
		}
		if j+1 < len(src) && (identStart(src[j+1]) || src[j+1] == '/' || src[j+1] == '>') {
			return true
		}
	}
	return false
}

func identStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func identPart(c byte) bool {
	return identStart(c) || c >= '0' && c <= '9'
}

// identifier turns a component name into a usable exposed identifier with
// an upper-case first letter, so markup treats it as a component.
func identifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf && identPart(byte(r)) {
			b.WriteRune(r)
		}
	}
	id := b.String()
	switch {
	case id == "":
		return "Component"
	case id[0] >= '0' && id[0] <= '9':
		return "C" + id
	}
	r, size := utf8.DecodeRuneInString(id)
	return string(unicode.ToUpper(r)) + id[size:]
}

func isUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// declaresPattern matches a declaration of a single name.
func declaresPattern(name string) *regexp.Regexp {
	q := regexp.QuoteMeta(name)
	return regexp.MustCompile(`\bfunction\s*\*?\s+` + q + `\s*\(|\b(?:const|let|var|class)\s+` + q + `\b`)
}

// declares reports whether src declares name with function, class, const,
// let or var.
func declares(src, name string) bool {
	return declaresPattern(name).MatchString(src)
}

// bindsName also accepts names bound inside a destructuring pattern.
func bindsName(src, name string) bool {
	if declares(src, name) {
		return true
	}
	q := regexp.QuoteMeta(name)
	re := regexp.MustCompile(`\b(?:const|let|var)\s*(?:\{[^}]*\b` + q + `\b[^}]*\}|\[[^\]]*\b` + q + `\b[^\]]*\])`)
	return re.MatchString(src)
}
