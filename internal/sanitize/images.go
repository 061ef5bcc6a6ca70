// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

// Window is how much text around an image URL is inspected for size hints.
type Window struct {
	Before int
	After  int
}

var (
	// DefaultWindow is used when sanitizing individual sources.
	DefaultWindow = Window{Before: 400, After: 400}
	// DocumentWindow is used on a fully assembled preview document.
	DocumentWindow = Window{Before: 500, After: 100}
)

var (
	unreliableImage = regexp.MustCompile(`(?i)https?://(?:i\.)?imgur\.com/[^\s"'<>)\]]+`)

	wideHint   = regexp.MustCompile(`\b(?:hero|banner|header-bg|cover|jumbotron|full-width)\b`)
	squareHint = regexp.MustCompile(`\b(?:thumbnail|thumb|avatar|icon|logo|favicon|profile-pic|user-img)\b`)
	cardHint   = regexp.MustCompile(`\b(?:card|product|item-img|gallery|grid-item)\b`)

	widthHint  = regexp.MustCompile(`width\s*[=:]\s*["']?(\d+)`)
	heightHint = regexp.MustCompile(`height\s*[=:]\s*["']?(\d+)`)
)

const placeholderHost = "https://picsum.photos"

// ReplaceBrokenImages swaps links to unreliable image hosts for a
// placeholder service URL sized from the surrounding text.
func ReplaceBrokenImages(src string, w Window) string {
	locs := unreliableImage.FindAllStringIndex(src, -1)
	if len(locs) == 0 {
		return src
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start := max(0, loc[0]-w.Before)
		end := min(len(src), loc[1]+w.After)
		width, height := imageSize(strings.ToLower(src[start:end]))

		b.WriteString(src[last:loc[0]])
		b.WriteString(placeholderHost)
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(width))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(height))
		last = loc[1]
	}
	b.WriteString(src[last:])
	return b.String()
}

// imageSize picks dimensions from keywords, then lets explicit width and
// height values override them.
func imageSize(context string) (int, int) {
	w, h := 400, 300
	switch {
	case wideHint.MatchString(context):
		w, h = 1200, 600
	case squareHint.MatchString(context):
		w, h = 96, 96
	case cardHint.MatchString(context):
		w, h = 400, 300
	}

	if m := widthHint.FindStringSubmatch(context); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			w = clamp(n, 48, 1200)
		}
	}
	if m := heightHint.FindStringSubmatch(context); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			h = clamp(n, 48, 800)
		}
	}
	return w, h
}

func clamp(n, lo, hi int) int {
	return min(hi, max(lo, n))
}
