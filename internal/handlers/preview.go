// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"sitecraft/internal/preview"
)

// sandboxPolicy is applied to preview documents both as a CSP sandbox and
// as the iframe sandbox attribute.
const sandboxPolicy = "allow-scripts allow-same-origin allow-forms allow-popups"

// frameCSP allows the frame page to embed same-origin previews and
// nothing else.
const frameCSP = "default-src 'none'; style-src 'unsafe-inline'; frame-src 'self'; frame-ancestors 'self'"

// qrSize is the edge length of preview QR codes in pixels.
const qrSize = 256

var framePage = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Name}} preview</title>
<style>html,body{margin:0;height:100%;background:#f5f5f5}iframe{display:block;border:0;width:100%;height:100%}</style>
</head>
<body>
<iframe src="{{.Src}}" title="{{.Name}}" sandbox="{{.Sandbox}}"></iframe>
</body>
</html>
`))

// Preview serves the synthesized preview document.
func (h *Websites) Preview(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	doc, err := h.previews.Render(r.Context(), site.ID.String(), site.Project(), preview.Options{WebsiteName: site.Name})
	if err != nil {
		serverError(w, "render preview", err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	hdr.Set("Content-Security-Policy", "sandbox "+sandboxPolicy)
	hdr.Set("Cache-Control", "private, no-cache")
	w.Write(doc)
}

// PreviewFrame serves a page that embeds the preview in a sandboxed iframe.
func (h *Websites) PreviewFrame(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := framePage.Execute(&buf, map[string]string{
		"Name":    site.Name,
		"Src":     previewPath(site.ID.String()),
		"Sandbox": sandboxPolicy,
	})
	if err != nil {
		serverError(w, "render preview frame", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", frameCSP)
	w.Write(buf.Bytes())
}

// PreviewQR serves a PNG QR code linking to the preview frame page.
func (h *Websites) PreviewQR(w http.ResponseWriter, r *http.Request) {
	site, ok := h.load(w, r)
	if !ok {
		return
	}
	png, err := qrcode.Encode(baseURL(r)+previewPath(site.ID.String())+"/frame", qrcode.Medium, qrSize)
	if err != nil {
		serverError(w, "encode preview qr", err)
		return
	}
	slog.Debug("preview qr generated", "website_id", site.ID)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(png)
}

func previewPath(websiteID string) string {
	return "/api/websites/" + websiteID + "/preview"
}

// baseURL is the scheme and host the client used to reach the server.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
