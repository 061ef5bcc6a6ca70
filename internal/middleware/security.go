// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// DefaultCSP locks down API responses. Handlers that serve documents
// replace it with their own policy.
const DefaultCSP = "default-src 'none'; frame-ancestors 'self'"

// HeaderOptions tune SecureHeaders.
type HeaderOptions struct {
	// HSTSMaxAge enables Strict-Transport-Security when positive. Set it
	// only when the server is reached over HTTPS.
	HSTSMaxAge time.Duration
}

// SecureHeaders sets the baseline security headers on every response.
func SecureHeaders(opts HeaderOptions) func(http.Handler) http.Handler {
	fixed := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "SAMEORIGIN",
		"X-XSS-Protection":        "0",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
		"Content-Security-Policy": DefaultCSP,
	}
	if opts.HSTSMaxAge > 0 {
		fixed["Strict-Transport-Security"] = "max-age=" + strconv.Itoa(int(opts.HSTSMaxAge.Seconds())) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range fixed {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
