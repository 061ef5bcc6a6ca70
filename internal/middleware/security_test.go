package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSecureHeaders(t *testing.T) {
	tests := []struct {
		name     string
		opts     HeaderOptions
		wantHSTS string
	}{
		{"plain http", HeaderOptions{}, ""},
		{"https", HeaderOptions{HSTSMaxAge: 24 * time.Hour}, "max-age=86400; includeSubDomains"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecureHeaders(tt.opts)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			want := map[string]string{
				"X-Content-Type-Options":    "nosniff",
				"X-Frame-Options":           "SAMEORIGIN",
				"Referrer-Policy":           "strict-origin-when-cross-origin",
				"Content-Security-Policy":   DefaultCSP,
				"Strict-Transport-Security": tt.wantHSTS,
			}
			for k, v := range want {
				if got := rr.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestSecureHeadersHandlerOverride(t *testing.T) {
	handler := SecureHeaders(HeaderOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("Content-Security-Policy"); got != "sandbox allow-scripts" {
		t.Errorf("CSP = %q, handler policy should win", got)
	}
}
