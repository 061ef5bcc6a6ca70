// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func csrfHandler(secure bool) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFSetsCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		rr := httptest.NewRecorder()
		csrfHandler(secure).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

		var found *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == CSRFCookieName {
				found = c
			}
		}
		if found == nil {
			t.Fatal("CSRF cookie not set")
		}
		if found.Secure != secure || found.SameSite != http.SameSiteStrictMode || found.HttpOnly {
			t.Errorf("cookie = %+v", found)
		}
		if len(found.Value) != 2*csrfTokenLength {
			t.Errorf("token length = %d", len(found.Value))
		}
	}
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing"})
	rr := httptest.NewRecorder()
	csrfHandler(false).ServeHTTP(rr, req)
	if len(rr.Result().Cookies()) != 0 {
		t.Error("cookie should not be reissued")
	}
	if CSRFToken(req) != "existing" {
		t.Errorf("CSRFToken = %q", CSRFToken(req))
	}
}

func TestCSRFUnsafeMethods(t *testing.T) {
	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"post without header", http.MethodPost, "", http.StatusForbidden},
		{"post with wrong header", http.MethodPost, "other", http.StatusForbidden},
		{"post with matching header", http.MethodPost, "tok", http.StatusOK},
		{"put with matching header", http.MethodPut, "tok", http.StatusOK},
		{"delete without header", http.MethodDelete, "", http.StatusForbidden},
		{"get passes", http.MethodGet, "", http.StatusOK},
		{"head passes", http.MethodHead, "", http.StatusOK},
		{"options passes", http.MethodOptions, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/websites/generate", nil)
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()
			csrfHandler(false).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestCSRFNewCookieStillRequiresHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	csrfHandler(false).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}
