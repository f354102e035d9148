// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/model"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

const testCSRFTokenSecret = "csrf-test-token-secret-at-least-32-bytes"

func issueTestToken(t *testing.T, secret string) string {
	t.Helper()
	token, _, err := auth.NewTokenIssuer(secret, time.Hour).Issue(&model.Principal{ID: 7, Role: model.RoleWriter})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestDefaultCSRFConfig_Development(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, true)

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}
	if len(cfg.TrustedOrigins) != 2 {
		t.Fatalf("expected 2 TrustedOrigins in dev mode, got %d", len(cfg.TrustedOrigins))
	}
	// The csrf library expects host:port values, not full URLs.
	for _, origin := range cfg.TrustedOrigins {
		if strings.HasPrefix(origin, "http") || !strings.Contains(origin, ":") {
			t.Errorf("TrustedOrigin %q should be host:port", origin)
		}
	}
}

func TestDefaultCSRFConfig_Production(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, false)

	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %d", len(cfg.TrustedOrigins))
	}
}

func csrfTestHandler() http.Handler {
	cfg := DefaultCSRFConfig(testCSRFKey, false)
	cfg.Tokens = auth.NewTokenDecoder(testCSRFTokenSecret)
	return CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRF_RejectsCrossSiteFormPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader("email=a"))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCSRF_CrossSiteAPIErrorIsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/editor/news", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestCSRF_AllowsSameOriginAndBearer(t *testing.T) {
	valid := issueTestToken(t, testCSRFTokenSecret)
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"same origin", map[string]string{"Sec-Fetch-Site": "same-origin"}},
		{"non-browser client", nil},
		{"bearer token", map[string]string{"Sec-Fetch-Site": "cross-site", "Authorization": "Bearer " + valid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/editor/news", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()

			csrfTestHandler().ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
			}
		})
	}
}

func TestCSRF_SafeMethodsPass(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/signin", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRF_RejectsUnverifiedBearer(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "abc"},
		{"wrong secret", issueTestToken(t, "some-other-secret-that-is-32-bytes-long")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signout", nil)
			req.Header.Set("Sec-Fetch-Site", "cross-site")
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()

			csrfTestHandler().ServeHTTP(rr, req)

			if rr.Code != http.StatusForbidden {
				t.Errorf("Status = %d, want %d", rr.Code, http.StatusForbidden)
			}
		})
	}
}

func TestCSRF_NoVerifierChecksBearer(t *testing.T) {
	h := CSRF(DefaultCSRFConfig(testCSRFKey, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/editor/news", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, testCSRFTokenSecret))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}
