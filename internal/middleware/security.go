// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	ContentSecurityPolicy string

	// HSTSMaxAge is in seconds; 0 disables HSTS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	// FrameOptions is "DENY", "SAMEORIGIN" or empty.
	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string
}

// cspDirective is one "name value" pair of a Content-Security-Policy.
type cspDirective struct {
	name  string
	value string
}

// DefaultSecurityHeadersConfig returns the headers for the reader site and
// consoles. Article images come from the upload host and videos embed from
// YouTube.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	imgSrc := "'self' data: https://res.cloudinary.com https://img.youtube.com"
	scriptSrc := "'self'"
	if isDev {
		imgSrc += " blob: http://localhost:8080"
		scriptSrc = "'self' 'unsafe-inline'"
	}

	directives := []cspDirective{
		{"default-src", "'self'"},
		{"script-src", scriptSrc},
		{"style-src", "'self' 'unsafe-inline'"},
		{"img-src", imgSrc},
		{"font-src", "'self' data:"},
		{"connect-src", "'self'"},
		{"frame-src", "https://www.youtube.com https://www.youtube-nocookie.com"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
	}
	if !isDev {
		directives = append(directives, cspDirective{"frame-ancestors", "'self'"})
	}

	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		ContentSecurityPolicy: buildCSP(directives),
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubDomains: !isDev,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=(), payment=(), usb=(), browsing-topics=()",
	}
}

func buildCSP(directives []cspDirective) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		parts = append(parts, d.name+" "+d.value)
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setIfNotEmpty(h, "Content-Security-Policy", cfg.ContentSecurityPolicy)
			setIfNotEmpty(h, "Strict-Transport-Security", hsts)
			setIfNotEmpty(h, "X-Frame-Options", cfg.FrameOptions)
			h.Set("X-Content-Type-Options", "nosniff")
			setIfNotEmpty(h, "Referrer-Policy", cfg.ReferrerPolicy)
			setIfNotEmpty(h, "Permissions-Policy", cfg.PermissionsPolicy)

			next.ServeHTTP(w, r)
		})
	}
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
