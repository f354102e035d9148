// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LoginProtection combines per-IP rate limiting of credential endpoints with
// per-account lockout after repeated failures.
type LoginProtection struct {
	ips *IPRateLimiter

	mu       sync.Mutex
	failures map[string]*failureRecord

	maxFailures int
	lockout     time.Duration
	window      time.Duration
	now         func() time.Time
}

type failureRecord struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // requests per second per IP
	IPBurst           int           // burst size per IP
	MaxFailedAttempts int           // failures before the account is locked
	LockoutDuration   time.Duration // base lockout, doubled on each repeat
	AttemptWindow     time.Duration // failures older than this are forgotten
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance. Zero config
// fields take their defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ips:         NewIPRateLimiter(cfg.IPRateLimit, cfg.IPBurst),
		failures:    make(map[string]*failureRecord),
		maxFailures: cfg.MaxFailedAttempts,
		lockout:     cfg.LockoutDuration,
		window:      cfg.AttemptWindow,
		now:         time.Now,
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAccountLocked reports whether the account is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec, ok := lp.failures[accountKey(email)]
	if !ok {
		return false, 0
	}
	if remaining := rec.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login and reports whether the account
// is now locked. Lockouts double with each repeat, capped at 24 hours.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	key := accountKey(email)
	now := lp.now()
	rec, ok := lp.failures[key]
	if !ok || now.Sub(rec.firstFailed) > lp.window {
		if !ok {
			rec = &failureRecord{}
			lp.failures[key] = rec
		}
		rec.count = 1
		rec.firstFailed = now
		return false, 0
	}

	rec.count++
	if rec.count < lp.maxFailures {
		return false, 0
	}

	d := lp.lockout << rec.lockouts
	if d <= 0 || d > 24*time.Hour {
		d = 24 * time.Hour
	}
	rec.lockedUntil = now.Add(d)
	rec.lockouts++
	rec.count = 0

	slog.Warn("account locked due to failed attempts",
		"email", key,
		"lockouts", rec.lockouts,
		"duration", d,
	)
	return true, d
}

// RecordSuccessfulLogin clears failure tracking for the account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.failures, accountKey(email))
}

// Sweep drops expired records and oversized limiter state.
// It is meant to be called periodically.
func (lp *LoginProtection) Sweep() {
	if lp.ips.cache.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, rec := range lp.failures {
		if now.After(rec.lockedUntil) && now.Sub(rec.firstFailed) > lp.window {
			delete(lp.failures, key)
		}
	}
}

// Middleware rate limits POST requests per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	limit := lp.ips.Middleware()
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request. chi's RealIP
// middleware has already folded proxy headers into RemoteAddr.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
