// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/olegiv/sangbad-cms/internal/model"
)

// Capability is the permission level a route requires.
type Capability string

// Capabilities used by the policy table.
const (
	CapabilityPublic Capability = "public"
	CapabilityAdmin  Capability = "admin"
	CapabilityStaff  Capability = "staff" // admin, editor or writer
)

// Allows reports whether p holds the capability.
func (c Capability) Allows(p *model.Principal) bool {
	switch c {
	case CapabilityPublic:
		return true
	case CapabilityAdmin:
		return p != nil && p.Role == model.RoleAdmin
	case CapabilityStaff:
		return p != nil && p.Role.IsStaff()
	}
	return false
}

// Rule maps a path prefix to the capability it requires.
type Rule struct {
	Prefix     string
	Capability Capability
}

// Policy is an ordered rule list. The first matching rule wins and
// unmatched paths are public.
type Policy []Rule

// DefaultPolicy gates the admin and editor consoles and their APIs.
var DefaultPolicy = Policy{
	{Prefix: "/api/admin", Capability: CapabilityAdmin},
	{Prefix: "/admin", Capability: CapabilityAdmin},
	{Prefix: "/api/editor", Capability: CapabilityStaff},
	{Prefix: "/editor", Capability: CapabilityStaff},
}

// Outcome is the result of an authorization check.
type Outcome int

const (
	Allow Outcome = iota
	DenyUnauthenticated
	DenyForbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	}
	return "unknown"
}

// Decision is the outcome for a path together with the capability that applied.
type Decision struct {
	Outcome    Outcome
	Capability Capability
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Required returns the capability a request path needs.
func (pol Policy) Required(urlPath string) Capability {
	clean := cleanPath(urlPath)
	for _, rule := range pol {
		if hasPathPrefix(clean, rule.Prefix) {
			return rule.Capability
		}
	}
	return CapabilityPublic
}

// Authorize evaluates the policy for urlPath and principal p (nil when anonymous).
func (pol Policy) Authorize(urlPath string, p *model.Principal) Decision {
	required := pol.Required(urlPath)
	switch {
	case required.Allows(p):
		return Decision{Outcome: Allow, Capability: required}
	case p == nil:
		return Decision{Outcome: DenyUnauthenticated, Capability: required}
	default:
		return Decision{Outcome: DenyForbidden, Capability: required}
	}
}

// Authorize evaluates DefaultPolicy.
func Authorize(urlPath string, p *model.Principal) Decision {
	return DefaultPolicy.Authorize(urlPath, p)
}

// cleanPath normalises dot segments and duplicate slashes so that
// "//admin" or "/x/../admin" cannot slip past a prefix rule.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// hasPathPrefix matches whole segments: "/admin" matches "/admin" and
// "/admin/users" but not "/administrator".
func hasPathPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// IsAPIPath reports whether the request targets the JSON API.
func IsAPIPath(p string) bool {
	return hasPathPrefix(cleanPath(p), "/api")
}

// PrincipalResolver turns request credentials into a principal.
type PrincipalResolver interface {
	Resolve(r *http.Request) *model.Principal
}

// Page routes used for denied page requests.
const (
	SignInPath       = "/signin"
	UnauthorizedPath = "/unauthorized"
)

// Guard resolves the request principal, stores it in the context and
// enforces the policy on every request. API requests are denied with JSON
// 401/403 responses; page requests are redirected to the sign-in or
// unauthorized page.
func Guard(resolver PrincipalResolver, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := resolver.Resolve(r)
			decision := policy.Authorize(r.URL.Path, p)

			if decision.Allowed() {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			attrs := []any{
				"outcome", decision.Outcome.String(),
				"method", r.Method,
				"path", r.URL.Path,
				"required", string(decision.Capability),
				"remote_addr", getClientIP(r),
			}
			if p != nil {
				attrs = append(attrs, "user_id", p.ID, "user_role", string(p.Role))
			}
			slog.Warn("access denied", attrs...)

			api := IsAPIPath(r.URL.Path)
			switch {
			case decision.Outcome == DenyUnauthenticated && api:
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			case api:
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
			case decision.Outcome == DenyUnauthenticated:
				http.Redirect(w, r, SignInPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			default:
				http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
			}
		})
	}
}
