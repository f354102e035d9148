// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Role is the closed set of account roles.
type Role string

// User roles.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleWriter Role = "writer"
	RoleUser   Role = "user"
)

// Roles lists every valid role, most privileged first.
var Roles = []Role{RoleAdmin, RoleEditor, RoleWriter, RoleUser}

// ParseRole canonicalizes a decoded role string. Matching is
// case-insensitive, so "ADMIN" and "admin" are the same role.
// Unknown values report ok=false.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEditor:
		return RoleEditor, true
	case RoleWriter:
		return RoleWriter, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok && string(r) == strings.ToLower(string(r))
}

// IsStaff reports whether the role may use the editor console.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleWriter
}

// Principal is the resolved identity and role for the current request.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin reports whether the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Owns reports whether the principal authored the given entity.
func (p *Principal) Owns(authorID int64) bool {
	return p != nil && p.ID == authorID
}
