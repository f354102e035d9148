// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the content workflow: validation and derivation
// before persistence, role and ownership checks, view counting and the
// cached listings served to readers.
package service

import (
	"github.com/olegiv/sangbad-cms/internal/model"
)

// Capability names reported in ForbiddenRoleError.
const (
	capStaff = "staff"
	capAdmin = "admin"
)

// requireStaff admits admin, editor and writer principals.
func requireStaff(p *model.Principal) error {
	if p == nil {
		return &model.AuthenticationError{}
	}
	if !p.Role.IsStaff() {
		return &model.ForbiddenRoleError{Role: p.Role, Required: capStaff}
	}
	return nil
}

// requireAdmin admits admin principals only.
func requireAdmin(p *model.Principal) error {
	if p == nil {
		return &model.AuthenticationError{}
	}
	if p.Role != model.RoleAdmin {
		return &model.ForbiddenRoleError{Role: p.Role, Required: capAdmin}
	}
	return nil
}

// authorizeMutation gates Update and Delete: admins may change anything,
// editors and writers only their own rows.
func authorizeMutation(p *model.Principal, c model.Content) error {
	if err := requireStaff(p); err != nil {
		return err
	}
	if p.IsAdmin() || p.Owns(c.AuthorID) {
		return nil
	}
	return &model.OwnershipError{PrincipalID: p.ID, EntityID: c.ID}
}

// authorizePublish gates TogglePublish: admins and editors may toggle any
// row, writers only their own.
func authorizePublish(p *model.Principal, c model.Content) error {
	if err := requireStaff(p); err != nil {
		return err
	}
	if p.Role == model.RoleAdmin || p.Role == model.RoleEditor || p.Owns(c.AuthorID) {
		return nil
	}
	return &model.OwnershipError{PrincipalID: p.ID, EntityID: c.ID}
}

// authorizeRead gates editor-side reads, which include drafts: admins and
// editors see every row, writers their own.
func authorizeRead(p *model.Principal, c model.Content) error {
	return authorizePublish(p, c)
}
