// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Category, Content, Principal and the error taxonomy.
package model

import (
	"database/sql"
	"time"
)

// User represents a CMS account: an admin, editor, writer or reader.
type User struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         Role         `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"-"`
}

// IsAdmin returns true if the user has admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal returns the identity the user acts as.
func (u User) Principal() *Principal {
	return &Principal{ID: u.ID, Role: u.Role}
}
