// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewRequiredError returns a ValidationError for a missing field.
func NewRequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// DuplicateKeyError reports a uniqueness violation on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// AuthenticationError means no valid credential accompanied the request.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "authentication required"
}

// ForbiddenRoleError means the principal's role lacks the capability entirely.
type ForbiddenRoleError struct {
	Role     Role
	Required string
}

func (e *ForbiddenRoleError) Error() string {
	return fmt.Sprintf("role %q lacks capability %q", e.Role, e.Required)
}

// OwnershipError means the role may mutate this kind of entity, but not this one.
type OwnershipError struct {
	PrincipalID int64
	EntityID    int64
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("user %d does not own entity %d", e.PrincipalID, e.EntityID)
}

// NotFoundError means no entity matched the lookup.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// StorageError wraps an unexpected backend failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InUseError means the entity is still referenced and cannot be removed.
type InUseError struct {
	Entity string
	Refs   int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is still referenced by %d record(s)", e.Entity, e.Refs)
}
