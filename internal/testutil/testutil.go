// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the sangbad project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/store"
)

// TestSecret is a token-signing secret that passes config validation.
const TestSecret = "test-Secret-key-32-bytes-long!!!"

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "sangbad-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role and a placeholder password hash.
func CreateUser(t *testing.T, db *sql.DB, email string, role model.Role) model.User {
	t.Helper()

	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Name:         string(role) + " user",
		Email:        email,
		PasswordHash: "unused",
		Role:         role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, db *sql.DB, name, slug string, serial int64) model.Category {
	t.Helper()

	c, err := store.New(db).CreateCategory(context.Background(), store.CategoryParams{
		Name:   name,
		Slug:   slug,
		Serial: serial,
		Now:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}
