// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/model"
)

// Default admin credentials, used when none are configured.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// SeedOptions configures Seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// defaultCategories are created on first seed, in display order.
var defaultCategories = []CategoryParams{
	{Name: "জাতীয়", Slug: "national", Description: "দেশের খবর", Serial: 1},
	{Name: "আন্তর্জাতিক", Slug: "international", Description: "বিশ্বের খবর", Serial: 2},
	{Name: "রাজনীতি", Slug: "politics", Serial: 3},
	{Name: "অর্থনীতি", Slug: "economy", Serial: 4},
	{Name: "খেলা", Slug: "sports", Serial: 5},
	{Name: "বিনোদন", Slug: "entertainment", Serial: 6},
	{Name: "প্রযুক্তি", Slug: "technology", Serial: 7},
}

// Seed creates the initial admin user and default categories.
// It is a no-op for data that already exists.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)

	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	password := opts.AdminPassword
	if email == "" {
		email = DefaultAdminEmail
	}
	if password == "" {
		password = DefaultAdminPassword
	}

	if err := seedAdmin(ctx, queries, email, password); err != nil {
		return err
	}
	return seedCategories(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries, email, password string) error {
	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	attrs := []any{"id", user.ID, "email", user.Email}
	if password == DefaultAdminPassword {
		attrs = append(attrs, "password", DefaultAdminPassword)
	}
	slog.Info("created admin user", attrs...)
	return nil
}

func seedCategories(ctx context.Context, queries *Queries) error {
	existing, err := queries.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	for _, c := range defaultCategories {
		c.Now = now
		if _, err := queries.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("creating category %s: %w", c.Slug, err)
		}
	}
	slog.Info("created default categories", "count", len(defaultCategories))
	return nil
}
