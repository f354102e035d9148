// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/olegiv/sangbad-cms/internal/testutil"
)

// setupTestDB returns a migrated database; migrations create the sessions table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return testutil.TestDB(t)
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)

	sm := New(db, true)

	if sm == nil {
		t.Fatal("expected session manager to be non-nil")
	}
}

func TestNew_DevMode(t *testing.T) {
	db := setupTestDB(t)

	// Development mode
	sm := New(db, true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	db := setupTestDB(t)

	// Production mode
	sm := New(db, false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	db := setupTestDB(t)

	sm := New(db, true)

	// Check session lifetime
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}

	// Check cookie settings
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
}

func TestNew_StoreInitialized(t *testing.T) {
	db := setupTestDB(t)

	sm := New(db, true)

	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestSession_PersistsAcrossLoads(t *testing.T) {
	db := setupTestDB(t)
	sm := New(db, true)
	ctx := context.Background()

	sessCtx, err := sm.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sm.Put(sessCtx, "user_id", int64(12))
	token, _, err := sm.Commit(sessCtx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	loaded, err := sm.Load(ctx, token)
	if err != nil {
		t.Fatalf("Load(token): %v", err)
	}
	if got := sm.GetInt64(loaded, "user_id"); got != 12 {
		t.Errorf("user_id = %d, want 12", got)
	}
}
