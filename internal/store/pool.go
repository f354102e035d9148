// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"fmt"
	"sync"
)

// Pool is the process-wide database handle. It opens and migrates the
// database on first use and returns the same *sql.DB afterwards.
// A failed open is not memoized, so a later call may retry.
type Pool struct {
	path string
	cfg  DBConfig

	mu sync.Mutex
	db *sql.DB
}

// NewPool creates a Pool for the database at path. Nothing is opened yet.
func NewPool(path string, cfg DBConfig) *Pool {
	return &Pool{path: path, cfg: cfg}
}

// DB returns the shared handle, opening and migrating it on the first call.
func (p *Pool) DB() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	db, err := NewDBWithConfig(p.path, p.cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating %s: %w", p.path, err)
	}

	p.db = db
	return db, nil
}

// Close closes the handle if it was opened.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
