// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/olegiv/sangbad-cms/internal/util"
)

// URLPrefix is the path local uploads are served under.
const URLPrefix = "/uploads/"

// LocalHost writes uploads below a directory that is served at URLPrefix.
type LocalHost struct {
	dir string
}

// NewLocalHost creates a host rooted at dir.
func NewLocalHost(dir string) *LocalHost {
	return &LocalHost{dir: dir}
}

// Dir returns the root directory.
func (h *LocalHost) Dir() string {
	return h.dir
}

// Put writes data to dir/name and returns its URL.
func (h *LocalHost) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	target, err := util.SafeJoinPath(h.dir, filepath.FromSlash(name))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path.Join(URLPrefix, name), nil
}

// Delete removes dir/name. A missing file is not an error.
func (h *LocalHost) Delete(_ context.Context, name string) error {
	target, err := util.SafeJoinPath(h.dir, filepath.FromSlash(name))
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}
