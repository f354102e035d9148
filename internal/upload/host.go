// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload stores processed images on an image host and returns their
// public URLs.
package upload

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
)

// Host stores an object and returns the URL it is served from.
type Host interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName returns a unique object name for an upload, grouped by month:
// "2026/03/3f0c…e1.jpg".
func ObjectName(now time.Time, ext string) string {
	return path.Join(now.UTC().Format("2006/01"), uuid.NewString()+ext)
}
