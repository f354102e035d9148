// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olegiv/sangbad-cms/internal/imaging"
	"github.com/olegiv/sangbad-cms/internal/model"
	"github.com/olegiv/sangbad-cms/internal/upload"
)

// UploadResult describes a stored image.
type UploadResult struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// MediaService processes uploaded images and stores them on an image host.
type MediaService struct {
	processor *imaging.Processor
	host      upload.Host
	events    *EventService
	now       func() time.Time
}

// NewMediaService creates a new media service.
func NewMediaService(host upload.Host, events *EventService) *MediaService {
	return &MediaService{
		processor: imaging.NewProcessor(),
		host:      host,
		events:    events,
		now:       time.Now,
	}
}

// Upload validates and normalises an image and stores it. Only staff may
// upload.
func (s *MediaService) Upload(ctx context.Context, p *model.Principal, r io.Reader) (UploadResult, error) {
	if err := requireStaff(p); err != nil {
		return UploadResult{}, err
	}

	img, err := s.processor.Process(r)
	if err != nil {
		return UploadResult{}, err
	}

	name := upload.ObjectName(s.now(), img.Ext)
	url, err := s.host.Put(ctx, name, img.Data, img.MimeType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("storing upload: %w", err)
	}

	_ = s.events.LogContentEvent(ctx, p, "Image uploaded", map[string]any{
		"url":       url,
		"mime_type": img.MimeType,
		"size":      len(img.Data),
	})

	return UploadResult{
		URL:      url,
		MimeType: img.MimeType,
		Width:    img.Width,
		Height:   img.Height,
	}, nil
}
