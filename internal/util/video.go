// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrUnrecognizedVideo is returned when no video id can be extracted.
var ErrUnrecognizedVideo = errors.New("unrecognized video reference")

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID extracts a YouTube video id from a watch, embed, shorts or
// youtu.be URL, or accepts a bare 11-character id.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if videoIDRegex.MatchString(ref) {
		return ref, nil
	}

	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", ErrUnrecognizedVideo
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(path)
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "embed/"):
			id = firstSegment(strings.TrimPrefix(path, "embed/"))
		case strings.HasPrefix(path, "shorts/"):
			id = firstSegment(strings.TrimPrefix(path, "shorts/"))
		case strings.HasPrefix(path, "v/"):
			id = firstSegment(strings.TrimPrefix(path, "v/"))
		}
	}

	if !videoIDRegex.MatchString(id) {
		return "", ErrUnrecognizedVideo
	}
	return id, nil
}

// VideoThumbnailURL returns the default thumbnail URL for a video id.
func VideoThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
