// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Kind distinguishes the content collections that share the Content shape.
type Kind string

// Content kinds.
const (
	KindNews       Kind = "news"
	KindOpinion    Kind = "opinion"
	KindVideo      Kind = "video"
	KindBookReview Kind = "book-review"
)

// Kinds lists all content kinds.
var Kinds = []Kind{KindNews, KindOpinion, KindVideo, KindBookReview}

// kindSegments maps URL path segments to kinds.
var kindSegments = map[string]Kind{
	"news":         KindNews,
	"opinions":     KindOpinion,
	"videos":       KindVideo,
	"book-reviews": KindBookReview,
}

// KindFromSegment resolves a URL path segment such as "opinions" to its kind.
func KindFromSegment(segment string) (Kind, bool) {
	k, ok := kindSegments[segment]
	return k, ok
}

// Segment returns the URL path segment for the kind.
func (k Kind) Segment() string {
	for seg, kind := range kindSegments {
		if kind == k {
			return seg
		}
	}
	return string(k)
}

// Label is the human-readable kind name used in audit messages.
func (k Kind) Label() string {
	if k == KindBookReview {
		return "book review"
	}
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNews, KindOpinion, KindVideo, KindBookReview:
		return true
	}
	return false
}

// Content is a news article, opinion piece, video or book review.
// Kind-specific fields are empty for the other kinds.
type Content struct {
	ID         int64  `json:"id"`
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	CategoryID *int64 `json:"category_id,omitempty"`
	AuthorID   int64  `json:"author_id"`
	ImageURL   string `json:"image_url,omitempty"`
	Published  bool   `json:"published"`
	Views      int64  `json:"views"`

	// Video
	VideoURL     string `json:"video_url,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// Book review
	BookTitle  string `json:"book_title,omitempty"`
	BookAuthor string `json:"book_author,omitempty"`
	Rating     *int   `json:"rating,omitempty"`

	// Joined for display
	AuthorName   string `json:"author_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups news articles. Serial is the display ordering key.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Serial      int64     `json:"serial"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
