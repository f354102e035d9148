// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates and normalises uploaded images before they are
// handed to an image host.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/sangbad-cms/internal/model"
)

// Upload limits.
const (
	MaxUploadSize = 5 << 20
	MaxWidth      = 1600
	JPEGQuality   = 90

	// MaxPixels bounds width*height so a small, highly compressed file
	// cannot expand into gigabytes when decoded.
	MaxPixels = 40_000_000
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeWebP = "image/webp"
)

// Result is a decoded, oriented and re-encoded image.
type Result struct {
	Data     []byte
	MimeType string
	Ext      string
	Width    int
	Height   int
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	maxSize   int64
	maxWidth  int
	maxPixels int
}

// NewProcessor creates a processor with the default upload limits.
func NewProcessor() *Processor {
	return &Processor{maxSize: MaxUploadSize, maxWidth: MaxWidth, maxPixels: MaxPixels}
}

// Process reads an uploaded image, rejects anything that is not a JPEG, PNG
// or WebP within the size limit, applies the EXIF orientation, shrinks wide
// images and re-encodes the result. Rejections are *model.ValidationError on
// the "file" field.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, &model.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d MB", p.maxSize>>20),
		}
	}
	if len(data) == 0 {
		return nil, model.NewRequiredError("file")
	}

	format := detectFormat(data)
	if format == "" {
		return nil, &model.ValidationError{Field: "file", Message: "must be a JPEG, PNG or WebP image"}
	}

	// Read only the header first.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &model.ValidationError{Field: "file", Message: "is not a readable image"}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.maxPixels) {
		return nil, &model.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d megapixels", p.maxPixels/1_000_000),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &model.ValidationError{Field: "file", Message: "is not a readable image"}
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	// No pure Go WebP encoder; WebP uploads are stored as JPEG.
	if format == "webp" {
		format = "jpeg"
	}

	encoded, err := encodeImage(img, format, JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Data:     encoded,
		MimeType: formatToMimeType(format),
		Ext:      formatToExt(format),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the image format from raw bytes. Only JPEG, PNG and
// WebP are accepted.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

func formatToExt(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
