// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/olegiv/sangbad-cms/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name     string
		data     []byte
		wantMime string
		wantExt  string
	}{
		{"png", encodePNG(t, createTestImage(20, 10)), MimeTypePNG, ".png"},
		{"jpeg", encodeJPEG(t, createTestImage(20, 10)), MimeTypeJPEG, ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Process(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if res.MimeType != tt.wantMime || res.Ext != tt.wantExt {
				t.Errorf("got %s %s, want %s %s", res.MimeType, res.Ext, tt.wantMime, tt.wantExt)
			}
			if res.Width != 20 || res.Height != 10 {
				t.Errorf("dimensions = %dx%d, want 20x10", res.Width, res.Height)
			}
			if detectFormat(res.Data) == "" {
				t.Error("output is not a recognised image")
			}
		})
	}
}

func TestProcess_ShrinksWideImages(t *testing.T) {
	p := &Processor{maxSize: MaxUploadSize, maxWidth: 50, maxPixels: MaxPixels}

	res, err := p.Process(bytes.NewReader(encodePNG(t, createTestImage(200, 100))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Width != 50 || res.Height != 25 {
		t.Errorf("dimensions = %dx%d, want 50x25", res.Width, res.Height)
	}
}

func TestProcess_Rejects(t *testing.T) {
	var gifBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, createTestImage(4, 4), nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}

	tests := []struct {
		name string
		p    *Processor
		data []byte
	}{
		{"empty", NewProcessor(), nil},
		{"text", NewProcessor(), []byte("definitely not an image")},
		{"gif", NewProcessor(), gifBuf.Bytes()},
		{"truncated png", NewProcessor(), encodePNG(t, createTestImage(10, 10))[:40]},
		{"too large", &Processor{maxSize: 64, maxWidth: MaxWidth, maxPixels: MaxPixels}, encodePNG(t, createTestImage(30, 30))},
		{"too many pixels", NewProcessor(), pngWithDimensions(t, 12000, 12000)},
		{"over custom pixel budget", &Processor{maxSize: MaxUploadSize, maxWidth: MaxWidth, maxPixels: 100}, encodePNG(t, createTestImage(11, 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Process(bytes.NewReader(tt.data))
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != "file" {
				t.Errorf("field = %q, want file", ve.Field)
			}
		})
	}
}

// pngWithDimensions returns a tiny PNG whose header claims width x height.
// Only the header is valid, which is all the pixel budget check reads.
func pngWithDimensions(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := encodePNG(t, createTestImage(1, 1))
	// Signature (8), IHDR length (4), "IHDR" (4), then width and height.
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestProcess_PixelBudget(t *testing.T) {
	huge := pngWithDimensions(t, 12000, 12000)
	if len(huge) > 1<<10 {
		t.Fatalf("header-only PNG is %d bytes", len(huge))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(huge))
	if err != nil || cfg.Width != 12000 || cfg.Height != 12000 {
		t.Fatalf("DecodeConfig = %+v, %v", cfg, err)
	}

	_, err = NewProcessor().Process(bytes.NewReader(huge))
	var ve *model.ValidationError
	if !errors.As(err, &ve) || ve.Field != "file" {
		t.Fatalf("err = %v, want file ValidationError", err)
	}

	// Exactly on the budget is accepted.
	p := &Processor{maxSize: MaxUploadSize, maxWidth: MaxWidth, maxPixels: 100}
	if _, err := p.Process(bytes.NewReader(encodePNG(t, createTestImage(10, 10)))); err != nil {
		t.Errorf("10x10 with a 100 pixel budget: %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	webpHeader := append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), make([]byte, 16)...)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encodePNG(t, createTestImage(2, 2)), "png"},
		{"jpeg", encodeJPEG(t, createTestImage(2, 2)), "jpeg"},
		{"webp", webpHeader, "webp"},
		{"tiff", []byte("II*\x00\x08\x00\x00\x00"), ""},
		{"html", []byte("<html><body></body></html>"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(20, 10)

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{0, 20, 10},
		{1, 20, 10},
		{2, 20, 10},
		{3, 20, 10},
		{4, 20, 10},
		{5, 10, 20},
		{6, 10, 20},
		{7, 10, 20},
		{8, 10, 20},
		{9, 20, 10},
	}

	for _, tt := range tests {
		got := applyOrientation(img, tt.orientation).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Errorf("orientation %d: %dx%d, want %dx%d", tt.orientation, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestReadExifOrientation_NoExif(t *testing.T) {
	if got := readExifOrientation(bytes.NewReader(encodePNG(t, createTestImage(2, 2)))); got != 1 {
		t.Errorf("readExifOrientation() = %d, want 1", got)
	}
}
