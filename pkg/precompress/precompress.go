// Package precompress shrinks images before they travel to the upload
// endpoint. It mirrors the server-side optimizer's bounds but is advisory:
// the server re-optimizes regardless, so skipping this stage only costs
// upload bandwidth.
package precompress

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxSizeMB = 2.0
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1920
	DefaultQuality   = 0.85
	qualityFloor     = 0.1
	qualityStep      = 0.1
)

type Options struct {
	MaxSizeMB float64
	MaxWidth  int
	MaxHeight int
	Quality   float64
	Format    string
}

type Result struct {
	Data             []byte
	OriginalSize     int
	CompressedSize   int
	ReductionPercent float64
	Quality          float64
}

func (opts *Options) normalize() {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 1 {
		opts.Quality = DefaultQuality
	}
	if opts.Format == "" {
		opts.Format = "jpeg"
	}
}

// Compress re-encodes the image under the size budget, stepping quality down
// by 0.1 per pass until under budget or the 0.1 floor. Inputs already within
// budget and in the target format come back unchanged.
func Compress(data []byte, opts Options) (*Result, error) {
	opts.normalize()
	budget := int(opts.MaxSizeMB * 1024 * 1024)

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if len(data) <= budget && format == opts.Format {
		return &Result{
			Data:           data,
			OriginalSize:   len(data),
			CompressedSize: len(data),
			Quality:        opts.Quality,
		}, nil
	}

	bounds := img.Bounds()
	targetW, targetH := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	if targetW != bounds.Dx() || targetH != bounds.Dy() {
		img = imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	}

	encoded, quality, err := encodeUnderBudget(img, opts.Quality, budget)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:             encoded,
		OriginalSize:     len(data),
		CompressedSize:   len(encoded),
		ReductionPercent: reduction(len(data), len(encoded)),
		Quality:          quality,
	}, nil
}

// encodeUnderBudget recurses with lower quality while the output exceeds the
// budget. Quality strictly decreases toward the floor each call, so it
// terminates even on pathological inputs.
func encodeUnderBudget(img image.Image, quality float64, budget int) ([]byte, float64, error) {
	buffer := &bytes.Buffer{}
	if err := jpeg.Encode(buffer, img, &jpeg.Options{Quality: int(math.Round(quality * 100))}); err != nil {
		return nil, quality, fmt.Errorf("encode jpeg: %w", err)
	}

	if buffer.Len() <= budget || quality-qualityStep < qualityFloor {
		return buffer.Bytes(), quality, nil
	}
	return encodeUnderBudget(img, quality-qualityStep, budget)
}

func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	targetW := int(math.Round(float64(w) * scale))
	targetH := int(math.Round(float64(h) * scale))
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return targetW, targetH
}

func reduction(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	pct := float64(original-compressed) / float64(original) * 100
	return math.Round(pct*100) / 100
}
