package optimizer

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/propstack/property-media/internal/models"

	_ "image/gif"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth         = 1920
	DefaultMaxHeight        = 1920
	DefaultQuality          = 85
	DefaultCompressionLevel = 6
)

const (
	FormatJPEG    = "jpeg"
	FormatPNG     = "png"
	FormatWebP    = "webp"
	FormatAVIF    = "avif"
	FormatUnknown = "unknown"
)

// Optimizer resizes and transcodes image buffers. The enabled flag is the
// capability switch: a disabled optimizer passes buffers through untouched so
// uploads keep working without the encoding toolchain.
type Optimizer struct {
	enabled bool
}

func New(enabled bool) *Optimizer {
	return &Optimizer{enabled: enabled}
}

func (o *Optimizer) Enabled() bool {
	return o.enabled
}

type Options struct {
	MaxWidth         int
	MaxHeight        int
	Quality          int
	Format           string
	Progressive      bool
	CompressionLevel int
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:         DefaultMaxWidth,
		MaxHeight:        DefaultMaxHeight,
		Quality:          DefaultQuality,
		Progressive:      true,
		CompressionLevel: DefaultCompressionLevel,
	}
}

func (opts *Options) normalize() {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = DefaultCompressionLevel
	}
}

// Optimize decodes, bounds, and re-encodes the buffer. It never fails the
// request: when the optimizer is disabled or any step errors, the original
// buffer comes back unchanged with zero reduction.
func (o *Optimizer) Optimize(data []byte, opts Options) *models.OptimizationResult {
	if !o.enabled {
		return passthrough(data, FormatUnknown)
	}
	opts.normalize()

	img, srcFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return passthrough(data, FormatUnknown)
	}

	outFormat := opts.Format
	if outFormat == "" {
		outFormat = autoFormat(srcFormat, img)
	}

	bounds := img.Bounds()
	targetW, targetH := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	if targetW != bounds.Dx() || targetH != bounds.Dy() {
		img = imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	}

	buffer := &bytes.Buffer{}
	encodedFormat, err := encodeImage(buffer, img, outFormat, opts)
	if err != nil {
		return passthrough(data, srcFormat)
	}

	outBounds := img.Bounds()
	return &models.OptimizationResult{
		Data:             buffer.Bytes(),
		Width:            outBounds.Dx(),
		Height:           outBounds.Dy(),
		Format:           encodedFormat,
		OriginalSize:     len(data),
		OptimizedSize:    buffer.Len(),
		ReductionPercent: reduction(len(data), buffer.Len()),
	}
}

// autoFormat keeps PNG when transparency is present, otherwise prefers WebP
// for its compression ratio.
func autoFormat(srcFormat string, img image.Image) string {
	if srcFormat == FormatPNG && hasAlpha(img) {
		return FormatPNG
	}
	return FormatWebP
}

func hasAlpha(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return !op.Opaque()
	}
	return false
}

// fitWithin scales (w, h) down so both fit their bounds, preserving aspect
// ratio with nearest-pixel rounding. Images already within bounds are never
// enlarged.
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

func reduction(original, optimized int) float64 {
	if original == 0 {
		return 0
	}
	pct := float64(original-optimized) / float64(original) * 100
	return math.Round(pct*100) / 100
}

func passthrough(data []byte, format string) *models.OptimizationResult {
	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}
	return &models.OptimizationResult{
		Data:             data,
		Width:            width,
		Height:           height,
		Format:           format,
		OriginalSize:     len(data),
		OptimizedSize:    len(data),
		ReductionPercent: 0,
	}
}
