package optimizer

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// encodeImage writes img in the requested format and reports the format it
// actually produced.
func encodeImage(w io.Writer, img image.Image, format string, opts Options) (string, error) {
	switch format {
	case FormatWebP:
		return FormatWebP, encodeWebP(w, img, opts.Quality)
	case FormatJPEG, "jpg":
		// Go's jpeg encoder has no progressive mode; quality is honored.
		return FormatJPEG, jpeg.Encode(w, img, &jpeg.Options{Quality: opts.Quality})
	case FormatPNG:
		enc := &png.Encoder{CompressionLevel: pngLevel(opts.CompressionLevel)}
		return FormatPNG, enc.Encode(w, img)
	case FormatAVIF:
		// No AVIF encoder is available; WebP is the closest ratio we can offer.
		return FormatWebP, encodeWebP(w, img, opts.Quality)
	default:
		return FormatJPEG, jpeg.Encode(w, img, &jpeg.Options{Quality: opts.Quality})
	}
}

func encodeWebP(w io.Writer, img image.Image, quality int) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return err
	}
	return webp.Encode(w, img, options)
}

func pngLevel(level int) png.CompressionLevel {
	if level >= DefaultCompressionLevel {
		return png.BestCompression
	}
	return png.DefaultCompression
}
