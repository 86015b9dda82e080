package optimizer

import (
	"bytes"
	"image"
)

// magicNumbers covers the formats the pipeline accepts. WebP files start with
// a RIFF container header.
var magicNumbers = []struct {
	format string
	prefix []byte
}{
	{FormatJPEG, []byte{0xFF, 0xD8, 0xFF}},
	{FormatPNG, []byte{0x89, 0x50, 0x4E, 0x47}},
	{"gif", []byte{0x47, 0x49, 0x46, 0x38}},
	{FormatWebP, []byte{0x52, 0x49, 0x46, 0x46}},
}

// IsValidImage reports whether the buffer holds a genuine image. With the
// optimizer enabled it probes the registered decoders; otherwise, or when the
// probe fails, it falls back to the magic-number table. Pure over bytes,
// never panics.
func (o *Optimizer) IsValidImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	if o.enabled {
		if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && format != "" {
			return true
		}
	}

	return matchesMagic(data)
}

func matchesMagic(data []byte) bool {
	for _, magic := range magicNumbers {
		if bytes.HasPrefix(data, magic.prefix) {
			return true
		}
	}
	return false
}

// SniffFormat returns the magic-number format of the buffer, or "unknown".
func SniffFormat(data []byte) string {
	for _, magic := range magicNumbers {
		if bytes.HasPrefix(data, magic.prefix) {
			return magic.format
		}
	}
	return FormatUnknown
}
