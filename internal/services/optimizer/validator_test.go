package optimizer

import "testing"

func TestIsValidImageMagicNumbers(t *testing.T) {
	// Disabled optimizer forces the magic-number path.
	o := New(false)

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"jpeg header", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, true},
		{"png header", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, true},
		{"gif header", []byte("GIF89a"), true},
		{"webp riff header", []byte("RIFF\x00\x00\x00\x00WEBP"), true},
		{"plain text", []byte("hello world"), false},
		{"empty buffer", nil, false},
		{"truncated jpeg", []byte{0xFF, 0xD8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.IsValidImage(tt.data); got != tt.want {
				t.Errorf("IsValidImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidImageProbesDecoders(t *testing.T) {
	data := encodeTransparentPNG(t, 10, 10)

	if !New(true).IsValidImage(data) {
		t.Error("enabled optimizer must accept a decodable png")
	}
}

func TestIsValidImageIdempotent(t *testing.T) {
	o := New(true)
	data := encodeJPEG(t, 20, 20)

	first := o.IsValidImage(data)
	second := o.IsValidImage(data)
	if first != second {
		t.Errorf("validation not idempotent: %v then %v", first, second)
	}
}

func TestSniffFormat(t *testing.T) {
	if got := SniffFormat([]byte{0xFF, 0xD8, 0xFF}); got != FormatJPEG {
		t.Errorf("got %q, want jpeg", got)
	}
	if got := SniffFormat([]byte("no image here")); got != FormatUnknown {
		t.Errorf("got %q, want unknown", got)
	}
}
