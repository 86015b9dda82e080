package precompress

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

func solidJPEG(t *testing.T, width, height, quality int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{120, 160, 200, 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// noisePNG compresses terribly, which is the point.
func noisePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255,
			})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCompressSmallInputUnchanged(t *testing.T) {
	data := solidJPEG(t, 100, 100, 80)

	result, err := Compress(data, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(result.Data, data) {
		t.Error("input under budget and in target format must pass through unchanged")
	}
	if result.ReductionPercent != 0 {
		t.Errorf("got reduction %.2f, want 0", result.ReductionPercent)
	}
}

func TestCompressConvertsFormat(t *testing.T) {
	data := noisePNG(t, 50, 50)

	result, err := Compress(data, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, format, err := image.Decode(bytes.NewReader(result.Data)); err != nil || format != "jpeg" {
		t.Errorf("got format %q (err %v), want jpeg re-encode", format, err)
	}
}

func TestCompressNeverUpscales(t *testing.T) {
	data := noisePNG(t, 400, 300)

	result, err := Compress(data, Options{MaxWidth: 1920, MaxHeight: 1920})
	if err != nil {
		t.Fatal(err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("got %dx%d, want 400x300 (no enlargement)", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCompressBoundsOversizedInput(t *testing.T) {
	data := noisePNG(t, 2400, 1200)

	result, err := Compress(data, Options{})
	if err != nil {
		t.Fatal(err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1920 || img.Bounds().Dy() != 960 {
		t.Errorf("got %dx%d, want 1920x960", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

// A budget no image can meet must still terminate once quality hits the floor.
func TestCompressTerminatesAtQualityFloor(t *testing.T) {
	data := noisePNG(t, 800, 800)

	result, err := Compress(data, Options{MaxSizeMB: 0.0001, Quality: 0.85})
	if err != nil {
		t.Fatal(err)
	}

	if result.Quality > qualityFloor+qualityStep {
		t.Errorf("got quality %.2f, want decay to the floor", result.Quality)
	}
	if len(result.Data) == 0 {
		t.Error("floor output must still be a usable encode")
	}
}

func TestCompressRejectsGarbage(t *testing.T) {
	if _, err := Compress([]byte("not an image"), Options{}); err == nil {
		t.Error("expected decode error")
	}
}
