package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propstack/property-media/internal/config"
	"github.com/propstack/property-media/internal/handlers"
	"github.com/propstack/property-media/internal/models"
	"github.com/propstack/property-media/internal/routes"
	"github.com/propstack/property-media/internal/services/optimizer"
	"github.com/propstack/property-media/internal/services/queue"
	"github.com/propstack/property-media/internal/services/storage"
	"go.uber.org/zap"
)

const (
	testBucket      = "property-images"
	testPlaceholder = "/images/placeholder-property.jpg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeObjectStore implements storage.ObjectStore for handler tests.
type fakeObjectStore struct {
	uploads   []string
	uploadErr error
}

func (f *fakeObjectStore) UploadFile(key string, _ io.Reader, _, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://example.supabase.co/storage/v1/object/public/" + testBucket + "/" + key
}

func (f *fakeObjectStore) RemoveFiles(keys []string) (int, error) {
	return len(keys), nil
}

func (f *fakeObjectStore) Ping() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{
			MaxFileSize:    10 * 1024 * 1024,
			PlaceholderURL: testPlaceholder,
			CacheControl:   "public, max-age=31536000, immutable",
			CacheDuration:  time.Hour,
		},
		Optimizer: config.OptimizerConfig{
			Enabled:   true,
			MaxWidth:  1920,
			MaxHeight: 1920,
			Quality:   85,
		},
	}
}

func newUploadRouter(store storage.ObjectStore) (*gin.Engine, *config.Config) {
	cfg := testConfig()
	svc := storage.New(store, nil, testBucket, cfg.Storage.CacheDuration, zap.NewNop())
	handler := handlers.NewImageHandler(optimizer.New(true), svc, queue.NoopPublisher{}, zap.NewNop(), cfg)
	router := routes.NewRouter(handler, nil, zap.NewNop()).SetupRoutes()
	return router, cfg
}

func transparentPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{200, 80, 40, uint8((x + y) % 256)})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, body *bytes.Buffer, contentType string, withCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set("Content-Type", contentType)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: "ok"})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeUploadResponse(t *testing.T, rec *httptest.ResponseRecorder) models.UploadResponse {
	t.Helper()
	var resp models.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestUploadImageSuccess(t *testing.T) {
	store := &fakeObjectStore{}
	router, _ := newUploadRouter(store)

	body, ct := multipartUpload(t, "file", "photo.png", transparentPNG(t, 300, 200))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeUploadResponse(t, rec)
	if !resp.Success {
		t.Fatalf("got success=false: %+v", resp)
	}
	if resp.Path == "" || len(store.uploads) != 1 {
		t.Errorf("expected one stored object, got path=%q uploads=%v", resp.Path, store.uploads)
	}
	if resp.URL != store.PublicURL(resp.Path) {
		t.Errorf("url %q does not match public url for %q", resp.URL, resp.Path)
	}
	if resp.Optimization == nil || resp.Optimization.Format != "png" {
		t.Errorf("transparent png should stay png: %+v", resp.Optimization)
	}
	if resp.Optimization.Dimensions.Width != 300 || resp.Optimization.Dimensions.Height != 200 {
		t.Errorf("dimensions changed: %+v", resp.Optimization.Dimensions)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Errorf("got Cache-Control %q", cc)
	}
}

func TestUploadImageNoFile(t *testing.T) {
	router, _ := newUploadRouter(&fakeObjectStore{})

	body, ct := multipartUpload(t, "wrong_field", "photo.png", transparentPNG(t, 10, 10))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if resp := decodeUploadResponse(t, rec); resp.Error != "No file uploaded" {
		t.Errorf("got error %q", resp.Error)
	}
}

func TestUploadImageInvalidBytes(t *testing.T) {
	router, _ := newUploadRouter(&fakeObjectStore{})

	body, ct := multipartUpload(t, "file", "notes.txt", []byte("not an image at all"))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if resp := decodeUploadResponse(t, rec); resp.Error != "Invalid image file" {
		t.Errorf("got error %q", resp.Error)
	}
}

func TestUploadImageStorageUnconfigured(t *testing.T) {
	router, _ := newUploadRouter(nil)

	body, ct := multipartUpload(t, "file", "photo.png", transparentPNG(t, 10, 10))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 on the degraded path", rec.Code)
	}

	resp := decodeUploadResponse(t, rec)
	if resp.URL != testPlaceholder {
		t.Errorf("got url %q, want placeholder", resp.URL)
	}
	if resp.Error == "" {
		t.Error("degraded response must carry an error annotation")
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("degraded response must not be cached, got %q", cc)
	}
}

func TestUploadImageBucketNotFound(t *testing.T) {
	store := &fakeObjectStore{uploadErr: errors.New("Bucket not found")}
	router, _ := newUploadRouter(store)

	body, ct := multipartUpload(t, "file", "photo.png", transparentPNG(t, 10, 10))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	resp := decodeUploadResponse(t, rec)
	if resp.URL != testPlaceholder {
		t.Errorf("got url %q, want placeholder", resp.URL)
	}
	if resp.Help == "" {
		t.Error("bucket misconfiguration should include setup help")
	}
}

func TestUploadImageUploadError(t *testing.T) {
	store := &fakeObjectStore{uploadErr: errors.New("storage timeout")}
	router, _ := newUploadRouter(store)

	body, ct := multipartUpload(t, "file", "photo.png", transparentPNG(t, 10, 10))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	resp := decodeUploadResponse(t, rec)
	if resp.URL != testPlaceholder || resp.Details == "" {
		t.Errorf("generic upload failure should return placeholder plus detail: %+v", resp)
	}
}

func TestUploadImageRequiresAdminCookie(t *testing.T) {
	router, _ := newUploadRouter(&fakeObjectStore{})

	body, ct := multipartUpload(t, "file", "photo.png", transparentPNG(t, 10, 10))
	rec := doUpload(t, router, body, ct, false)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401 without session cookie", rec.Code)
	}
}

func TestUploadImageWrongMethod(t *testing.T) {
	router, _ := newUploadRouter(&fakeObjectStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/images", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "ok"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d, want 405", rec.Code)
	}
}

func TestUploadImageTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.MaxFileSize = 64 // force the ceiling
	svc := storage.New(&fakeObjectStore{}, nil, testBucket, time.Hour, zap.NewNop())
	handler := handlers.NewImageHandler(optimizer.New(true), svc, queue.NoopPublisher{}, zap.NewNop(), cfg)
	router := routes.NewRouter(handler, nil, zap.NewNop()).SetupRoutes()

	body, ct := multipartUpload(t, "file", "big.png", transparentPNG(t, 64, 64))
	rec := doUpload(t, router, body, ct, true)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for oversized upload", rec.Code)
	}
}
