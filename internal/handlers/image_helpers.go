package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/propstack/property-media/internal/models"
	"github.com/propstack/property-media/internal/services/optimizer"
	"github.com/propstack/property-media/internal/services/storage"
	"go.uber.org/zap"
)

// === FILE OPERATIONS ===

// readUpload copies the multipart part into memory. The spooled temp file
// belongs to the request form and is released when the request ends, on every
// exit path.
func (h *ImageHandler) readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, h.config.Storage.MaxFileSize+1))
}

// === OPTIMIZATION ===

// optimizeWithCache runs the optimizer behind the content-hash dedupe cache:
// a re-submitted identical upload skips the encode entirely.
func (h *ImageHandler) optimizeWithCache(c *gin.Context, data []byte) *models.OptimizationResult {
	// Format stays unset: auto-selection keeps transparent PNGs as PNG and
	// re-encodes everything else as WebP.
	opts := optimizer.DefaultOptions()
	opts.MaxWidth = h.config.Optimizer.MaxWidth
	opts.MaxHeight = h.config.Optimizer.MaxHeight
	opts.Quality = h.config.Optimizer.Quality

	cacheKey := storage.OptimizationCacheKey(data, opts.MaxWidth, opts.MaxHeight, opts.Quality, opts.Format)
	if cached, ok := h.storage.CachedOptimization(c.Request.Context(), cacheKey); ok {
		h.logger.Info("Optimization cache hit", zap.Int("size", cached.OptimizedSize))
		return cached
	}

	result := h.optimizer.Optimize(data, opts)
	h.storage.StoreOptimization(c.Request.Context(), cacheKey, result)
	return result
}

// keyExtension picks the storage key extension from the optimized format,
// falling back to the original filename when the format is unknown.
func (h *ImageHandler) keyExtension(result *models.OptimizationResult, filename string) string {
	switch result.Format {
	case optimizer.FormatJPEG:
		return "jpg"
	case optimizer.FormatPNG, optimizer.FormatWebP:
		return result.Format
	}

	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return "jpg"
}

func contentTypeFor(format string) string {
	switch format {
	case optimizer.FormatJPEG, optimizer.FormatUnknown, "":
		return "image/jpeg"
	default:
		return "image/" + format
	}
}

// === RESPONSE HANDLING ===

// respondDegraded is the 200-with-placeholder path: the caller's form keeps
// working, the annotation surfaces what went wrong. Degraded responses must
// not be cached.
func (h *ImageHandler) respondDegraded(c *gin.Context, errMsg, help, details string) {
	h.logger.Warn("Upload degraded to placeholder",
		zap.String("error", errMsg),
		zap.String("details", details))

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, models.UploadResponse{
		URL:     h.config.Storage.PlaceholderURL,
		Error:   errMsg,
		Details: details,
		Help:    help,
	})
}
