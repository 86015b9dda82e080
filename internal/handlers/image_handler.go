package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propstack/property-media/internal/config"
	"github.com/propstack/property-media/internal/models"
	"github.com/propstack/property-media/internal/services/optimizer"
	"github.com/propstack/property-media/internal/services/queue"
	"github.com/propstack/property-media/internal/services/storage"
	"go.uber.org/zap"
)

const fileParamKey = "file"

type ImageHandler struct {
	optimizer *optimizer.Optimizer
	storage   *storage.Service
	queue     queue.Publisher
	logger    *zap.Logger
	config    *config.Config
}

func NewImageHandler(
	opt *optimizer.Optimizer,
	store *storage.Service,
	publisher queue.Publisher,
	logger *zap.Logger,
	cfg *config.Config,
) *ImageHandler {
	return &ImageHandler{
		optimizer: opt,
		storage:   store,
		queue:     publisher,
		logger:    logger,
		config:    cfg,
	}
}

// UploadImage ingests one property photo: validate, optimize, store, return
// the public URL. Storage-side failures degrade to a 200 with the placeholder
// URL so the surrounding listing form never breaks.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile(fileParamKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Error: "No file uploaded"})
		return
	}

	if fileHeader.Size > h.config.Storage.MaxFileSize {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Error: "File exceeds the upload size limit"})
		return
	}

	if !h.storage.Configured() {
		h.respondDegraded(c, "Storage not configured",
			"set SUPABASE_URL, SUPABASE_KEY and SUPABASE_BUCKET to enable uploads", "")
		return
	}

	data, err := h.readUpload(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.UploadResponse{
			Error:   "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}

	if !h.optimizer.IsValidImage(data) {
		c.JSON(http.StatusBadRequest, models.UploadResponse{Error: "Invalid image file"})
		return
	}

	result := h.optimizeWithCache(c, data)

	key := storage.NewKey(h.keyExtension(result, fileHeader.Filename))
	url, err := h.storage.Upload(c.Request.Context(), result.Data, key,
		contentTypeFor(result.Format), h.config.Storage.CacheControl)
	if err != nil {
		if storage.IsBucketNotFound(err) {
			h.respondDegraded(c, "Storage bucket not found",
				"create the \""+h.storage.Bucket()+"\" bucket in your Supabase project", err.Error())
			return
		}
		h.respondDegraded(c, "Image upload failed", "", err.Error())
		return
	}

	h.logger.Info("Image uploaded",
		zap.String("key", key),
		zap.String("format", result.Format),
		zap.Float64("reduction_percent", result.ReductionPercent))

	c.Header("Cache-Control", h.config.Storage.CacheControl)
	c.JSON(http.StatusOK, models.UploadResponse{
		URL:          url,
		Path:         key,
		Success:      true,
		Optimization: result.Summary(),
	})
}

// HealthCheck reports storage, cache and queue state.
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())

	if q, ok := h.queue.(interface{ HealthCheck() string }); ok {
		services["queue"] = q.HealthCheck()
	} else {
		services["queue"] = "not configured"
	}

	overall := "healthy"
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			overall = "unhealthy"
			break
		}
	}

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.HealthCheck{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
	})
}
