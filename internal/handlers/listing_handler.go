package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/propstack/property-media/internal/models"
	"github.com/propstack/property-media/internal/repository"
	"github.com/propstack/property-media/internal/services/queue"
	"github.com/propstack/property-media/internal/services/storage"
	"go.uber.org/zap"
)

// ListingStore is the slice of the listings repository these flows touch.
type ListingStore interface {
	GetImages(ctx context.Context, id int64) ([]string, error)
	UpdateImages(ctx context.Context, id int64, images []string) error
	Delete(ctx context.Context, id int64) ([]string, error)
}

// ImageCleaner is the reconciler surface, satisfied by the storage service.
type ImageCleaner interface {
	DeleteImages(ctx context.Context, urls []string) *models.CleanupResult
}

type ListingHandler struct {
	listings ListingStore
	cleaner  ImageCleaner
	queue    queue.Publisher
	logger   *zap.Logger
}

func NewListingHandler(listings ListingStore, cleaner ImageCleaner, publisher queue.Publisher, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		cleaner:  cleaner,
		queue:    publisher,
		logger:   logger,
	}
}

// UpdateListing persists the new image list and then reconciles storage for
// the URLs the edit dropped. The row update is authoritative; cleanup is
// best-effort and only reported.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	id, err := h.parseListingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id"})
		return
	}

	var req models.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Images == nil {
		// Image list untouched, nothing to reconcile.
		c.JSON(http.StatusOK, models.ListingMutationResponse{Success: true})
		return
	}

	previous, err := h.listings.GetImages(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, id, err, "read listing")
		return
	}

	if err := h.listings.UpdateImages(c.Request.Context(), id, req.Images); err != nil {
		h.respondRepoError(c, id, err, "update listing")
		return
	}

	removed := storage.RemovedImages(previous, req.Images)
	h.respondWithCleanup(c, id, removed)
}

// DeleteListing removes the row first, then reconciles the full image set.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	id, err := h.parseListingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id"})
		return
	}

	images, err := h.listings.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, id, err, "delete listing")
		return
	}

	h.respondWithCleanup(c, id, images)
}

func (h *ListingHandler) respondWithCleanup(c *gin.Context, id int64, removed []string) {
	if len(removed) == 0 {
		c.JSON(http.StatusOK, models.ListingMutationResponse{Success: true})
		return
	}

	result := h.cleaner.DeleteImages(c.Request.Context(), removed)

	// A cleanup with zero successes goes to the retry queue; the orphaned
	// objects get another chance out-of-band.
	if result.SuccessCount == 0 && result.ErrorCount > 0 {
		job := &queue.CleanupJob{ListingID: id, URLs: removed}
		if err := h.queue.PublishCleanup(c.Request.Context(), job); err != nil {
			h.logger.Error("Failed to queue cleanup retry",
				zap.Int64("listing_id", id),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, models.ListingMutationResponse{
		Success:       true,
		ImagesDeleted: result.SuccessCount,
		ImageErrors:   result.Errors,
	})
}

func (h *ListingHandler) parseListingID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *ListingHandler) respondRepoError(c *gin.Context, id int64, err error, op string) {
	if errors.Is(err, repository.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	h.logger.Error("Listing mutation failed",
		zap.Int64("listing_id", id),
		zap.String("op", op),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
}
