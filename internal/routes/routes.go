package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propstack/property-media/internal/handlers"
	"github.com/propstack/property-media/internal/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler   *handlers.ImageHandler
	listingHandler *handlers.ListingHandler
	logger         *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	listingHandler *handlers.ListingHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler:   imageHandler,
		listingHandler: listingHandler,
		logger:         logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)

		images := v1.Group("/images", middleware.AdminGate())
		{
			images.POST("", r.imageHandler.UploadImage)
		}

		if r.listingHandler != nil {
			listings := v1.Group("/listings", middleware.AdminGate())
			{
				listings.PUT("/:id", r.listingHandler.UpdateListing)
				listings.DELETE("/:id", r.listingHandler.DeleteListing)
			}
		}
	}

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Property media pipeline is running",
		})
	})

	return router
}
