package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suddernpy/resq/internal/storage"
	"github.com/suddernpy/resq/internal/venues"
)

// RestVenueHandler serves the static venue directory.
type RestVenueHandler struct {
	dir *venues.Directory
}

// NewRestVenueHandler creates a new RestVenueHandler.
func NewRestVenueHandler(dir *venues.Directory) *RestVenueHandler {
	return &RestVenueHandler{dir: dir}
}

// ListVenues handles GET /v1/venues
func (h *RestVenueHandler) ListVenues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.dir.All()})
}

// RestImageHandler hands out presigned upload URLs for food photos.
type RestImageHandler struct {
	images storage.IImageStorage
}

// NewRestImageHandler creates a new RestImageHandler.
func NewRestImageHandler(images storage.IImageStorage) *RestImageHandler {
	return &RestImageHandler{images: images}
}

// CreateUploadURL handles POST /v1/images
func (h *RestImageHandler) CreateUploadURL(c *gin.Context) {
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	url, key, err := h.images.GeneratePresignedPutURL(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": url, "image": key})
}
