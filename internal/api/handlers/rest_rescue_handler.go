package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/services"
	"github.com/suddernpy/resq/internal/store"
	"github.com/suddernpy/resq/internal/views"
)

// RestRescueHandler serves the rescue listing surfaces. Reads come off
// the in-memory projector; writes go through the listing service and
// echo back via the change feed.
type RestRescueHandler struct {
	store          *store.ListingStore
	projector      *views.Projector
	listingService services.IListingService
	favourites     services.IFavouritesService
}

// NewRestRescueHandler creates a new RestRescueHandler.
func NewRestRescueHandler(st *store.ListingStore, projector *views.Projector, listingService services.IListingService, favourites services.IFavouritesService) *RestRescueHandler {
	return &RestRescueHandler{
		store:          st,
		projector:      projector,
		listingService: listingService,
		favourites:     favourites,
	}
}

// ready guards the read surfaces until the snapshot has seeded the store,
// so a failed snapshot is never indistinguishable from "no rescues yet".
func (h *RestRescueHandler) ready(c *gin.Context) bool {
	if h.store.Ready() {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Listings are still loading, try again shortly"})
	return false
}

// ListRescues handles GET /v1/rescues
func (h *RestRescueHandler) ListRescues(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.projector.ListCards()})
}

// MapRescues handles GET /v1/rescues/map
func (h *RestRescueHandler) MapRescues(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.projector.MapMarkers()})
}

// NearbyRescues handles GET /v1/rescues/nearby: the list projection
// intersected with the client's favourite venues.
func (h *RestRescueHandler) NearbyRescues(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	clientID := ClientID(c)
	codes, err := h.favourites.Get(c.Request.Context(), clientID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favourites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.projector.Nearby(codes)})
}

// GetRescueByID handles GET /v1/rescue/:id
func (h *RestRescueHandler) GetRescueByID(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	card, ok := h.projector.Detail(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rescue not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// createRescueRequest is the POST /v1/rescues payload.
type createRescueRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Location       string   `json:"location" binding:"required"`
	Image          string   `json:"image"`
	DietaryTags    []string `json:"dietary_tags"`
	AvailableUntil string   `json:"available_until"` // RFC 3339; empty means no declared expiry
}

// CreateRescue handles POST /v1/rescues
func (h *RestRescueHandler) CreateRescue(c *gin.Context) {
	var req createRescueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var availableUntil *time.Time
	if req.AvailableUntil != "" {
		t, err := time.Parse(time.RFC3339, req.AvailableUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid available_until, expected RFC 3339 timestamp"})
			return
		}
		availableUntil = &t
	}

	listing, err := h.listingService.CreateRescue(
		c.Request.Context(),
		req.Name,
		req.Description,
		req.Location,
		req.Image,
		req.DietaryTags,
		availableUntil,
		models.SourceApp,
	)
	if err != nil {
		if errors.Is(err, services.ErrUnknownVenue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown location code"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rescue"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// ClearRescue handles POST /v1/rescue/:id/clear
func (h *RestRescueHandler) ClearRescue(c *gin.Context) {
	var req struct {
		ClearedBy string `json:"cleared_by"`
	}
	_ = c.ShouldBindJSON(&req) // body optional

	err := h.listingService.ClearRescue(c.Request.Context(), c.Param("id"), req.ClearedBy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rescue not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusConflict, gin.H{"error": "Rescue could not be cleared"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
