package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suddernpy/resq/internal/services"
)

// clientIDCookie carries the anonymous client identity that scopes the
// favourites set. Minted on first contact; no authentication involved.
const clientIDCookie = "resq_client"

// ClientID returns the caller's client id, preferring the X-Client-ID
// header (the SPA), falling back to the cookie, minting one when absent.
func ClientID(c *gin.Context) string {
	if id := c.GetHeader("X-Client-ID"); id != "" {
		return id
	}
	if id, err := c.Cookie(clientIDCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(clientIDCookie, id, 7*24*3600, "/", "", false, true)
	return id
}

// RestFavouritesHandler serves the client-scoped favourite venue set.
type RestFavouritesHandler struct {
	favourites services.IFavouritesService
}

// NewRestFavouritesHandler creates a new RestFavouritesHandler.
func NewRestFavouritesHandler(favourites services.IFavouritesService) *RestFavouritesHandler {
	return &RestFavouritesHandler{favourites: favourites}
}

// GetFavourites handles GET /v1/favourites
func (h *RestFavouritesHandler) GetFavourites(c *gin.Context) {
	codes, err := h.favourites.Get(c.Request.Context(), ClientID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favourites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": codes})
}

// PutFavourites handles PUT /v1/favourites
func (h *RestFavouritesHandler) PutFavourites(c *gin.Context) {
	var req struct {
		Codes []string `json:"codes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if err := h.favourites.Put(c.Request.Context(), ClientID(c), req.Codes); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store favourites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": req.Codes})
}
