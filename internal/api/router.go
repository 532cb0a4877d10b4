package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suddernpy/resq/internal/api/handlers"
	"github.com/suddernpy/resq/internal/api/middleware"
	"github.com/suddernpy/resq/internal/config"
	"github.com/suddernpy/resq/internal/services"
	"github.com/suddernpy/resq/internal/storage"
	"github.com/suddernpy/resq/internal/store"
	"github.com/suddernpy/resq/internal/venues"
	"github.com/suddernpy/resq/internal/views"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(
	cfg *config.Config,
	st *store.ListingStore,
	dir *venues.Directory,
	projector *views.Projector,
	listingService services.IListingService,
	favouritesService services.IFavouritesService,
	imageStorage storage.IImageStorage,
) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	rescueHandler := handlers.NewRestRescueHandler(st, projector, listingService, favouritesService)
	venueHandler := handlers.NewRestVenueHandler(dir)
	favouritesHandler := handlers.NewRestFavouritesHandler(favouritesService)
	imageHandler := handlers.NewRestImageHandler(imageStorage)

	v1 := r.Group("/v1")
	{
		// Read surfaces (served from the in-memory sync engine)
		v1.GET("/rescues", rescueHandler.ListRescues)
		v1.GET("/rescues/map", rescueHandler.MapRescues)
		v1.GET("/rescues/nearby", rescueHandler.NearbyRescues)
		v1.GET("/rescue/:id", rescueHandler.GetRescueByID)

		// Write surfaces (land in MongoDB, echo back via the change feed)
		v1.POST("/rescues", rescueHandler.CreateRescue)
		v1.POST("/rescue/:id/clear", rescueHandler.ClearRescue)

		// Venue directory
		v1.GET("/venues", venueHandler.ListVenues)

		// Favourites
		v1.GET("/favourites", favouritesHandler.GetFavourites)
		v1.PUT("/favourites", favouritesHandler.PutFavourites)

		// Image upload plumbing
		v1.POST("/images", imageHandler.CreateUploadURL)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}

	return r
}
