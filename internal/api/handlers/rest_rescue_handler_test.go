package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suddernpy/resq/internal/api/handlers"
	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/store"
	"github.com/suddernpy/resq/internal/venues"
	"github.com/suddernpy/resq/internal/views"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func expiring(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func seededHandler(records ...models.Listing) (*handlers.RestRescueHandler, *MockFavouritesService, *store.ListingStore) {
	st := store.New()
	st.Seed(records)
	projector := views.NewProjector(st, venues.NewDirectory(), fakeImages{}, func() time.Time { return testNow })
	favourites := new(MockFavouritesService)
	h := handlers.NewRestRescueHandler(st, projector, new(MockListingService), favourites)
	return h, favourites, st
}

// --- Tests ---

func TestRestRescueHandler_ListRescues_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := seededHandler(models.Listing{
		ID:           "1",
		Title:        "Beehoon",
		Description:  "Fresh vegetarian beehoon",
		LocationCode: "S16",
		CreatedAt:    testNow.Add(-time.Hour),
		ExpiresAt:    expiring(45 * time.Minute),
	})

	r := gin.New()
	r.GET("/v1/rescues", h.ListRescues)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/rescues", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []views.Card `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	require.NoError(t, err)
	require.Len(t, respBody.Data, 1)
	assert.Equal(t, "Beehoon", respBody.Data[0].Name)
	assert.Equal(t, "45 mins", respBody.Data[0].TimeLeft)
}

func TestRestRescueHandler_ListRescues_UnavailableBeforeSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New() // never seeded
	projector := views.NewProjector(st, venues.NewDirectory(), fakeImages{}, func() time.Time { return testNow })
	h := handlers.NewRestRescueHandler(st, projector, new(MockListingService), new(MockFavouritesService))

	r := gin.New()
	r.GET("/v1/rescues", h.ListRescues)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/rescues", nil)
	r.ServeHTTP(w, req)

	// A failed/pending snapshot is not the same as an empty list
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRestRescueHandler_MapRescues_ExcludesUnresolvable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := seededHandler(
		models.Listing{ID: "1", Title: "Mapped", LocationCode: "S16", CreatedAt: testNow, ExpiresAt: expiring(30 * time.Minute)},
		models.Listing{ID: "2", Title: "Lost", LocationCode: "B99", CreatedAt: testNow, ExpiresAt: expiring(30 * time.Minute)},
	)

	r := gin.New()
	r.GET("/v1/rescues/map", h.MapRescues)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/rescues/map", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []views.Marker `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	require.Len(t, respBody.Data, 1)
	assert.Equal(t, "1", respBody.Data[0].ID)
}

func TestRestRescueHandler_NearbyRescues_FiltersByFavourites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, favourites, _ := seededHandler(
		models.Listing{ID: "1", Title: "At S16", LocationCode: "S16", CreatedAt: testNow, ExpiresAt: expiring(30 * time.Minute)},
		models.Listing{ID: "2", Title: "At Com1", LocationCode: "Com1", CreatedAt: testNow, ExpiresAt: expiring(30 * time.Minute)},
	)
	favourites.On("Get", mock.Anything, "client-abc").Return([]string{"S16"}, nil)

	r := gin.New()
	r.GET("/v1/rescues/nearby", h.NearbyRescues)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/rescues/nearby", nil)
	req.Header.Set("X-Client-ID", "client-abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []views.Card `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	require.Len(t, respBody.Data, 1)
	assert.Equal(t, "1", respBody.Data[0].ID)
	favourites.AssertExpectations(t)
}

func TestRestRescueHandler_GetRescueByID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := seededHandler(models.Listing{
		ID:           "1",
		Title:        "Noodles",
		LocationCode: "Utown",
		CreatedAt:    testNow,
		ExpiresAt:    expiring(30 * time.Minute),
	})

	r := gin.New()
	r.GET("/v1/rescue/:id", h.GetRescueByID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/rescue/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var card views.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	assert.Equal(t, "Noodles", card.Name)
	assert.True(t, card.AIGenerated, "empty description must be flagged")

	// Unknown id
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/rescue/nope", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestRescueHandler_CreateRescue_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New()
	st.Seed(nil)
	projector := views.NewProjector(st, venues.NewDirectory(), fakeImages{}, func() time.Time { return testNow })
	mockListingSvc := new(MockListingService)
	h := handlers.NewRestRescueHandler(st, projector, mockListingSvc, new(MockFavouritesService))

	created := &models.Listing{ID: "new-id", Title: "Pasta", LocationCode: "S16"}
	mockListingSvc.On("CreateRescue", mock.Anything, "Pasta", "Creamy mushroom pasta", "S16", "", []string{"Vegetarian"}, mock.Anything, models.SourceApp).
		Return(created, nil)

	r := gin.New()
	r.POST("/v1/rescues", h.CreateRescue)

	body := `{"name":"Pasta","description":"Creamy mushroom pasta","location":"S16","dietary_tags":["Vegetarian"],"available_until":"2025-03-14T18:00:00Z"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/rescues", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "new-id", respBody.ID)
	mockListingSvc.AssertExpectations(t)
}

func TestRestRescueHandler_CreateRescue_BadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := seededHandler()

	r := gin.New()
	r.POST("/v1/rescues", h.CreateRescue)

	// Missing the required name field
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/rescues", strings.NewReader(`{"location":"S16"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unparseable expiry
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/v1/rescues", strings.NewReader(`{"name":"x","location":"S16","available_until":"5pm"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestRescueHandler_ClearRescue_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New()
	st.Seed(nil)
	projector := views.NewProjector(st, venues.NewDirectory(), fakeImages{}, func() time.Time { return testNow })
	mockListingSvc := new(MockListingService)
	h := handlers.NewRestRescueHandler(st, projector, mockListingSvc, new(MockFavouritesService))

	mockListingSvc.On("ClearRescue", mock.Anything, "ghost", "").Return(mongo.ErrNoDocuments)

	r := gin.New()
	r.POST("/v1/rescue/:id/clear", h.ClearRescue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/rescue/ghost/clear", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockListingSvc.AssertExpectations(t)
}
