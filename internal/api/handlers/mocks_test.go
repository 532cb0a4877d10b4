package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/suddernpy/resq/internal/models"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateRescue(ctx context.Context, title, description, locationCode, imageRef string, tags []string, availableUntil *time.Time, source string) (*models.Listing, error) {
	args := m.Called(ctx, title, description, locationCode, imageRef, tags, availableUntil, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) ClearRescue(ctx context.Context, listingID, clearedBy string) error {
	args := m.Called(ctx, listingID, clearedBy)
	return args.Error(0)
}

// MockFavouritesService
type MockFavouritesService struct {
	mock.Mock
}

func (m *MockFavouritesService) Get(ctx context.Context, clientID string) ([]string, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFavouritesService) Put(ctx context.Context, clientID string, codes []string) error {
	args := m.Called(ctx, clientID, codes)
	return args.Error(0)
}

// fakeImages keeps handler tests off S3.
type fakeImages struct{}

func (fakeImages) GeneratePresignedPutURL(ctx context.Context, filename, contentType string) (string, string, error) {
	return "https://s3.test/put", "rescues/" + filename, nil
}

func (fakeImages) ResolveImageURL(ref string) string {
	if ref == "" {
		return "/placeholder.svg"
	}
	return "https://img.test/" + ref
}
