package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suddernpy/resq/internal/config"
	"github.com/suddernpy/resq/internal/db"
	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/venues"
)

// ErrUnknownVenue is returned when a rescue is created against a location
// code the venue directory cannot resolve.
var ErrUnknownVenue = errors.New("unknown venue code")

// IListingService defines the write-side operations on rescue listings.
// Reads never go through here: the in-memory listing store, fed by the
// snapshot loader and the change feed, is the source of truth for the UI.
// Writes land in MongoDB and echo back into the store through the feed.
type IListingService interface {
	CreateRescue(ctx context.Context, title, description, locationCode, imageRef string, tags []string, availableUntil *time.Time, source string) (*models.Listing, error)
	ClearRescue(ctx context.Context, listingID, clearedBy string) error
}

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
	dir *venues.Directory
}

// NewListingService creates a new ListingService.
func NewListingService(database *mongo.Database, cfg *config.Config, dir *venues.Directory) IListingService {
	return &listingService{db: database, cfg: cfg, dir: dir}
}

// CreateRescue inserts a new rescue listing. The location code must
// resolve against the venue directory; dietary tags are normalized onto
// the closed vocabulary. An empty description is stored as-is and flagged
// as system-generated by the projection layer.
func (s *listingService) CreateRescue(ctx context.Context, title, description, locationCode, imageRef string, tags []string, availableUntil *time.Time, source string) (*models.Listing, error) {
	if title == "" {
		return nil, fmt.Errorf("rescue title is required")
	}
	venue, ok := s.dir.Resolve(locationCode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVenue, locationCode)
	}
	if source == "" {
		source = models.SourceApp
	}

	collection := s.db.Collection(s.cfg.ListingsCollection)
	now := time.Now().UTC()

	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			ID:           uuid.NewString(),
			Title:        title,
			Description:  description,
			LocationCode: venue.Code, // canonical code, not the alias used on submit
			ImageRef:     imageRef,
			DietaryTags:  models.NormalizeDietaryTags(tags),
			CreatedAt:    now,
			ExpiresAt:    availableUntil,
			Source:       source,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert new rescue listing after multiple retries: %w", err)
	}

	return newListing, nil
}

// ClearRescue marks a listing as explicitly retired, independent of its
// expiry. The update propagates to every connected client through the
// change feed; clearing an already-cleared listing is rejected.
func (s *listingService) ClearRescue(ctx context.Context, listingID, clearedBy string) error {
	collection := s.db.Collection(s.cfg.ListingsCollection)
	now := time.Now().UTC()

	filter := bson.M{
		"_id":     listingID,
		"cleared": false,
	}
	update := bson.M{
		"$set": bson.M{
			"cleared":    true,
			"cleared_by": clearedBy,
			"cleared_at": now,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error clearing rescue %s: %w", listingID, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish not-found from already-cleared for the caller
		var listing models.Listing
		checkErr := collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
		if errors.Is(checkErr, mongo.ErrNoDocuments) {
			return mongo.ErrNoDocuments
		}
		if checkErr == nil && listing.Cleared {
			return fmt.Errorf("rescue %s is already cleared", listingID)
		}
		return fmt.Errorf("rescue %s cannot be cleared", listingID)
	}

	return nil
}
