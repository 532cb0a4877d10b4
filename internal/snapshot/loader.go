package snapshot

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/store"
)

// Loader performs the one-shot bulk read that seeds the listing store
// before the change feed takes over.
type Loader struct {
	coll  *mongo.Collection
	store *store.ListingStore
}

// NewLoader creates a snapshot loader for the given collection and store.
func NewLoader(coll *mongo.Collection, st *store.ListingStore) *Loader {
	return &Loader{coll: coll, store: st}
}

// Load reads every listing ordered by creation time ascending and seeds
// the store. On error the store is left unseeded so the failure stays
// distinguishable from "no listings yet".
func (l *Loader) Load(ctx context.Context) error {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := l.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to query listings snapshot: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.Listing
	if err = cursor.All(ctx, &records); err != nil {
		return fmt.Errorf("failed to decode listings snapshot: %w", err)
	}

	l.store.Seed(records)
	return nil
}
