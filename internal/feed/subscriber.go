package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/store"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// changeEvent is the subset of a MongoDB change stream document the
// subscriber cares about.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument *models.Listing `bson:"fullDocument"`
}

// Subscriber maintains a long-lived change stream on the listings
// collection and folds row-level change notifications into the listing
// store: inserts, updates and replaces upsert via Merge, deletes go
// through Remove. The stream is watched with fullDocument lookup so
// update events carry the post-image of the row.
//
// If the stream drops, the subscriber reconnects with capped exponential
// backoff, resuming from the last seen resume token. A single malformed
// event is logged and skipped; it never terminates the subscription.
type Subscriber struct {
	coll  *mongo.Collection
	store *store.ListingStore

	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	resumeToken bson.Raw
}

// NewSubscriber creates a subscriber feeding the given store from the
// given collection. Call Start to begin receiving events.
func NewSubscriber(coll *mongo.Collection, st *store.ListingStore) *Subscriber {
	return &Subscriber{
		coll:  coll,
		store: st,
		done:  make(chan struct{}),
	}
}

// Start launches the subscription loop. It returns immediately; the loop
// runs until Close is called or the parent context is cancelled.
func (s *Subscriber) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

// Close cancels the subscription and waits for the loop to exit. It is
// safe to call more than once; every call after the first is a no-op.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		if s.cancel == nil {
			return // never started
		}
		s.cancel()
		<-s.done
	})
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)

	backoff := initialBackoff
	for {
		err := s.watch(ctx)
		if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			log.Println("Change feed subscriber stopped.")
			return
		}

		log.Printf("Change feed connection lost: %v. Reconnecting in %v...", err, backoff)
		select {
		case <-ctx.Done():
			log.Println("Change feed subscriber stopped.")
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

// watch opens one change stream and pumps events until it fails or the
// context is cancelled. A nil return means clean shutdown.
func (s *Subscriber) watch(ctx context.Context) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if s.resumeToken != nil {
		opts.SetResumeAfter(s.resumeToken)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
			}},
		}}},
	}

	cs, err := s.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		// A stale resume token (e.g. oplog rolled over) makes Watch fail
		// forever; drop it and fall back to a fresh stream.
		if s.resumeToken != nil {
			log.Printf("Change feed failed to resume, restarting from now: %v", err)
			s.resumeToken = nil
		}
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer cs.Close(context.Background())

	log.Println("Change feed subscription established.")

	for cs.Next(ctx) {
		var ev changeEvent
		if err := cs.Decode(&ev); err != nil {
			log.Printf("Skipping malformed change event: %v", err)
			continue
		}
		if err := apply(s.store, ev); err != nil {
			log.Printf("Skipping change event: %v", err)
		}
		s.resumeToken = cs.ResumeToken()
	}

	if err := cs.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream error: %w", err)
	}
	return nil
}

// apply folds one decoded change event into the store. Arrival order
// relative to the initial snapshot is not guaranteed; Merge's upsert
// idempotence resolves a notification beating the snapshot.
func apply(st *store.ListingStore, ev changeEvent) error {
	switch ev.OperationType {
	case "insert", "update", "replace":
		if ev.FullDocument == nil {
			// updateLookup returns no post-image when the row was deleted
			// between the update and the lookup; the delete event follows.
			return fmt.Errorf("%s event for %q has no full document", ev.OperationType, ev.DocumentKey.ID)
		}
		st.Merge(*ev.FullDocument)
	case "delete":
		st.Remove(ev.DocumentKey.ID)
	default:
		return fmt.Errorf("unhandled change event type %q", ev.OperationType)
	}
	return nil
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
