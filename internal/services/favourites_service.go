package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// IFavouritesService stores each client's favourite venue codes. The set
// is client-scoped state with a fixed expiry, refreshed on every write; a
// client that stops visiting simply ages out.
type IFavouritesService interface {
	Get(ctx context.Context, clientID string) ([]string, error)
	Put(ctx context.Context, clientID string, codes []string) error
}

// favouritesService implements IFavouritesService on Redis.
type favouritesService struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFavouritesService creates a favourites service with the given expiry.
func NewFavouritesService(rdb *redis.Client, ttl time.Duration) IFavouritesService {
	return &favouritesService{rdb: rdb, ttl: ttl}
}

func favouritesKey(clientID string) string {
	return "favourites:" + clientID
}

// Get returns the client's favourite venue codes. A missing key means an
// empty set. A corrupted payload is treated as an empty set as well: the
// parse failure is logged, never propagated to the caller.
func (s *favouritesService) Get(ctx context.Context, clientID string) ([]string, error) {
	payload, err := s.rdb.Get(ctx, favouritesKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favourites for client %s: %w", clientID, err)
	}
	return DecodeFavourites(clientID, payload), nil
}

// Put replaces the client's favourite set and refreshes its expiry.
func (s *favouritesService) Put(ctx context.Context, clientID string, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	payload, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("failed to encode favourites: %w", err)
	}
	if err := s.rdb.Set(ctx, favouritesKey(clientID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store favourites for client %s: %w", clientID, err)
	}
	return nil
}

// DecodeFavourites parses a stored favourites payload (a JSON array of
// venue code strings). Corruption degrades to an empty set.
func DecodeFavourites(clientID, payload string) []string {
	var codes []string
	if err := json.Unmarshal([]byte(payload), &codes); err != nil {
		log.Printf("Corrupted favourites payload for client %s, resetting to empty: %v", clientID, err)
		return []string{}
	}
	if codes == nil {
		codes = []string{}
	}
	return codes
}
