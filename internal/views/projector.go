package views

import (
	"sort"
	"time"

	"github.com/suddernpy/resq/internal/derive"
	"github.com/suddernpy/resq/internal/models"
	"github.com/suddernpy/resq/internal/store"
	"github.com/suddernpy/resq/internal/venues"
)

// ImageResolver turns a stored image ref into a URL the client can load.
// An empty ref resolves to a placeholder.
type ImageResolver interface {
	ResolveImageURL(ref string) string
}

// Marker is a map-surface projection of one listing: position plus the
// hover summary.
type Marker struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Venue      string  `json:"venue"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	TimeLeft   string  `json:"time_left"`
	EndingSoon bool    `json:"ending_soon"`
}

// Card is the list-surface (and detail-panel) projection of one listing.
type Card struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	AIGenerated    bool         `json:"ai_generated"` // empty description => system-generated placeholder
	Venue          string       `json:"venue"`
	VenueCode      string       `json:"venue_code"`
	VenueResolved  bool         `json:"venue_resolved"`
	Tags           []string     `json:"tags"`
	ImageURL       string       `json:"image_url"`
	TimeLeft       string       `json:"time_left"`
	State          derive.State `json:"state"`
	AvailableUntil string       `json:"available_until,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Projector sorts and filters the listing store's contents for the two
// consumer surfaces. All reads recompute derived state against the
// injected clock, so a projection can never show frozen remaining time.
type Projector struct {
	store  *store.ListingStore
	dir    *venues.Directory
	images ImageResolver
	now    func() time.Time
}

// NewProjector wires a projector over the store and venue directory. The
// clock is injected so tests can pin the current instant; pass nil for
// time.Now.
func NewProjector(st *store.ListingStore, dir *venues.Directory, images ImageResolver, now func() time.Time) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{store: st, dir: dir, images: images, now: now}
}

// MapMarkers projects the currently visible listings onto the map. A
// listing appears only if its location code resolves to venue coordinates
// and it is neither expired nor cleared.
func (p *Projector) MapMarkers() []Marker {
	now := p.now()
	markers := []Marker{}
	for _, rec := range p.store.All() {
		st := derive.Derive(rec.ExpiresAt, now)
		if rec.Cleared || st.Expired {
			continue
		}
		venue, ok := p.dir.Resolve(rec.LocationCode)
		if !ok {
			continue // list-view-only
		}
		markers = append(markers, Marker{
			ID:         rec.ID,
			Name:       rec.Title,
			Venue:      venue.Name,
			Latitude:   venue.Latitude,
			Longitude:  venue.Longitude,
			TimeLeft:   derive.FormatTimeLeft(st),
			EndingSoon: st.EndingSoon,
		})
	}
	return markers
}

// ListCards projects the currently visible listings as sorted cards:
// soonest-expiring first, ties broken by creation time, listings with no
// declared expiry after all others. A listing with an unresolvable
// location code stays in the list, flagged unresolved.
func (p *Projector) ListCards() []Card {
	now := p.now()
	cards := []Card{}
	for _, rec := range p.store.All() {
		st := derive.Derive(rec.ExpiresAt, now)
		if rec.Cleared || st.Expired {
			continue
		}
		cards = append(cards, p.card(rec, st))
	}
	sortCards(cards)
	return cards
}

// Nearby filters the list projection down to the client's favourite
// venue codes. Membership is by location code equality, not geographic
// distance.
func (p *Projector) Nearby(favourites []string) []Card {
	fav := make(map[string]bool, len(favourites))
	for _, code := range favourites {
		fav[code] = true
	}
	cards := []Card{}
	for _, c := range p.ListCards() {
		if fav[c.VenueCode] {
			cards = append(cards, c)
		}
	}
	return cards
}

// Detail projects a single listing for the detail panel. ok is false when
// the id is unknown or the listing is no longer visible.
func (p *Projector) Detail(id string) (Card, bool) {
	rec, ok := p.store.Get(id)
	if !ok {
		return Card{}, false
	}
	st := derive.Derive(rec.ExpiresAt, p.now())
	if rec.Cleared || st.Expired {
		return Card{}, false
	}
	return p.card(rec, st), true
}

// card is the single boundary adapter from the canonical listing shape to
// the presentation shape. Field adaptation happens here and nowhere else.
func (p *Projector) card(rec models.Listing, st derive.State) Card {
	c := Card{
		ID:             rec.ID,
		Name:           rec.Title,
		Description:    rec.Description,
		AIGenerated:    rec.Description == "",
		VenueCode:      rec.LocationCode,
		Tags:           rec.DietaryTags,
		ImageURL:       p.images.ResolveImageURL(rec.ImageRef),
		TimeLeft:       derive.FormatTimeLeft(st),
		State:          st,
		AvailableUntil: derive.FormatAvailableUntil(rec.ExpiresAt),
		CreatedAt:      rec.CreatedAt,
	}
	if venue, ok := p.dir.Resolve(rec.LocationCode); ok {
		c.Venue = venue.Name
		c.VenueResolved = true
	} else {
		c.Venue = rec.LocationCode
	}
	return c
}

func sortCards(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i].State.TimeLeftMinutes, cards[j].State.TimeLeftMinutes
		switch {
		case a == nil && b == nil:
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		case a == nil:
			return false // no declared expiry sorts last
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
	})
}
