package models

import (
	"strings"
	"time"
)

// Source channel values identifying where a rescue listing was submitted
// from. Informational only; never affects visibility.
const (
	SourceApp      = "app"
	SourceTelegram = "telegram"
)

// DietaryTags is the closed vocabulary of dietary tags a listing may carry.
var DietaryTags = []string{"Halal", "Beef", "Vegetarian", "Pork"}

// Listing represents a single food rescue post. This is the one canonical
// shape used by every component; adapting it for a consumer surface happens
// in the views package, never per call site.
type Listing struct {
	ID           string     `bson:"_id" json:"id"`
	Title        string     `bson:"title" json:"title"`
	Description  string     `bson:"description" json:"description"` // empty => system-generated, flagged downstream
	LocationCode string     `bson:"location_code" json:"location_code"`
	ImageRef     string     `bson:"image,omitempty" json:"image,omitempty"` // S3 key
	DietaryTags  []string   `bson:"dietary_tags,omitempty" json:"dietary_tags,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"` // nil => no declared expiry
	Cleared      bool       `bson:"cleared" json:"cleared"`
	ClearedBy    string     `bson:"cleared_by,omitempty" json:"cleared_by,omitempty"`
	ClearedAt    *time.Time `bson:"cleared_at,omitempty" json:"cleared_at,omitempty"`
	Source       string     `bson:"source,omitempty" json:"source,omitempty"`
}

// NormalizeDietaryTags maps raw tag input onto the closed vocabulary.
// Matching is case-insensitive, duplicates collapse, unknown tags are
// dropped, and the canonical order of DietaryTags is preserved.
func NormalizeDietaryTags(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		seen[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	var tags []string
	for _, canonical := range DietaryTags {
		if seen[strings.ToLower(canonical)] {
			tags = append(tags, canonical)
		}
	}
	return tags
}
