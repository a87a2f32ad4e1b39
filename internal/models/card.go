package models

import (
	"time"
)

// PlayerStats holds the six scouted attributes, conventionally 0-99.
// Upstream data is trusted; the range is not enforced here.
type PlayerStats struct {
	Pace      int `json:"pace"`
	Shooting  int `json:"shooting"`
	Passing   int `json:"passing"`
	Dribbling int `json:"dribbling"`
	Defending int `json:"defending"`
	Physical  int `json:"physical"`
}

// DefaultStats is the all-50 baseline used when the scout report omits stats.
func DefaultStats() PlayerStats {
	return PlayerStats{Pace: 50, Shooting: 50, Passing: 50, Dribbling: 50, Defending: 50, Physical: 50}
}

// GroundingSource is a citation returned alongside scouted data.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// PlayerCard is one scouted player in the collection.
//
// A card is immutable after creation except for ImageURL, which may be
// replaced through the manual override endpoint. JSON field names match the
// snapshot schema the frontend reads.
type PlayerCard struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Nationality       string            `json:"nationality"`
	Club              string            `json:"club"`
	Position          string            `json:"position"`
	Stats             PlayerStats       `json:"stats"`
	Rarity            Rarity            `json:"rarity"`
	MarketValue       float64           `json:"marketValue"`
	ImageURL          string            `json:"imageUrl"`
	SuggestedImageURL string            `json:"suggestedImageUrl,omitempty"`
	Description       string            `json:"description"`
	Timestamp         time.Time         `json:"timestamp"`
	GroundingSources  []GroundingSource `json:"groundingSources,omitempty"`
}
