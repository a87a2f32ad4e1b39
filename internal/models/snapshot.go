package models

import (
	"time"
)

// CollectionSnapshotKey is the well-known key the full collection is stored under.
const CollectionSnapshotKey = "collection"

// CollectionSnapshot is the single-row durable form of the collection: the
// whole card list serialized as one JSON blob, rewritten on every mutation.
type CollectionSnapshot struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Data      []byte    `json:"-" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CollectionValueSnapshot stores daily collection value for historical tracking
type CollectionValueSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate time.Time `json:"snapshot_date" gorm:"uniqueIndex;not null"`
	TotalCards   int       `json:"total_cards"`
	TotalValue   float64   `json:"total_value"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValueHistoryResponse is the API response for value history
type ValueHistoryResponse struct {
	Snapshots []CollectionValueSnapshot `json:"snapshots"`
	Period    string                    `json:"period"` // "week", "month", "year", "all"
}

// CollectionStats summarizes the collection for the sidebar counters.
type CollectionStats struct {
	TotalCards int     `json:"total_cards"`
	TotalValue float64 `json:"total_value"`
}
