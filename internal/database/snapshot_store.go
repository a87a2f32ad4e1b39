package database

import (
	"encoding/json"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/footy-cards/backend/internal/models"
)

// SnapshotStore persists the collection as one JSON snapshot row in SQLite.
// It satisfies the store.Persister contract: Load never fails, it just
// reports whether a usable snapshot exists.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore creates a snapshot store backed by the given database.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save rewrites the full collection snapshot.
func (s *SnapshotStore) Save(cards []models.PlayerCard) error {
	data, err := json.Marshal(cards)
	if err != nil {
		return err
	}

	snapshot := models.CollectionSnapshot{
		Key:  models.CollectionSnapshotKey,
		Data: data,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snapshot).Error
}

// Load reads the stored snapshot. A missing or unreadable snapshot is
// reported as absent so the caller starts from an empty collection.
func (s *SnapshotStore) Load() ([]models.PlayerCard, bool) {
	var snapshot models.CollectionSnapshot
	err := s.db.First(&snapshot, "key = ?", models.CollectionSnapshotKey).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Snapshot store: failed to read snapshot: %v", err)
		}
		return nil, false
	}

	var cards []models.PlayerCard
	if err := json.Unmarshal(snapshot.Data, &cards); err != nil {
		log.Printf("Snapshot store: discarding corrupt snapshot: %v", err)
		return nil, false
	}

	return cards, true
}
