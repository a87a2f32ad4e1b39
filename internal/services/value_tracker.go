package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/codyseavey/footy-cards/backend/internal/database"
	"github.com/codyseavey/footy-cards/backend/internal/models"
	"github.com/codyseavey/footy-cards/backend/internal/store"
)

// ValueTracker records the collection's total market value once per day so
// the frontend can chart treasury growth over time.
type ValueTracker struct {
	collection    *store.Collection
	clock         clockwork.Clock
	mu            sync.Mutex
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
}

// NewValueTracker creates a value tracker over the given collection.
func NewValueTracker(collection *store.Collection, clock clockwork.Clock) *ValueTracker {
	return &ValueTracker{
		collection:    collection,
		clock:         clock,
		snapshotHour:  23, // Default: 11 PM
		checkInterval: 15 * time.Minute,
	}
}

// Start begins the background snapshot worker
func (t *ValueTracker) Start(ctx context.Context) {
	log.Println("Value tracker started: will record daily collection value")

	t.checkAndSnapshot()

	ticker := t.clock.NewTicker(t.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Value tracker stopping...")
			return
		case <-ticker.Chan():
			t.checkAndSnapshot()
		}
	}
}

// checkAndSnapshot takes a snapshot when none exists for today and the
// configured hour has passed.
func (t *ValueTracker) checkAndSnapshot() {
	now := t.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if t.hasSnapshotForDate(today) {
		return
	}

	if now.Hour() >= t.snapshotHour {
		if err := t.TakeSnapshot(); err != nil {
			log.Printf("Value tracker: failed to take snapshot: %v", err)
		}
	}
}

// hasSnapshotForDate checks if a snapshot exists for the given date
func (t *ValueTracker) hasSnapshotForDate(date time.Time) bool {
	db := database.GetDB()

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int64
	db.Model(&models.CollectionValueSnapshot{}).
		Where("snapshot_date >= ? AND snapshot_date < ?", startOfDay, endOfDay).
		Count(&count)

	return count > 0
}

// TakeSnapshot records the current collection value
func (t *ValueTracker) TakeSnapshot() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	db := database.GetDB()
	now := t.clock.Now()
	snapshotDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	snapshot := models.CollectionValueSnapshot{
		SnapshotDate: snapshotDate,
		TotalCards:   t.collection.Len(),
		TotalValue:   t.collection.TotalValue(),
		CreatedAt:    now,
	}

	// Use upsert to handle duplicate dates
	result := db.Where("DATE(snapshot_date) = DATE(?)", snapshotDate).
		Assign(models.CollectionValueSnapshot{
			TotalCards: snapshot.TotalCards,
			TotalValue: snapshot.TotalValue,
		}).
		FirstOrCreate(&snapshot)

	if result.Error != nil {
		return result.Error
	}

	log.Printf("Value tracker: recorded snapshot for %s (value: %.2f, cards: %d)",
		snapshotDate.Format("2006-01-02"), snapshot.TotalValue, snapshot.TotalCards)

	return nil
}

// GetHistory returns value snapshots for the requested period: "week",
// "month", "year" or "all".
func (t *ValueTracker) GetHistory(period string) ([]models.CollectionValueSnapshot, error) {
	db := database.GetDB()

	query := db.Model(&models.CollectionValueSnapshot{}).Order("snapshot_date ASC")

	now := t.clock.Now()
	switch period {
	case "week":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, 0, -7))
	case "month":
		query = query.Where("snapshot_date >= ?", now.AddDate(0, -1, 0))
	case "year":
		query = query.Where("snapshot_date >= ?", now.AddDate(-1, 0, 0))
	case "all":
		// No filter
	default:
		return nil, fmt.Errorf("unknown period %q", period)
	}

	var snapshots []models.CollectionValueSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}
