// Package store owns the in-memory card collection and mirrors every
// mutation to durable storage as one whole-collection snapshot.
package store

import (
	"log"
	"strings"
	"sync"

	"github.com/codyseavey/footy-cards/backend/internal/metrics"
	"github.com/codyseavey/footy-cards/backend/internal/models"
)

// FilterAll selects every card regardless of rarity tier.
const FilterAll = "ALL"

// Persister is the durable storage collaborator. Load reports absence
// instead of failing; corrupt stored data counts as absent.
type Persister interface {
	Save(cards []models.PlayerCard) error
	Load() (cards []models.PlayerCard, ok bool)
}

// Collection is the ordered card list, newest first. All mutations rewrite
// the full snapshot through the persister; cards are never updated in place
// except for the single-field image override.
type Collection struct {
	mu      sync.RWMutex
	cards   []models.PlayerCard
	persist Persister
}

// NewCollection loads the persisted snapshot, starting empty when none is
// available.
func NewCollection(persist Persister) *Collection {
	c := &Collection{persist: persist}
	if cards, ok := persist.Load(); ok {
		c.cards = cards
	}
	c.updateMetrics()
	return c
}

// Add prepends a card and persists the snapshot.
func (c *Collection) Add(card models.PlayerCard) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cards = append([]models.PlayerCard{card}, c.cards...)
	c.save()
}

// Remove deletes the card with the given id. Absent ids are a no-op, not an
// error.
func (c *Collection) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, card := range c.cards {
		if card.ID == id {
			c.cards = append(c.cards[:i], c.cards[i+1:]...)
			c.save()
			return
		}
	}
}

// ReplaceImage swaps the displayed portrait for the card with the given id,
// the only in-place field mutation the collection allows. Returns the
// updated card, or ok=false when the id is unknown (a no-op).
func (c *Collection) ReplaceImage(id, newURL string) (models.PlayerCard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.cards {
		if c.cards[i].ID == id {
			c.cards[i].ImageURL = newURL
			c.save()
			return c.cards[i], true
		}
	}
	return models.PlayerCard{}, false
}

// Get returns the card with the given id.
func (c *Collection) Get(id string) (models.PlayerCard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, card := range c.cards {
		if card.ID == id {
			return card, true
		}
	}
	return models.PlayerCard{}, false
}

// All returns the full collection in insertion order, newest first.
func (c *Collection) All() []models.PlayerCard {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.PlayerCard, len(c.cards))
	copy(out, c.cards)
	return out
}

// Filter returns the cards whose rarity matches the requested tier,
// case-insensitively, preserving order. FilterAll returns everything.
func (c *Collection) Filter(tier string) []models.PlayerCard {
	if strings.EqualFold(tier, FilterAll) {
		return c.All()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.PlayerCard, 0, len(c.cards))
	for _, card := range c.cards {
		if strings.EqualFold(string(card.Rarity), tier) {
			out = append(out, card)
		}
	}
	return out
}

// TotalValue sums market value over the full collection.
func (c *Collection) TotalValue() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0.0
	for _, card := range c.cards {
		total += card.MarketValue
	}
	return total
}

// Len returns the number of cards in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cards)
}

// save persists the full snapshot. Persistence failures are logged, never
// surfaced: the in-memory collection stays authoritative for this process.
// Callers must hold the write lock.
func (c *Collection) save() {
	if err := c.persist.Save(c.cards); err != nil {
		log.Printf("Collection: failed to persist snapshot: %v", err)
	}
	c.updateMetricsLocked()
}

func (c *Collection) updateMetrics() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.updateMetricsLocked()
}

func (c *Collection) updateMetricsLocked() {
	metrics.CollectionCardsTotal.Set(float64(len(c.cards)))

	total := 0.0
	byRarity := make(map[models.Rarity]int, len(models.AllRarities))
	for _, card := range c.cards {
		total += card.MarketValue
		byRarity[card.Rarity]++
	}
	metrics.CollectionValueEUR.Set(total)
	for _, r := range models.AllRarities {
		metrics.CollectionCardsByRarity.WithLabelValues(string(r)).Set(float64(byRarity[r]))
	}
}
