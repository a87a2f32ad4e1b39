package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/footy-cards/backend/internal/models"
	"github.com/codyseavey/footy-cards/backend/internal/services"
	"github.com/codyseavey/footy-cards/backend/internal/store"
)

type UpdateImageRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}

type CollectionHandler struct {
	collection   *store.Collection
	valueTracker *services.ValueTracker
}

func NewCollectionHandler(collection *store.Collection, valueTracker *services.ValueTracker) *CollectionHandler {
	return &CollectionHandler{
		collection:   collection,
		valueTracker: valueTracker,
	}
}

// GetCollection lists cards newest-first, optionally filtered by rarity tier.
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	tier := c.DefaultQuery("rarity", store.FilterAll)
	c.JSON(http.StatusOK, h.collection.Filter(tier))
}

// DeleteCard removes a card by id. Deleting an unknown id is not an error.
func (h *CollectionHandler) DeleteCard(c *gin.Context) {
	h.collection.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// UpdateImage replaces a card's displayed portrait, the only mutation a card
// supports after creation. The URL goes through the normalizer first.
func (h *CollectionHandler) UpdateImage(c *gin.Context) {
	var req UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, ok := h.collection.ReplaceImage(c.Param("id"), services.NormalizeImageURL(req.ImageURL))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *CollectionHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, models.CollectionStats{
		TotalCards: h.collection.Len(),
		TotalValue: h.collection.TotalValue(),
	})
}

// CompareCards runs the per-stat comparison between two cards. No aggregate
// winner is computed; the frontend highlights each stat independently.
func (h *CollectionHandler) CompareCards(c *gin.Context) {
	cardA, okA := h.collection.Get(c.Query("a"))
	cardB, okB := h.collection.Get(c.Query("b"))
	if !okA || !okB {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"a":       cardA,
		"b":       cardB,
		"results": models.CompareStats(cardA, cardB),
	})
}

// GetValueHistory returns collection value snapshots for charting
func (h *CollectionHandler) GetValueHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	snapshots, err := h.valueTracker.GetHistory(period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}
