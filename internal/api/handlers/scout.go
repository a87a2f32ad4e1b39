package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/footy-cards/backend/internal/services"
	"github.com/codyseavey/footy-cards/backend/internal/store"
)

type ScoutRequest struct {
	Query string `json:"query" binding:"required"`
	// Optional portrait overrides: a self-contained data payload from a local
	// upload, or a remote URL. The upload wins when both are present.
	ImageUpload string `json:"image_upload"`
	ImageURL    string `json:"image_url"`
}

type ScoutHandler struct {
	scoutService *services.ScoutService
	collection   *store.Collection
}

func NewScoutHandler(scoutService *services.ScoutService, collection *store.Collection) *ScoutHandler {
	return &ScoutHandler{
		scoutService: scoutService,
		collection:   collection,
	}
}

// ScoutPlayer runs the ingestion pipeline for one player query and inserts
// the resulting card at the head of the collection.
func (h *ScoutHandler) ScoutPlayer(c *gin.Context) {
	var req ScoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}

	card, err := h.scoutService.Scout(c.Request.Context(), req.Query, services.ImageOverride{
		Upload: req.ImageUpload,
		URL:    req.ImageURL,
	})
	if err != nil {
		var scoutErr *services.ScoutingError
		if errors.As(err, &scoutErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": scoutErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.collection.Add(*card)
	c.JSON(http.StatusCreated, card)
}
