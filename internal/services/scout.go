package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/codyseavey/footy-cards/backend/internal/metrics"
	"github.com/codyseavey/footy-cards/backend/internal/models"
)

// ErrSafetyRestricted marks a portrait refusal by the AI safety filters. The
// pipeline recovers from it like any other image failure; the marker exists
// for observability.
var ErrSafetyRestricted = errors.New("likeness restricted by AI safety filters")

// PlayerDataProvider is the data-fetch collaborator. It returns a partial
// report; every absent field is the pipeline's responsibility to default.
type PlayerDataProvider interface {
	ScoutPlayer(ctx context.Context, query string) (*ScoutReport, error)
}

// PortraitGenerator is the image-generation collaborator.
type PortraitGenerator interface {
	GeneratePortrait(ctx context.Context, name, club string, rarity models.Rarity) (string, error)
}

// ScoutingError means the data-fetch collaborator failed or returned nothing
// usable. No card is produced and the collection is left untouched.
type ScoutingError struct {
	Message string
	Err     error
}

func (e *ScoutingError) Error() string {
	return "scouting failed: " + e.Message
}

func (e *ScoutingError) Unwrap() error {
	return e.Err
}

// ImageOverride carries a user-supplied portrait for the scout request.
// Upload is a self-contained image payload used verbatim; URL is a remote
// link run through the URL normalizer. Upload wins when both are set.
type ImageOverride struct {
	Upload string
	URL    string
}

// ScoutService assembles player cards from the AI collaborators.
type ScoutService struct {
	data      PlayerDataProvider
	portraits PortraitGenerator
	clock     clockwork.Clock
}

// NewScoutService creates a scouting pipeline over the given collaborators.
func NewScoutService(data PlayerDataProvider, portraits PortraitGenerator, clock clockwork.Clock) *ScoutService {
	return &ScoutService{
		data:      data,
		portraits: portraits,
		clock:     clock,
	}
}

// Scout fetches player data, resolves a portrait through the fallback chain
// and assembles a new card. The caller inserts the card into the collection.
//
// A data-fetch failure aborts the whole operation with *ScoutingError. Image
// failures never abort: they degrade to the collaborator's suggested image
// and finally to an empty portrait.
func (s *ScoutService) Scout(ctx context.Context, query string, override ImageOverride) (*models.PlayerCard, error) {
	startTime := time.Now()

	report, err := s.data.ScoutPlayer(ctx, query)
	if err != nil {
		metrics.ScoutRequestsTotal.WithLabelValues("error").Inc()
		return nil, &ScoutingError{Message: err.Error(), Err: err}
	}

	name := defaultIfEmpty(report.Name, "Unknown")
	nationality := defaultIfEmpty(report.Nationality, "Unknown")
	club := defaultIfEmpty(report.Club, "Free Agent")
	position := defaultIfEmpty(report.Position, "N/A")
	rarity := models.NormalizeRarity(report.Rarity)
	suggestedURL := NormalizeImageURL(report.SuggestedImageURL)

	imageURL := s.resolvePortrait(ctx, name, club, rarity, suggestedURL, override)

	stats := models.DefaultStats()
	if report.Stats != nil {
		stats = *report.Stats
	}

	marketValue := report.MarketValue
	if marketValue < 0 {
		marketValue = 0
	}

	card := &models.PlayerCard{
		ID:                uuid.NewString(),
		Name:              name,
		Nationality:       nationality,
		Club:              club,
		Position:          position,
		Stats:             stats,
		Rarity:            rarity,
		MarketValue:       marketValue,
		ImageURL:          imageURL,
		SuggestedImageURL: suggestedURL,
		Description:       report.Description,
		Timestamp:         s.clock.Now(),
		GroundingSources:  report.Sources,
	}

	metrics.ScoutRequestsTotal.WithLabelValues("success").Inc()
	metrics.ScoutDuration.Observe(time.Since(startTime).Seconds())
	return card, nil
}

// resolvePortrait applies the strict fallback chain: user upload, user URL,
// generated portrait, collaborator suggestion, empty.
func (s *ScoutService) resolvePortrait(ctx context.Context, name, club string, rarity models.Rarity, suggestedURL string, override ImageOverride) string {
	if override.Upload != "" {
		metrics.PortraitResolutionsTotal.WithLabelValues("upload").Inc()
		return override.Upload
	}

	if url := strings.TrimSpace(override.URL); url != "" {
		metrics.PortraitResolutionsTotal.WithLabelValues("override").Inc()
		return NormalizeImageURL(url)
	}

	generated, err := s.portraits.GeneratePortrait(ctx, name, club, rarity)
	if err == nil {
		metrics.PortraitResolutionsTotal.WithLabelValues("generated").Inc()
		return generated
	}

	if errors.Is(err, ErrSafetyRestricted) {
		log.Printf("Portrait generation refused for %q, falling back to suggested image", name)
	} else {
		log.Printf("Portrait generation failed for %q (%v), falling back to suggested image", name, err)
	}

	if suggestedURL != "" {
		metrics.PortraitResolutionsTotal.WithLabelValues("suggested").Inc()
	} else {
		metrics.PortraitResolutionsTotal.WithLabelValues("none").Inc()
	}
	return suggestedURL
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
