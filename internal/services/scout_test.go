package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/codyseavey/footy-cards/backend/internal/models"
)

type fakeDataProvider struct {
	report *ScoutReport
	err    error
}

func (f *fakeDataProvider) ScoutPlayer(ctx context.Context, query string) (*ScoutReport, error) {
	return f.report, f.err
}

type fakePortraits struct {
	result string
	err    error
	calls  int
}

func (f *fakePortraits) GeneratePortrait(ctx context.Context, name, club string, rarity models.Rarity) (string, error) {
	f.calls++
	return f.result, f.err
}

func newTestScoutService(data *fakeDataProvider, portraits *fakePortraits) *ScoutService {
	return NewScoutService(data, portraits, clockwork.NewFakeClock())
}

func TestScoutDataFailure(t *testing.T) {
	data := &fakeDataProvider{err: errors.New("model overloaded")}
	portraits := &fakePortraits{}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "Lionel Messi", ImageOverride{})
	if card != nil {
		t.Errorf("Expected no card on data failure, got %+v", card)
	}

	var scoutErr *ScoutingError
	if !errors.As(err, &scoutErr) {
		t.Fatalf("Expected *ScoutingError, got %v", err)
	}
	if scoutErr.Message != "model overloaded" {
		t.Errorf("Expected message 'model overloaded', got %q", scoutErr.Message)
	}
	if portraits.calls != 0 {
		t.Errorf("Portrait generator should not run after a data failure, got %d calls", portraits.calls)
	}
}

func TestScoutFullReport(t *testing.T) {
	stats := models.PlayerStats{Pace: 80, Shooting: 80, Passing: 80, Dribbling: 80, Defending: 80, Physical: 80}
	data := &fakeDataProvider{report: &ScoutReport{
		Name:              "Test Player",
		Nationality:       "Norway",
		Club:              "Test FC",
		Position:          "ST",
		Stats:             &stats,
		Rarity:            "LEGENDARY",
		MarketValue:       50000000,
		Description:       "A clinical finisher.",
		SuggestedImageURL: "https://en.wikipedia.org/wiki/File:Test.jpg",
		Sources:           []models.GroundingSource{{Title: "Transfermarkt", URI: "https://example.com"}},
	}}
	portraits := &fakePortraits{err: errors.New("quota exceeded")}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "Test Player", ImageOverride{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if card.ID == "" {
		t.Error("Expected a generated card id")
	}
	if card.Rarity != models.RarityLegendary {
		t.Errorf("Expected rarity Legendary, got %q", card.Rarity)
	}
	if card.Stats != stats {
		t.Errorf("Expected stats %+v, got %+v", stats, card.Stats)
	}
	if card.MarketValue != 50000000 {
		t.Errorf("Expected market value 50000000, got %f", card.MarketValue)
	}

	wantURL := "https://commons.wikimedia.org/w/index.php?title=Special:Redirect/file/Test.jpg&width=800"
	if card.SuggestedImageURL != wantURL {
		t.Errorf("Expected normalized suggested URL %q, got %q", wantURL, card.SuggestedImageURL)
	}
	// Generation failed, so the card falls back to the suggested image.
	if card.ImageURL != wantURL {
		t.Errorf("Expected fallback to suggested URL %q, got %q", wantURL, card.ImageURL)
	}
	if len(card.GroundingSources) != 1 {
		t.Errorf("Expected 1 grounding source, got %d", len(card.GroundingSources))
	}
}

func TestScoutDefaults(t *testing.T) {
	data := &fakeDataProvider{report: &ScoutReport{MarketValue: -5}}
	portraits := &fakePortraits{err: errors.New("disabled")}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "nobody", ImageOverride{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if card.Name != "Unknown" {
		t.Errorf("Expected name 'Unknown', got %q", card.Name)
	}
	if card.Nationality != "Unknown" {
		t.Errorf("Expected nationality 'Unknown', got %q", card.Nationality)
	}
	if card.Club != "Free Agent" {
		t.Errorf("Expected club 'Free Agent', got %q", card.Club)
	}
	if card.Position != "N/A" {
		t.Errorf("Expected position 'N/A', got %q", card.Position)
	}
	if card.Rarity != models.RarityCommon {
		t.Errorf("Expected rarity Common, got %q", card.Rarity)
	}
	if card.Stats != models.DefaultStats() {
		t.Errorf("Expected default stats, got %+v", card.Stats)
	}
	if card.MarketValue != 0 {
		t.Errorf("Expected negative market value clamped to 0, got %f", card.MarketValue)
	}
	// No suggestion and no generator: the card ships without a portrait.
	if card.ImageURL != "" {
		t.Errorf("Expected empty image URL, got %q", card.ImageURL)
	}
}

func TestScoutGeneratedPortrait(t *testing.T) {
	data := &fakeDataProvider{report: &ScoutReport{Name: "Test Player"}}
	portraits := &fakePortraits{result: "data:image/png;base64,abc123"}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "Test Player", ImageOverride{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if card.ImageURL != "data:image/png;base64,abc123" {
		t.Errorf("Expected generated portrait, got %q", card.ImageURL)
	}
	if portraits.calls != 1 {
		t.Errorf("Expected 1 portrait call, got %d", portraits.calls)
	}
}

func TestScoutUploadOverride(t *testing.T) {
	data := &fakeDataProvider{report: &ScoutReport{Name: "Test Player"}}
	portraits := &fakePortraits{result: "data:image/png;base64,generated"}
	svc := newTestScoutService(data, portraits)

	override := ImageOverride{
		Upload: "data:image/jpeg;base64,uploaded",
		URL:    "https://en.wikipedia.org/wiki/File:Other.jpg",
	}
	card, err := svc.Scout(context.Background(), "Test Player", override)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Uploads are used verbatim and beat the URL override.
	if card.ImageURL != "data:image/jpeg;base64,uploaded" {
		t.Errorf("Expected uploaded image, got %q", card.ImageURL)
	}
	if portraits.calls != 0 {
		t.Errorf("Portrait generator should not run with an override, got %d calls", portraits.calls)
	}
}

func TestScoutURLOverride(t *testing.T) {
	data := &fakeDataProvider{report: &ScoutReport{Name: "Test Player"}}
	portraits := &fakePortraits{result: "data:image/png;base64,generated"}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "Test Player", ImageOverride{URL: " https://en.wikipedia.org/wiki/File:Override.jpg "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantURL := "https://commons.wikimedia.org/w/index.php?title=Special:Redirect/file/Override.jpg&width=800"
	if card.ImageURL != wantURL {
		t.Errorf("Expected normalized override URL %q, got %q", wantURL, card.ImageURL)
	}
	if portraits.calls != 0 {
		t.Errorf("Portrait generator should not run with an override, got %d calls", portraits.calls)
	}
}

func TestScoutSafetyRefusalFallsBack(t *testing.T) {
	data := &fakeDataProvider{report: &ScoutReport{
		Name:              "Test Player",
		SuggestedImageURL: "https://upload.wikimedia.org/wikipedia/commons/a/ab/Test.jpg",
	}}
	portraits := &fakePortraits{err: ErrSafetyRestricted}
	svc := newTestScoutService(data, portraits)

	card, err := svc.Scout(context.Background(), "Test Player", ImageOverride{})
	if err != nil {
		t.Fatalf("Safety refusal should not fail the scout, got %v", err)
	}
	if card.ImageURL != "https://upload.wikimedia.org/wikipedia/commons/a/ab/Test.jpg" {
		t.Errorf("Expected suggested image fallback, got %q", card.ImageURL)
	}
}
