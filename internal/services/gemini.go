package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/codyseavey/footy-cards/backend/internal/metrics"
	"github.com/codyseavey/footy-cards/backend/internal/models"
)

const (
	geminiScoutModel = "gemini-2.0-flash"
	geminiImageModel = "gemini-2.5-flash-image"
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout    = 60 * time.Second
)

// GeminiService talks to the Gemini API for both scouting data (search-grounded
// JSON) and portrait generation.
type GeminiService struct {
	apiKey     string
	baseURL    string // format string taking the model name
	httpClient *http.Client
	limiter    *rate.Limiter
	enabled    bool

	// Generated portraits keyed by name|club|rarity, so re-scouting the same
	// player does not burn image-generation quota.
	portraitCache *lru.Cache[string, string]
}

// NewGeminiService creates a new Gemini service. The API key comes from
// GOOGLE_API_KEY or from the file named by GOOGLE_API_KEY_FILE.
func NewGeminiService() *GeminiService {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		if keyPath := os.Getenv("GOOGLE_API_KEY_FILE"); keyPath != "" {
			if data, err := os.ReadFile(keyPath); err == nil {
				apiKey = strings.TrimSpace(string(data))
			}
		}
	}

	portraitCache, err := lru.New[string, string](50)
	if err != nil {
		log.Printf("Failed to create portrait cache: %v", err)
	}

	svc := &GeminiService{
		apiKey:        apiKey,
		baseURL:       geminiBaseURL,
		httpClient:    &http.Client{Timeout: geminiTimeout},
		limiter:       rate.NewLimiter(rate.Every(time.Second), 5),
		enabled:       apiKey != "",
		portraitCache: portraitCache,
	}

	if svc.enabled {
		log.Printf("Gemini service: enabled (scout=%s, image=%s)", geminiScoutModel, geminiImageModel)
	} else {
		log.Printf("Gemini service: disabled (no GOOGLE_API_KEY)")
	}

	return svc
}

// IsEnabled returns whether Gemini is available
func (s *GeminiService) IsEnabled() bool {
	return s.enabled
}

// ScoutReport is the partial player record returned by the data collaborator.
// Any field may be missing; the pipeline owns the defaults.
type ScoutReport struct {
	Name              string                   `json:"name"`
	Nationality       string                   `json:"nationality"`
	Club              string                   `json:"club"`
	Position          string                   `json:"position"`
	Stats             *models.PlayerStats      `json:"stats"`
	Rarity            string                   `json:"rarity"`
	MarketValue       float64                  `json:"marketValue"`
	Description       string                   `json:"description"`
	SuggestedImageURL string                   `json:"suggestedImageUrl"`
	Sources           []models.GroundingSource `json:"-"`
}

// ScoutPlayer asks Gemini for a search-grounded scouting report on the named
// player. Grounding citations are attached to the returned report.
func (s *GeminiService) ScoutPlayer(ctx context.Context, query string) (*ScoutReport, error) {
	if !s.enabled {
		return nil, fmt.Errorf("Gemini service not enabled (no GOOGLE_API_KEY)")
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: scoutPrompt(query)}}},
		},
		Tools: []geminiTool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: &geminiGenConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := s.call(ctx, geminiScoutModel, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("no response from Gemini")
	}

	candidate := resp.Candidates[0]
	text := candidate.text()
	if text == "" {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("scouting report unavailable")
	}

	report, err := parseScoutReport(text)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return nil, err
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = "Official Source"
			}
			report.Sources = append(report.Sources, models.GroundingSource{Title: title, URI: chunk.Web.URI})
		}
	}

	return report, nil
}

// GeneratePortrait renders a stylized player portrait and returns it as a
// self-contained data URL. A SAFETY finish reason maps to ErrSafetyRestricted
// so callers can tell policy refusals from plain failures.
func (s *GeminiService) GeneratePortrait(ctx context.Context, name, club string, rarity models.Rarity) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("Gemini service not enabled (no GOOGLE_API_KEY)")
	}

	cacheKey := name + "|" + club + "|" + string(rarity)
	if s.portraitCache != nil {
		if cached, ok := s.portraitCache.Get(cacheKey); ok {
			metrics.PortraitCacheHits.Inc()
			return cached, nil
		}
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: portraitPrompt(name, club, rarity)}}},
		},
		GenerationConfig: &geminiGenConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: "3:4"},
		},
	}

	resp, err := s.call(ctx, geminiImageModel, req)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("no response from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		metrics.GeminiErrorsTotal.WithLabelValues("safety").Inc()
		return "", ErrSafetyRestricted
	}

	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			payload := "data:image/png;base64," + part.InlineData.Data
			if s.portraitCache != nil {
				s.portraitCache.Add(cacheKey, payload)
			}
			return payload, nil
		}
	}

	metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
	return "", fmt.Errorf("portrait generation failed")
}

// call runs one generateContent request against the given model, pacing
// requests through the shared limiter.
func (s *GeminiService) call(ctx context.Context, model string, req geminiRequest) (*geminiAPIResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	startTime := time.Now()
	metrics.GeminiRequestsTotal.Inc()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(s.baseURL, model) + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	metrics.GeminiAPILatency.Observe(time.Since(startTime).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	if apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	return &apiResp, nil
}

// parseScoutReport extracts the JSON report from the model's text output,
// tolerating markdown fences and prose around the JSON object.
func parseScoutReport(text string) (*ScoutReport, error) {
	text = strings.TrimSpace(text)

	// Handle markdown code blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	var report ScoutReport
	if err := json.Unmarshal([]byte(text), &report); err == nil {
		return &report, nil
	}

	// Best-effort recovery: pull the first balanced JSON object out of the
	// response before giving up.
	if fragment := extractJSONObject(text); fragment != "" {
		if err := json.Unmarshal([]byte(fragment), &report); err == nil {
			return &report, nil
		}
	}

	return nil, fmt.Errorf("failed to parse scouting report: %s", truncate(text, 200))
}

// extractJSONObject returns the first balanced {...} fragment in text, or ""
// when none exists. Braces inside JSON strings are ignored.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func scoutPrompt(query string) string {
	return fmt.Sprintf(`Scout the professional Association Football (Soccer) player: %q.
1. Retrieve real-world stats (0-99) and market data.
2. FIND a direct, hotlink-friendly RAW image URL (JPG/PNG) of this player.
   - HIGHLY PREFER direct image paths from Wikimedia Commons (e.g., https://upload.wikimedia.org/.../name.jpg).
   - AVOID page URLs (e.g., AVOID URLs containing "/wiki/File:").
   - Ensure the URL ends in a common image extension (.jpg, .png, .webp).
3. Return a detailed scouting report in JSON.

Response MUST be valid JSON.
Format:
{
  "name": "string",
  "nationality": "string",
  "club": "string",
  "position": "string",
  "stats": { "pace": 0, "shooting": 0, "passing": 0, "dribbling": 0, "defending": 0, "physical": 0 },
  "rarity": "Common|Uncommon|Rare|Epic|Legendary",
  "marketValue": 0,
  "description": "string",
  "suggestedImageUrl": "string"
}`, query)
}

func portraitPrompt(name, club string, rarity models.Rarity) string {
	return fmt.Sprintf("Premium cinematic sports portrait of soccer player %s in %s kit. "+
		"Professional sports photography style, stadium lights background, 8k resolution, realistic lighting. "+
		"High-end trading card sticker aesthetic. Rarity tier: %s.", name, club, rarity)
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	Tools            []geminiTool     `json:"tools,omitempty"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenConfig struct {
	ResponseMimeType string             `json:"responseMimeType,omitempty"`
	ImageConfig      *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type geminiAPIResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role"`
	} `json:"content"`
	FinishReason      string `json:"finishReason"`
	GroundingMetadata *struct {
		GroundingChunks []struct {
			Web *struct {
				URI   string `json:"uri"`
				Title string `json:"title"`
			} `json:"web"`
		} `json:"groundingChunks"`
	} `json:"groundingMetadata"`
}

func (c geminiCandidate) text() string {
	for _, part := range c.Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
