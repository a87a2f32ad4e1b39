package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codyseavey/footy-cards/backend/internal/models"
)

// newTestGeminiService points a service at a fake API server.
func newTestGeminiService(t *testing.T, handler http.HandlerFunc) *GeminiService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("GOOGLE_API_KEY", "test-key")
	svc := NewGeminiService()
	svc.baseURL = server.URL + "/models/%s:generateContent"
	return svc
}

func scoutResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"groundingMetadata": map[string]any{
					"groundingChunks": []map[string]any{
						{"web": map[string]any{"uri": "https://example.com/messi", "title": "Player Profile"}},
						{"web": map[string]any{"uri": "https://example.com/untitled"}},
						{"web": map[string]any{"uri": ""}},
					},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestScoutPlayerSuccess(t *testing.T) {
	report := `{"name":"Lionel Messi","club":"Inter Miami","rarity":"Legendary","marketValue":30000000}`
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, geminiScoutModel) {
			t.Errorf("Expected scout model in path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoutResponse(report)))
	})

	got, err := svc.ScoutPlayer(context.Background(), "Messi")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Name != "Lionel Messi" {
		t.Errorf("Expected name 'Lionel Messi', got %q", got.Name)
	}
	if got.Club != "Inter Miami" {
		t.Errorf("Expected club 'Inter Miami', got %q", got.Club)
	}

	// Untitled chunks get a default title, empty URIs are dropped.
	if len(got.Sources) != 2 {
		t.Fatalf("Expected 2 grounding sources, got %d", len(got.Sources))
	}
	if got.Sources[0].Title != "Player Profile" {
		t.Errorf("Expected title 'Player Profile', got %q", got.Sources[0].Title)
	}
	if got.Sources[1].Title != "Official Source" {
		t.Errorf("Expected default title 'Official Source', got %q", got.Sources[1].Title)
	}
}

func TestScoutPlayerFencedJSON(t *testing.T) {
	report := "```json\n{\"name\":\"Kylian Mbappe\"}\n```"
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scoutResponse(report)))
	})

	got, err := svc.ScoutPlayer(context.Background(), "Mbappe")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Name != "Kylian Mbappe" {
		t.Errorf("Expected name 'Kylian Mbappe', got %q", got.Name)
	}
}

func TestScoutPlayerProseWrappedJSON(t *testing.T) {
	report := `Here is the report you asked for: {"name":"Jude Bellingham","description":"a \"complete\" midfielder {box-to-box}"} Hope it helps!`
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scoutResponse(report)))
	})

	got, err := svc.ScoutPlayer(context.Background(), "Bellingham")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Name != "Jude Bellingham" {
		t.Errorf("Expected name 'Jude Bellingham', got %q", got.Name)
	}
}

func TestScoutPlayerAPIError(t *testing.T) {
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := svc.ScoutPlayer(context.Background(), "Messi")
	if err == nil {
		t.Fatal("Expected error on API failure")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestScoutPlayerDisabled(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY_FILE", "")
	svc := NewGeminiService()

	if svc.IsEnabled() {
		t.Fatal("Expected service disabled without an API key")
	}
	if _, err := svc.ScoutPlayer(context.Background(), "Messi"); err == nil {
		t.Error("Expected error from disabled service")
	}
}

func TestGeneratePortrait(t *testing.T) {
	calls := 0
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !strings.Contains(r.URL.Path, geminiImageModel) {
			t.Errorf("Expected image model in path, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inline_data":{"mime_type":"image/png","data":"abc123"}}]}}]}`))
	})

	got, err := svc.GeneratePortrait(context.Background(), "Test Player", "Test FC", models.RarityEpic)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "data:image/png;base64,abc123" {
		t.Errorf("Expected data URL, got %q", got)
	}

	// Second call for the same player is served from the cache.
	again, err := svc.GeneratePortrait(context.Background(), "Test Player", "Test FC", models.RarityEpic)
	if err != nil {
		t.Fatalf("Unexpected error on cached call: %v", err)
	}
	if again != got {
		t.Errorf("Expected cached portrait %q, got %q", got, again)
	}
	if calls != 1 {
		t.Errorf("Expected 1 API call, got %d", calls)
	}
}

func TestGeneratePortraitSafetyRefusal(t *testing.T) {
	svc := newTestGeminiService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY","content":{"parts":[]}}]}`))
	})

	_, err := svc.GeneratePortrait(context.Background(), "Test Player", "Test FC", models.RarityCommon)
	if !errors.Is(err, ErrSafetyRestricted) {
		t.Errorf("Expected ErrSafetyRestricted, got %v", err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around object", `text {"a":1} more`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"braces inside strings", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote in string", `{"a":"say \"hi\" {ok}"}`, `{"a":"say \"hi\" {ok}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"no object", "plain text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSONObject(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
