package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postSuggestions(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/ai/suggestions", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestSuggestionsLocationsFallback(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := postSuggestions(t, handler,
		`{"type":"locations","context":{"title":"Team sync","description":"weekly"}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload struct {
		Suggestions   []string `json:"suggestions"`
		IsAiGenerated bool     `json:"isAiGenerated"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.IsAiGenerated {
		t.Fatalf("expected a fallback result without an AI client")
	}
	if len(payload.Suggestions) != 3 {
		t.Fatalf("expected the 3 canned locations, got %v", payload.Suggestions)
	}
}

func TestSuggestionsDatesFallbackCount(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := postSuggestions(t, handler, `{"type":"dates","context":{"title":"Kickoff"}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var payload struct {
		Suggestions   []string `json:"suggestions"`
		IsAiGenerated bool     `json:"isAiGenerated"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.IsAiGenerated || len(payload.Suggestions) != 3 {
		t.Fatalf("expected 3 fallback dates, got %v (ai=%v)", payload.Suggestions, payload.IsAiGenerated)
	}
}

func TestSuggestionsInvitationFallbackIsText(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := postSuggestions(t, handler,
		`{"type":"invitation","context":{"title":"Planning","link":"https://example.com/m/abc"}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var payload struct {
		Suggestions   string `json:"suggestions"`
		IsAiGenerated bool   `json:"isAiGenerated"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.IsAiGenerated {
		t.Fatalf("expected a fallback invitation")
	}
	if !strings.Contains(payload.Suggestions, "https://example.com/m/abc") {
		t.Fatalf("expected the link inside the invitation, got %q", payload.Suggestions)
	}
}

func TestSuggestionsUnknownTypeReturnsEmptyList(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := postSuggestions(t, handler, `{"type":"weather","context":{"title":"Hike"}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var payload struct {
		Suggestions   []string `json:"suggestions"`
		IsAiGenerated bool     `json:"isAiGenerated"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.IsAiGenerated || len(payload.Suggestions) != 0 {
		t.Fatalf("expected an empty non-AI result, got %v (ai=%v)", payload.Suggestions, payload.IsAiGenerated)
	}
}

func TestSuggestionsMalformedBody(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := postSuggestions(t, handler, `{"type":`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
}
