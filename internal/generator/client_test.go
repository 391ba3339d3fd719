package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type staticCreds string

func (c staticCreds) APIKey() string { return string(c) }

func geminiReply(text string) geminiResponse {
	return geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	var gotKey, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		json.NewEncoder(w).Encode(geminiReply(`[{"question":"q","options":["a","b","c","d"],"answer":"a"}]`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, staticCreds("user-key-123"))
	text, err := client.Generate(context.Background(), "make a quiz")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if gotKey != "user-key-123" {
		t.Errorf("expected key query param %q, got %q", "user-key-123", gotKey)
	}
	if gotPrompt != "make a quiz" {
		t.Errorf("expected prompt %q, got %q", "make a quiz", gotPrompt)
	}
	if !strings.Contains(text, `"answer":"a"`) {
		t.Errorf("unexpected response text: %q", text)
	}
}

func TestGeminiClient_EmptyCandidatesReturnsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, staticCreds("k"))
	text, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if text != FallbackText {
		t.Errorf("expected fallback text, got %q", text)
	}
}

func TestGeminiClient_RetriesThenFails(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, staticCreds("k"))
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got: %v", err)
	}
}

func TestGeminiClient_RecoversOnRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(geminiReply("recovered"))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, staticCreds("k"))
	text, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected recovery on second attempt, got: %v", err)
	}
	if text != "recovered" {
		t.Errorf("expected %q, got %q", "recovered", text)
	}
}

func TestNewTextClient_DefaultsToGemini(t *testing.T) {
	client := NewTextClient("", "", "", staticCreds("k"))
	if _, ok := client.(*GeminiClient); !ok {
		t.Errorf("expected *GeminiClient, got %T", client)
	}
}

func TestMockClient_OutputSurvivesPipeline(t *testing.T) {
	text, err := NewMockClient().Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	items, err := ParseQuizItems(ExtractJSONArray(text))
	if err != nil {
		t.Fatalf("mock output should parse after extraction: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected mock items")
	}
	for i, item := range items {
		if len(item.Options) != 4 {
			t.Errorf("item %d: expected 4 options, got %d", i, len(item.Options))
		}
		found := false
		for _, opt := range item.Options {
			if opt == item.Answer {
				found = true
			}
		}
		if !found {
			t.Errorf("item %d: answer %q not among options", i, item.Answer)
		}
	}
}
