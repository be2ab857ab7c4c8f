package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchWithoutCredentials(t *testing.T) {
	tool := NewSearchTool(SearchCredentials{})

	out := tool.Execute(context.Background(), json.RawMessage(`{"query":"golang"}`))

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if payload["error"] == nil {
		t.Fatal("expected error key")
	}
	if payload["query"] != "golang" {
		t.Errorf("expected query echoed, got %v", payload["query"])
	}
	steps, ok := payload["setup_instructions"].(map[string]any)
	if !ok {
		t.Fatal("expected setup_instructions object")
	}
	for _, key := range []string{"step1", "step2", "step3", "step4", "step5", "step6"} {
		if steps[key] == nil {
			t.Errorf("missing %s in setup instructions", key)
		}
	}
}

func TestSearchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "api-key" || q.Get("cx") != "engine-id" {
			t.Errorf("credentials missing from query: %v", q)
		}
		if q.Get("q") != "go generics" || q.Get("num") != "5" {
			t.Errorf("unexpected query params: %v", q)
		}
		w.Write([]byte(`{
			"items": [
				{"title": "Go Blog", "snippet": "generics landed", "link": "https://go.dev/blog"},
				{"title": "Spec", "snippet": "type parameters", "link": "https://go.dev/ref/spec"}
			],
			"searchInformation": {"searchTime": 0.42, "totalResults": "12345"}
		}`))
	}))
	defer srv.Close()

	tool := NewSearchTool(SearchCredentials{APIKey: "api-key", EngineID: "engine-id"})
	tool.baseURL = srv.URL

	out := tool.Execute(context.Background(), json.RawMessage(`{"query":"go generics"}`))

	var payload struct {
		Query        string         `json:"query"`
		Results      []SearchResult `json:"results"`
		Count        int            `json:"count"`
		SearchTime   string         `json:"searchTime"`
		TotalResults string         `json:"totalResults"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if payload.Query != "go generics" || payload.Count != 2 {
		t.Errorf("unexpected query/count: %q/%d", payload.Query, payload.Count)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(payload.Results))
	}
	first := payload.Results[0]
	if first.Title != "Go Blog" || first.Snippet != "generics landed" || first.URL != "https://go.dev/blog" {
		t.Errorf("unexpected first result: %+v", first)
	}
	if payload.SearchTime != "0.42" {
		t.Errorf("expected searchTime 0.42, got %q", payload.SearchTime)
	}
	if payload.TotalResults != "12345" {
		t.Errorf("expected totalResults 12345, got %q", payload.TotalResults)
	}
}

func TestSearchNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"searchInformation": {"totalResults": "0"}}`))
	}))
	defer srv.Close()

	tool := NewSearchTool(SearchCredentials{APIKey: "k", EngineID: "e"})
	tool.baseURL = srv.URL

	out := tool.Execute(context.Background(), json.RawMessage(`{"query":"xyzzy"}`))

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if payload["count"] != float64(0) {
		t.Errorf("expected count 0, got %v", payload["count"])
	}
	if payload["searchTime"] != "0" || payload["totalResults"] != "0" {
		t.Errorf("expected zero defaults, got %v / %v", payload["searchTime"], payload["totalResults"])
	}
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer srv.Close()

	tool := NewSearchTool(SearchCredentials{APIKey: "bad", EngineID: "e"})
	tool.baseURL = srv.URL

	out := tool.Execute(context.Background(), json.RawMessage(`{"query":"anything"}`))

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	errMsg, _ := payload["error"].(string)
	if errMsg != "Search failed: API key not valid" {
		t.Errorf("expected upstream message surfaced, got %q", errMsg)
	}
	if payload["query"] != "anything" {
		t.Errorf("expected query echoed on failure, got %v", payload["query"])
	}
}
