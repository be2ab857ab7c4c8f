package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/agentchat/agentchat/llmwire"
)

const (
	searchDefaultBase = "https://www.googleapis.com/customsearch/v1"
	searchResultLimit = 5
)

// SearchResult is one mapped item of a search response.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SearchTool queries the Google Custom Search API. Without credentials it
// degrades into a setup-instructions payload so the model can explain the
// missing configuration to the user instead of crashing the loop.
type SearchTool struct {
	creds      SearchCredentials
	baseURL    string
	httpClient *http.Client
}

// NewSearchTool creates a SearchTool with the given credentials.
func NewSearchTool(creds SearchCredentials) *SearchTool {
	return &SearchTool{
		creds:      creds,
		baseURL:    searchDefaultBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *SearchTool) Name() string { return "google_search" }

func (t *SearchTool) Spec() llmwire.ToolSpec {
	return llmwire.ToolSpec{
		Name:        "google_search",
		Description: "Search Google for information and return relevant snippets",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to execute",
				},
			},
			"required": []string{"query"},
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) string {
	var in searchArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return errorPayload("invalid arguments: "+err.Error(), nil)
	}

	if t.creds.APIKey == "" || t.creds.EngineID == "" {
		return mustJSON(map[string]any{
			"error": "Google Search requires API key and Search Engine ID. Please configure them in settings.",
			"query": in.Query,
			"setup_instructions": map[string]string{
				"step1": "Go to Google Cloud Console (https://console.developers.google.com/)",
				"step2": "Enable Custom Search API",
				"step3": "Create API credentials",
				"step4": "Go to Google Custom Search (https://cse.google.com/)",
				"step5": "Create a custom search engine",
				"step6": "Copy the Search Engine ID",
			},
		})
	}

	q := url.Values{}
	q.Set("key", t.creds.APIKey)
	q.Set("cx", t.creds.EngineID)
	q.Set("q", in.Query)
	q.Set("num", fmt.Sprintf("%d", searchResultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return errorPayload("Search failed: "+err.Error(), map[string]any{"query": in.Query})
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errorPayload("Search failed: "+err.Error(), map[string]any{"query": in.Query})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorPayload("Search failed: "+err.Error(), map[string]any{"query": in.Query})
	}

	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
		SearchInformation struct {
			SearchTime   json.Number `json:"searchTime"`
			TotalResults string      `json:"totalResults"`
		} `json:"searchInformation"`
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if json.Unmarshal(raw, &body) == nil && body.Error != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		slog.Warn("search request failed", "query", in.Query, "status", resp.StatusCode)
		return errorPayload("Search failed: "+msg, map[string]any{"query": in.Query})
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		return errorPayload("Search failed: "+err.Error(), map[string]any{"query": in.Query})
	}
	if body.Error != nil {
		msg := body.Error.Message
		if msg == "" {
			msg = "Google Search API error"
		}
		return errorPayload("Search failed: "+msg, map[string]any{"query": in.Query})
	}

	results := make([]SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}

	searchTime := body.SearchInformation.SearchTime.String()
	if searchTime == "" {
		searchTime = "0"
	}
	totalResults := body.SearchInformation.TotalResults
	if totalResults == "" {
		totalResults = "0"
	}

	return mustJSON(map[string]any{
		"query":        in.Query,
		"results":      results,
		"count":        len(results),
		"searchTime":   searchTime,
		"totalResults": totalResults,
	})
}
