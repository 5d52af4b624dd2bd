package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const tavilyURL = "https://api.tavily.com/search"

// SearchClient calls the Tavily search API.
type SearchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSearchClient creates a search client. An empty apiKey is allowed;
// Search then fails with ErrNotConfigured.
func NewSearchClient(apiKey string) *SearchClient {
	return &SearchClient{
		apiKey:     apiKey,
		baseURL:    tavilyURL,
		httpClient: newHTTPClient(),
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs a query and returns a short text summary.
func (c *SearchClient) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		MaxResults:    5,
		IncludeAnswer: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Search provider returned %d: %s", resp.StatusCode, body)
		return "", fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	var data tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	if data.Answer != "" {
		return data.Answer, nil
	}
	if len(data.Results) > 0 && data.Results[0].Content != "" {
		return data.Results[0].Content, nil
	}
	return "No summary available", nil
}
