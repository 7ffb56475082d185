// Package search wraps the Tavily web-search API: a ranked search call and
// a content-extraction call for selected URLs. Both are single-attempt;
// failures surface as errors for the caller to report.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.tavily.com"

// Result is one ranked search hit. Transient, never persisted.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Extraction is the extracted page content for one URL.
type Extraction struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// APIError is returned when Tavily responds with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tavily http %d: %s", e.Status, e.Body)
}

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	baseURL    string
	depth      string
	maxResults int
	httpClient *http.Client
}

// NewClient creates a Tavily client. depth is "basic" or "advanced";
// maxResults caps the ranked result list.
func NewClient(apiKey, depth string, maxResults int) *Client {
	if depth == "" {
		depth = "basic"
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		depth:      depth,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(apiKey, depth string, maxResults int, baseURL string) *Client {
	c := NewClient(apiKey, depth, maxResults)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Search posts a query and returns the ranked results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	body := map[string]any{
		"query":        query,
		"api_key":      c.apiKey,
		"search_depth": c.depth,
		"max_results":  c.maxResults,
	}

	var response struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	if err := c.post(ctx, "/search", body, &response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content, Score: r.Score})
		if len(results) >= c.maxResults {
			break
		}
	}
	return results, nil
}

// Extract fetches page content for the given URLs. URLs Tavily fails to
// extract are skipped; the call errors only when the request itself fails.
func (c *Client) Extract(ctx context.Context, urls []string) ([]Extraction, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	if len(urls) == 0 {
		return nil, nil
	}

	body := map[string]any{
		"urls":    urls,
		"api_key": c.apiKey,
	}

	var response struct {
		Results []struct {
			URL        string `json:"url"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
	}
	if err := c.post(ctx, "/extract", body, &response); err != nil {
		return nil, err
	}

	extractions := make([]Extraction, 0, len(response.Results))
	for _, r := range response.Results {
		if r.RawContent == "" {
			continue
		}
		extractions = append(extractions, Extraction{URL: r.URL, Content: r.RawContent})
	}
	return extractions, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("tavily: marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("tavily: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tavily: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tavily: decoding response: %w", err)
	}
	return nil
}
