// Package gemini wraps the Gemini generateContent API. A single
// non-streaming completion call; failures surface as errors.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generation API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a Gemini client for the given model.
func NewClient(apiKey, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(apiKey, model string, temperature float64, maxTokens int, baseURL string) *Client {
	c := NewClient(apiKey, model, temperature, maxTokens)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type request struct {
	Contents          []content  `json:"contents"`
	SystemInstruction *content   `json:"systemInstruction,omitempty"`
	GenerationConfig  *genConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Generate sends the system and user prompts and returns the model's text
// answer. system may be empty.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("gemini: API key is missing")
	}

	body := request{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
		GenerationConfig: &genConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: marshalling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, parseAPIError(resp.StatusCode, raw))
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}
	if len(response.Candidates) == 0 {
		return "", errors.New("gemini: response contained no candidates")
	}

	var sb strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", errors.New("gemini: response contained no text")
	}
	return answer, nil
}
