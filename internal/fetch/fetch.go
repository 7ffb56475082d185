// Package fetch retrieves readable text from URLs. It is the local fallback
// when the search provider's extraction endpoint fails: HTML pages are
// reduced to their text content, PDFs to their plain text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	// Read cap on the response body.
	maxFetchBytes = 2 << 20
	// Cap on extracted text so one page cannot flood the prompt.
	maxTextBytes = 32 * 1024

	fetchConcurrency = 4

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Result is the extracted text for one URL.
type Result struct {
	URL     string
	Content string
}

// Fetcher downloads URLs and extracts readable text.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a modest timeout.
func New() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 15 * time.Second}}
}

// NewWithClient creates a Fetcher using the supplied HTTP client (for testing).
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads url and returns its readable text, truncated to a fixed cap.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", errors.New("fetch url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch http %d for %s", resp.StatusCode, trimmed)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	switch {
	case strings.Contains(contentType, "application/pdf") || strings.HasSuffix(strings.ToLower(trimmed), ".pdf"):
		text, err = extractPDF(body)
	case strings.Contains(contentType, "text/plain"):
		text = strings.TrimSpace(string(body))
	default:
		text, err = extractHTML(body)
	}
	if err != nil {
		return "", err
	}

	if len(text) > maxTextBytes {
		text = text[:maxTextBytes] + "\n[truncated]"
	}
	return text, nil
}

// FetchAll fetches urls concurrently. Per-URL failures are logged and
// skipped; the returned slice preserves input order for the URLs that
// succeeded.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	if len(urls) == 0 {
		return nil
	}

	contents := make([]string, len(urls))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			text, err := f.Fetch(gCtx, u)
			if err != nil {
				slog.Warn("fetch failed, skipping url", "url", u, "error", err)
				return nil
			}
			contents[i] = text
			return nil
		})
	}
	g.Wait()

	var results []Result
	for i, c := range contents {
		if c != "" {
			results = append(results, Result{URL: urls[i], Content: c})
		}
	}
	return results
}

// skipElements are subtrees that never contribute readable text.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"iframe":   true,
	"svg":      true,
}

func extractHTML(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}

func extractPDF(body []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}
