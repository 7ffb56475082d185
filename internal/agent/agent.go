// Package agent orchestrates a single ask: load the user profile, search the
// web, extract page content, compose the prompt, generate the answer, and
// record the interaction.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keremar/sift/internal/composer"
	"github.com/keremar/sift/internal/fetch"
	"github.com/keremar/sift/internal/history"
	"github.com/keremar/sift/internal/profile"
	"github.com/keremar/sift/internal/search"
)

// Searcher is the web-search surface the agent needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
	Extract(ctx context.Context, urls []string) ([]search.Extraction, error)
}

// Generator is the LLM surface the agent needs.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Model() string
}

// ProfileStore is the profile surface the agent needs.
type ProfileStore interface {
	GetOrCreate(userID string) (profile.Profile, error)
	IncrementInteraction(userID string) error
}

// HistoryStore records completed interactions.
type HistoryStore interface {
	SaveInteraction(history.Interaction) error
}

// PageFetcher is the local extraction fallback.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) []fetch.Result
}

// Answer is the outcome of one ask.
type Answer struct {
	UserID        string   `json:"user_id,omitempty"`
	Text          string   `json:"text"`
	Sources       []string `json:"sources,omitempty"`
	Model         string   `json:"model"`
	InteractionID string   `json:"interaction_id,omitempty"`
}

// Agent wires the ask pipeline together.
type Agent struct {
	profiles   ProfileStore
	searcher   Searcher
	generator  Generator
	composer   *composer.Composer
	history    HistoryStore
	fetcher    PageFetcher
	extractTop int

	now func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates an Agent. extractTop is how many of the top-ranked search
// results get full-content extraction; <= 0 disables extraction.
func New(profiles ProfileStore, searcher Searcher, generator Generator, comp *composer.Composer, hist HistoryStore, fetcher PageFetcher, extractTop int, opts ...Option) *Agent {
	a := &Agent{
		profiles:   profiles,
		searcher:   searcher,
		generator:  generator,
		composer:   comp,
		history:    hist,
		fetcher:    fetcher,
		extractTop: extractTop,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers query for userID. An empty userID runs the query without
// personalization and without touching the profile store. Search and
// generation failures are terminal; extraction failures degrade the answer
// to search snippets only.
func (a *Agent) Ask(ctx context.Context, userID, query string) (Answer, error) {
	if query == "" {
		return Answer{}, errors.New("query is empty")
	}

	var instruction string
	if userID != "" {
		prof, err := a.profiles.GetOrCreate(userID)
		if err != nil {
			return Answer{}, fmt.Errorf("loading profile: %w", err)
		}
		userID = prof.UserID
		instruction = profile.BuildInstruction(prof)
	}

	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		return Answer{}, fmt.Errorf("web search failed: %w", err)
	}

	extractions := a.extract(ctx, results)

	prompt := a.composer.Compose(instruction, results, extractions, query)

	text, err := a.generator.Generate(ctx, prompt.System, prompt.User)
	if err != nil {
		return Answer{}, fmt.Errorf("answer generation failed: %w", err)
	}

	answer := Answer{
		UserID:  userID,
		Text:    text,
		Sources: sources(results),
		Model:   a.generator.Model(),
	}

	interaction := history.Interaction{
		ID:        uuid.New().String(),
		CreatedAt: a.now(),
		UserID:    userID,
		Query:     query,
		Prompt:    prompt.User,
		Model:     a.generator.Model(),
		Answer:    text,
	}
	if err := a.history.SaveInteraction(interaction); err != nil {
		slog.Warn("failed to record interaction", "error", err)
	} else {
		answer.InteractionID = interaction.ID
	}

	if userID != "" {
		if err := a.profiles.IncrementInteraction(userID); err != nil {
			slog.Warn("failed to bump interaction count", "user_id", userID, "error", err)
		}
	}

	return answer, nil
}

// extract pulls full content for the top-ranked results, preferring the
// search provider's extraction endpoint and falling back to fetching the
// pages directly. Returns nil when neither works; the prompt then carries
// snippets only.
func (a *Agent) extract(ctx context.Context, results []search.Result) []search.Extraction {
	if a.extractTop <= 0 || len(results) == 0 {
		return nil
	}

	top := a.extractTop
	if top > len(results) {
		top = len(results)
	}
	urls := make([]string, 0, top)
	for _, r := range results[:top] {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	extractions, err := a.searcher.Extract(ctx, urls)
	if err != nil {
		slog.Warn("content extraction failed, fetching pages directly", "error", err)
	}
	if len(extractions) > 0 {
		return extractions
	}

	if a.fetcher == nil {
		return nil
	}
	var fallback []search.Extraction
	for _, r := range a.fetcher.FetchAll(ctx, urls) {
		fallback = append(fallback, search.Extraction{URL: r.URL, Content: r.Content})
	}
	return fallback
}

func sources(results []search.Result) []string {
	var urls []string
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}
