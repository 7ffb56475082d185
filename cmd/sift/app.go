package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/keremar/sift/internal/agent"
	"github.com/keremar/sift/internal/composer"
	"github.com/keremar/sift/internal/config"
	"github.com/keremar/sift/internal/fetch"
	"github.com/keremar/sift/internal/gemini"
	"github.com/keremar/sift/internal/history"
	"github.com/keremar/sift/internal/profile"
	"github.com/keremar/sift/internal/search"
)

// app bundles the wired components for one invocation.
type app struct {
	agent    *agent.Agent
	searcher *search.Client
	profiles *profile.Store
	history  *history.Store
}

func (a *app) close() {
	if err := a.history.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing history store: %v\n", err)
	}
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// buildApp wires the full ask pipeline from config. Requires both API keys.
func buildApp(cfg config.Config) (*app, error) {
	setupLogging(cfg.Log.Level)

	profiles, err := profile.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening profile store: %w", err)
	}

	hist, err := history.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	searcher := search.NewClientWithBaseURL(cfg.Tavily.APIKey, cfg.Tavily.Depth, cfg.Tavily.MaxResults, cfg.Tavily.BaseURL)
	generator := gemini.NewClientWithBaseURL(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature, cfg.Gemini.MaxTokens, cfg.Gemini.BaseURL)
	comp := composer.New(cfg.Compose.MaxContextTokens)

	ag := agent.New(profiles, searcher, generator, comp, hist, fetch.New(), cfg.Tavily.ExtractTop)

	return &app{
		agent:    ag,
		searcher: searcher,
		profiles: profiles,
		history:  hist,
	}, nil
}

func runAsk(ctx context.Context, userID, query string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if userID != "" {
		printStep("Answering for user %s...", userID)
	} else {
		printStep("Answering without personalization...")
	}

	answer, err := a.agent.Ask(ctx, userID, query)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println(colorize(colorBold, "Sources:"))
		for i, src := range answer.Sources {
			fmt.Printf("  %d. %s\n", i+1, src)
		}
	}

	if answer.InteractionID != "" {
		printStatus("Interaction", "%s", answer.InteractionID[:8])
	}
	return nil
}
