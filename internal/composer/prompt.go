// Package composer assembles the generation prompt from the personalization
// instruction, search results, extracted page content, and the user query.
package composer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keremar/sift/internal/search"
)

const defaultMaxContextTokens = 4000

// Cap per extracted page so a single large page cannot crowd out the rest.
const maxExtractChars = 4000

const assistantGuidelines = `You are a research assistant. Answer the user's question using the web search results and extracted page content provided below.

Guidelines:
- Ground your answer in the provided material and cite source URLs where possible.
- Be comprehensive but concise, and structure the answer clearly.
- If the provided material does not answer the question, say so instead of guessing.`

// Prompt holds the assembled system and user messages for the generation call.
type Prompt struct {
	System string
	User   string
}

// Composer builds prompts within a token budget for injected context.
type Composer struct {
	MaxContextTokens int
}

// New creates a Composer. If maxContextTokens <= 0, the default (4000) is used.
func New(maxContextTokens int) *Composer {
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	return &Composer{MaxContextTokens: maxContextTokens}
}

// Compose assembles the prompt. instruction is the personalization prefix
// (may be empty). Results are ranked by score; when the context budget is
// exceeded, lowest-scoring entries are dropped first. The user query is
// always included. Output is deterministic for identical inputs.
func (c *Composer) Compose(instruction string, results []search.Result, extractions []search.Extraction, query string) Prompt {
	system := assistantGuidelines
	if instruction != "" {
		system += "\n\n[User Context]\n" + instruction
	}

	remaining := c.MaxContextTokens

	var sb strings.Builder

	if len(results) > 0 {
		sorted := make([]search.Result, len(results))
		copy(sorted, results)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Score > sorted[j].Score
		})

		header := "[Search Results]\n"
		remaining -= EstimateTokens(header)
		var entries []string
		for i, r := range sorted {
			entry := formatResult(i+1, r)
			tokens := EstimateTokens(entry)
			if tokens > remaining {
				continue
			}
			entries = append(entries, entry)
			remaining -= tokens
		}
		if len(entries) > 0 {
			sb.WriteString(header)
			for _, e := range entries {
				sb.WriteString(e)
			}
			sb.WriteString("\n")
		}
	}

	if len(extractions) > 0 {
		header := "[Extracted Content]\n"
		headerTokens := EstimateTokens(header)
		var entries []string
		for _, ex := range extractions {
			entry := formatExtraction(ex)
			tokens := EstimateTokens(entry)
			if tokens > remaining-headerTokens {
				continue
			}
			entries = append(entries, entry)
			remaining -= tokens
		}
		if len(entries) > 0 {
			sb.WriteString(header)
			for _, e := range entries {
				sb.WriteString(e)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)

	return Prompt{System: system, User: sb.String()}
}

func formatResult(rank int, r search.Result) string {
	return fmt.Sprintf("%d. %s\n   %s\n   %s\n", rank, r.Title, r.URL, r.Snippet)
}

func formatExtraction(ex search.Extraction) string {
	content := ex.Content
	if len(content) > maxExtractChars {
		content = content[:maxExtractChars] + "..."
	}
	return fmt.Sprintf("Source: %s\n%s\n\n", ex.URL, content)
}

// EstimateTokens provides a rough token count using the 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
