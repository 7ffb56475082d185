package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keremar/sift/internal/profile"
	"github.com/keremar/sift/internal/search"
)

// MCPSearcher abstracts web search for the MCP layer.
type MCPSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Agent    Asker
	Searcher MCPSearcher
	Profiles *profile.Store
}

// NewMCPServer creates an MCP server with the sift tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"sift",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("sift — personalized web search assistant with per-user preference profiles."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("web_search",
			mcp.WithDescription("Search the web and return ranked results with snippets."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
		),
		mcpWebSearch(deps),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Answer a question using web search results, optionally personalized for a stored user profile."),
			mcp.WithString("query", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("Optional user id for personalization")),
		),
		mcpAsk(deps),
	)

	s.AddTool(
		mcp.NewTool("set_preference",
			mcp.WithDescription("Update a field of a stored user profile."),
			mcp.WithString("user_id", mcp.Description("User id"), mcp.Required()),
			mcp.WithString("field", mcp.Description("Profile field (name, city, profession, expertise_level, interests, preferred_topics)"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Value to set; list fields accept comma-separated values"), mcp.Required()),
		),
		mcpSetPreference(deps),
	)

	s.AddTool(
		mcp.NewTool("show_profile",
			mcp.WithDescription("Return a stored user profile as JSON, creating one with defaults if absent."),
			mcp.WithString("user_id", mcp.Description("User id"), mcp.Required()),
		),
		mcpShowProfile(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"user://profiles",
			"Stored Profiles",
			mcp.WithResourceDescription("Ids of all stored user profiles"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(deps),
	)

	return s
}

func mcpWebSearch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		results, err := deps.Searcher.Search(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(results) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		userID := req.GetString("user_id", "")

		answer, err := deps.Agent.Ask(ctx, userID, query)
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		b, err := json.Marshal(answer)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSetPreference(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}
		field, err := req.RequireString("field")
		if err != nil {
			return mcpError("field is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}

		if err := deps.Profiles.Update(userID, field, value); err != nil {
			return mcpError(fmt.Sprintf("failed to set preference: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Set %s = %s for %s", field, value, userID)), nil
	}
}

func mcpShowProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}

		p, err := deps.Profiles.GetOrCreate(userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		b, err := json.Marshal(p)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := deps.Profiles.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}

		b, err := json.Marshal(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile ids: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
