package gemini

import (
	"encoding/json"
	"fmt"
)

// parseAPIError extracts a human-readable message from a Gemini error response.
func parseAPIError(statusCode int, body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	switch statusCode {
	case 400:
		return "invalid request"
	case 401, 403:
		return "authentication failed — check your GEMINI_API_KEY"
	case 404:
		return "model not found"
	case 429:
		return "rate limited — too many requests"
	case 500, 503:
		return "provider service temporarily unavailable"
	}

	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, s)
}
