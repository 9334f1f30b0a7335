package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// webSearchTool runs web searches through the Tavily REST API.
type webSearchTool struct {
	apiKey     string
	httpClient *http.Client
	maxResults int
}

func newWebSearchTool(apiKey string) webSearchTool {
	return webSearchTool{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxResults: 5,
	}
}

func (t webSearchTool) Name() string {
	return ToolWebSearch
}

func (t webSearchTool) Description() string {
	return "Search the web for current information. Input is the search query."
}

func (t webSearchTool) Call(ctx context.Context, input string) (string, error) {
	query := ParseQuery(input)
	if query == "" {
		return "Search error: empty query", nil
	}

	body, err := json.Marshal(map[string]any{
		"api_key":     t.apiKey,
		"query":       query,
		"max_results": t.maxResults,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Search error: %v", err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Search error: %v", err), nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Search error: status %d: %s", resp.StatusCode, data), nil
	}

	return string(data), nil
}
