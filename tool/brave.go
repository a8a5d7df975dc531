package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/smallnest/agentgraph/graph"
)

// BraveSearch searches the web through the Brave Search API.
type BraveSearch struct {
	apiKey  string
	baseURL string
	count   int
	country string
	lang    string
	client  *http.Client
}

var _ graph.Tool = (*BraveSearch)(nil)

// BraveOption customizes a BraveSearch.
type BraveOption func(*BraveSearch)

// WithBraveBaseURL overrides the API endpoint, mainly for tests.
func WithBraveBaseURL(baseURL string) BraveOption {
	return func(b *BraveSearch) { b.baseURL = baseURL }
}

// WithBraveCount sets the number of results to return (1-20).
func WithBraveCount(count int) BraveOption {
	return func(b *BraveSearch) {
		if count < 1 {
			count = 1
		}
		if count > 20 {
			count = 20
		}
		b.count = count
	}
}

// WithBraveCountry sets the country code for results, e.g. "US".
func WithBraveCountry(country string) BraveOption {
	return func(b *BraveSearch) { b.country = country }
}

// WithBraveLang sets the language code for results, e.g. "en".
func WithBraveLang(lang string) BraveOption {
	return func(b *BraveSearch) { b.lang = lang }
}

// WithBraveHTTPClient overrides the HTTP client.
func WithBraveHTTPClient(client *http.Client) BraveOption {
	return func(b *BraveSearch) { b.client = client }
}

// NewBraveSearch creates the search tool. An empty apiKey falls back to
// the BRAVE_API_KEY environment variable.
func NewBraveSearch(apiKey string, opts ...BraveOption) (*BraveSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("BRAVE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("BRAVE_API_KEY not set")
	}

	b := &BraveSearch{
		apiKey:  apiKey,
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		count:   10,
		country: "US",
		lang:    "en",
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Name implements graph.Tool.
func (b *BraveSearch) Name() string { return "brave_search" }

// Description implements graph.Tool.
func (b *BraveSearch) Description() string {
	return "A privacy-focused web search engine. " +
		"Useful for finding current information and answering questions. " +
		"Input should be a search query."
}

// Call implements graph.Tool, executing the search.
func (b *BraveSearch) Call(ctx context.Context, input string) (string, error) {
	params := url.Values{}
	params.Set("q", input)
	params.Set("count", fmt.Sprintf("%d", b.count))
	if b.country != "" {
		params.Set("country", b.country)
	}
	if b.lang != "" {
		params.Set("search_lang", b.lang)
	}

	reqURL := fmt.Sprintf("%s?%s", b.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brave api returned status: %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	if web, ok := result["web"].(map[string]any); ok {
		if results, ok := web["results"].([]any); ok {
			for i, r := range results {
				item, ok := r.(map[string]any)
				if !ok {
					continue
				}
				title, _ := item["title"].(string)
				link, _ := item["url"].(string)
				description, _ := item["description"].(string)

				fmt.Fprintf(&sb, "%d. Title: %s\nURL: %s\nDescription: %s\n\n",
					i+1, title, link, description)
			}
		}
	}

	if sb.Len() == 0 {
		return "No results found", nil
	}
	return sb.String(), nil
}
