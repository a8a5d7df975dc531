package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smallnest/agentgraph/graph"
)

// defaultMaxChars bounds extracted page text so it fits a model context.
const defaultMaxChars = 10000

// WebReader fetches a page and extracts its readable text.
type WebReader struct {
	client   *http.Client
	maxChars int
}

var _ graph.Tool = (*WebReader)(nil)

// WebReaderOption customizes a WebReader.
type WebReaderOption func(*WebReader)

// WithWebReaderHTTPClient overrides the HTTP client.
func WithWebReaderHTTPClient(client *http.Client) WebReaderOption {
	return func(w *WebReader) { w.client = client }
}

// WithWebReaderMaxChars bounds the extracted text length.
func WithWebReaderMaxChars(n int) WebReaderOption {
	return func(w *WebReader) { w.maxChars = n }
}

// NewWebReader creates the page reader tool.
func NewWebReader(opts ...WebReaderOption) *WebReader {
	w := &WebReader{
		client:   http.DefaultClient,
		maxChars: defaultMaxChars,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements graph.Tool.
func (w *WebReader) Name() string { return "web_reader" }

// Description implements graph.Tool.
func (w *WebReader) Description() string {
	return "Fetches a web page and returns its readable text content. " +
		"Input should be a full URL."
}

// Call implements graph.Tool, fetching and extracting the page.
func (w *WebReader) Call(ctx context.Context, input string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(input), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "agentgraph-webreader/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	})

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text content found at %s", input)
	}
	if w.maxChars > 0 && len(text) > w.maxChars {
		text = text[:w.maxChars]
	}
	return text, nil
}
