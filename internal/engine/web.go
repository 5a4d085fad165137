package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// maxWebBodySize is the maximum HTTP response body size (5MB).
const maxWebBodySize = 5 * 1024 * 1024

// WebExtractor fetches web pages and extracts readable article text using
// go-readability, for callers that point the pipeline at a URL instead of
// uploading a file.
type WebExtractor struct {
	client *http.Client
}

// NewWebExtractor creates a new web content extractor.
func NewWebExtractor(timeout time.Duration) *WebExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebExtractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches the URL and returns the page title and its readable text,
// whitespace-collapsed.
func (e *WebExtractor) Extract(ctx context.Context, url string) (title, text string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", model.ErrExtractionFailed, err)
	}

	// Use a realistic browser User-Agent to avoid being blocked by sites.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: fetch: %v", model.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: HTTP %d for %s", model.ErrExtractionFailed, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebBodySize))
	if err != nil {
		return "", "", fmt.Errorf("%w: read body: %v", model.ErrExtractionFailed, err)
	}

	parsedURL, _ := nurl.Parse(url)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: readability: %v", model.ErrExtractionFailed, err)
	}

	text = collapseWhitespace(article.TextContent)
	if text == "" {
		return "", "", model.ErrEmptyDocument
	}

	title = strings.TrimSpace(article.Title)
	if title == "" && parsedURL != nil {
		title = parsedURL.Hostname()
	}
	return title, text, nil
}
