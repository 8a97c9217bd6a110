package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// deadlineKeywords are the phrases that introduce a deadline on funding
// pages, tried in order.
var deadlineKeywords = []string{
	"submission deadline",
	"application deadline",
	"proposal due",
	"applications due",
	"next deadline",
	"upcoming deadline",
	"closing date",
	"close date",
	"due date",
	"deadline",
}

// Fetcher retrieves funding pages and extracts readable text plus deadline
// hints from them.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for page fetches.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a page fetcher with a 20-second request timeout.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 20 * time.Second},
		logger: slog.Default().With("component", "url-fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText retrieves the page and returns its readable article text,
// with navigation and boilerplate stripped.
func (f *Fetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", err
	}

	return article.TextContent, nil
}

// ScanDeadline scans page text for deadline information: a deadline keyword
// followed by a recognizable date on the same line, then any date near a
// keyword, in that order. Returns the matched date string, or "" when the
// page carries none.
func ScanDeadline(text string) string {
	// Keyword followed by a date on the same line
	for _, keyword := range deadlineKeywords {
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword) + `[:\s]*([^\n]+)`)
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if date := datePattern.FindString(m[1]); date != "" {
				return date
			}
		}
	}

	// Any date within 500 characters after a keyword mention
	lower := strings.ToLower(text)
	for _, keyword := range deadlineKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		end := idx + 500
		if end > len(text) {
			end = len(text)
		}
		if date := datePattern.FindString(text[idx:end]); date != "" {
			return date
		}
	}

	return ""
}
