package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// FetchTimeout bounds a single page fetch.
	FetchTimeout = 30 * time.Second

	// fetchRetries is how many times a page fetch is attempted.
	fetchRetries = 2

	// PageTextLimit caps extracted page text so it fits in a prompt.
	PageTextLimit = 4000
)

// PageFetcher downloads a source page and extracts its readable text. The
// research agent uses it to enrich search hits that came back without raw
// content.
type PageFetcher struct {
	httpClient *http.Client
}

// NewPageFetcher creates a fetcher with the default timeout.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{
			Timeout: FetchTimeout,
		},
	}
}

// FetchPageText downloads the page at url and returns its paragraph text,
// capped at PageTextLimit characters.
func (f *PageFetcher) FetchPageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic a browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	var resp *http.Response
	for attempt := 0; attempt < fetchRetries; attempt++ {
		resp, err = f.httpClient.Do(req)
		if err == nil {
			break
		}

		if attempt < fetchRetries-1 {
			log.Printf("Attempt %d failed, retrying in 2s: %v", attempt+1, err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}

	if err != nil {
		return "", fmt.Errorf("failed to fetch %s after %d attempts: %w", url, fetchRetries, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	return ExtractReadableText(doc), nil
}

// ExtractReadableText pulls paragraph and heading text out of a parsed page,
// skipping navigation and script noise.
func ExtractReadableText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header").Remove()

	var parts []string
	doc.Find("h1, h2, h3, p, li").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		parts = append(parts, text)
	})

	text := strings.Join(parts, "\n")
	if len(text) > PageTextLimit {
		text = text[:PageTextLimit]
	}
	return text
}
