package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// Some recipe hosts reject clients without a browser-looking UA.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxVisibleTextLen caps the extracted page text. Kept small to stay
// inside model token-per-minute quotas during verification.
const maxVisibleTextLen = 3000

// PageFetcher fetches untrusted result pages and reduces them to the
// visible text a reader would see.
type PageFetcher struct {
	client *resty.Client
}

// NewPageFetcher creates a fetcher with the given per-page timeout.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", browserUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &PageFetcher{client: client}
}

// VisibleText fetches the page and returns its visible text with
// script/style content stripped, whitespace collapsed, and length capped.
// Links come from an external search service, so the URL is validated
// before any request is made.
func (f *PageFetcher) VisibleText(ctx context.Context, pageURL string) (string, error) {
	if !govalidator.IsURL(pageURL) {
		return "", fmt.Errorf("invalid page URL: %q", pageURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode())
	}

	text := ExtractVisibleText(resp.Body())
	if text == "" {
		return "", fmt.Errorf("no visible text extracted from page")
	}
	return Truncate(text, maxVisibleTextLen), nil
}

// ExtractVisibleText parses HTML and returns the concatenated text
// nodes, skipping script, style, and noscript subtrees. Malformed markup
// is handled leniently by the parser, matching browser behavior.
func ExtractVisibleText(rawHTML []byte) string {
	doc, err := html.Parse(strings.NewReader(string(rawHTML)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Truncate cuts s to at most n runes without splitting a multi-byte
// character, which matters for Korean page content.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
