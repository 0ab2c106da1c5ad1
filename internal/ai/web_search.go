package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

const googleSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleSearchProvider implements SearchProvider using Google Custom
// Search. The key/CX pair is a single credential; when it is missing the
// provider reports itself unconfigured so the pipeline can degrade.
type GoogleSearchProvider struct {
	apiKey     string
	cx         string
	baseURL    string
	httpClient *http.Client
	exhausted  atomic.Bool
}

// NewGoogleSearchProvider creates a Custom Search client with the given
// key and search-context ID.
func NewGoogleSearchProvider(apiKey, cx string) *GoogleSearchProvider {
	return &GoogleSearchProvider{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: googleSearchEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether both halves of the credential pair are set.
func (p *GoogleSearchProvider) Configured() bool {
	return p.apiKey != "" && p.cx != ""
}

type googleSearchResponse struct {
	Items []googleSearchItem `json:"items"`
	Error *googleErrorBlock  `json:"error"`
}

type googleSearchItem struct {
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	Snippet     string         `json:"snippet"`
	DisplayLink string         `json:"displayLink"`
	Pagemap     *googlePagemap `json:"pagemap"`
}

type googlePagemap struct {
	CSEThumbnail []googleImage `json:"cse_thumbnail"`
	CSEImage     []googleImage `json:"cse_image"`
}

type googleImage struct {
	Src string `json:"src"`
}

type googleErrorBlock struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Search runs one Custom Search query and maps the raw items. Quota
// exhaustion (403/429) is remembered so later queries in the same
// process fail fast instead of re-spending the daily budget on errors.
func (p *GoogleSearchProvider) Search(ctx context.Context, query string, count int) ([]SearchItem, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("google search credentials not configured")
	}
	if p.exhausted.Load() {
		return nil, fmt.Errorf("google search quota exhausted")
	}
	if count <= 0 {
		count = 2
	}
	// Google CSE max is 10 per request
	if count > 10 {
		count = 10
	}

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.cx)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", count))

	reqURL := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		p.exhausted.Store(true)
		return nil, fmt.Errorf("google search quota exhausted (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search returned status %d: %s", resp.StatusCode, string(body))
	}

	var gResp googleSearchResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if gResp.Error != nil {
		if gResp.Error.Code == 429 || gResp.Error.Code == 403 {
			p.exhausted.Store(true)
		}
		return nil, fmt.Errorf("google search error %d: %s", gResp.Error.Code, gResp.Error.Message)
	}

	items := make([]SearchItem, 0, len(gResp.Items))
	for _, item := range gResp.Items {
		si := SearchItem{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		}
		if item.Pagemap != nil {
			if len(item.Pagemap.CSEThumbnail) > 0 {
				si.Thumbnail = item.Pagemap.CSEThumbnail[0].Src
			} else if len(item.Pagemap.CSEImage) > 0 {
				si.Thumbnail = item.Pagemap.CSEImage[0].Src
			}
		}
		items = append(items, si)
	}
	return items, nil
}
