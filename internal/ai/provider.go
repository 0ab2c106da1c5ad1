package ai

import "context"

// TextProvider handles generative text completion against a named model
// variant. Implementations own credential selection; callers only pick
// the model and the prompt.
type TextProvider interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// SearchProvider handles web recipe search.
type SearchProvider interface {
	Search(ctx context.Context, query string, count int) ([]SearchItem, error)
}

// SearchItem is a single raw web search hit as returned by the search
// service, before any pipeline enrichment.
type SearchItem struct {
	Title       string
	Link        string
	Snippet     string
	DisplayLink string
	Thumbnail   string
}
