package service

// Search modes. Fast plans and searches; detailed additionally scrapes
// and re-analyzes the top hits.
const (
	ModeFast     = "fast"
	ModeDetailed = "detailed"
)

// PlanEntry is one model-proposed search step: a query plus the
// ingredients the model infers the dish needs beyond what the user has.
type PlanEntry struct {
	Query                      string   `json:"query"`
	InferredMissingIngredients []string `json:"inferredMissingIngredients"`
}

// SearchRequest is the pipeline input.
type SearchRequest struct {
	Ingredients []string `json:"ingredients"`
	Dish        string   `json:"dish"`
	Mode        string   `json:"mode"`
}

// SearchResult is a single recipe candidate returned to the client.
// MissingIngredients starts as the plan's inference and is overwritten
// only when detailed verification succeeds (Analyzed=true).
type SearchResult struct {
	Title              string   `json:"title"`
	Link               string   `json:"link"`
	Snippet            string   `json:"snippet"`
	Source             string   `json:"source"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	QueryUsed          string   `json:"queryUsed,omitempty"`
	MissingIngredients []string `json:"missingIngredients"`
	Analyzed           bool     `json:"analyzed"`
}

// SearchResponse is the pipeline output. Results is never empty: every
// failure path substitutes placeholders instead.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// Recommendation is a single dish suggestion.
type Recommendation struct {
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	Difficulty string `json:"difficulty"`
	Time       string `json:"time"`
}

// RecommendResponse is the /recommend output.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}
