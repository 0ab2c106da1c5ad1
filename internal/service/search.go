package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/config"
	"github.com/fridgechef/fridgechef-api/internal/logger"
	"github.com/fridgechef/fridgechef-api/internal/scrape"
	"github.com/fridgechef/fridgechef-api/internal/util"
	"go.uber.org/zap"
)

// Model cascades. Detailed mode prefers the higher-capability model,
// fast mode the lower-latency one; both share the trailing fallback.
var (
	fastPlanCascade     = []string{"gemini-2.5-flash", "gemini-2.0-flash-exp"}
	detailedPlanCascade = []string{"gemini-2.5-pro", "gemini-2.0-flash-exp"}
)

const verifyFallbackModel = "gemini-2.0-flash-exp"

// resultsPerQuery is how many hits each plan query requests.
const resultsPerQuery = 2

// verifyTopN is how many flattened results detailed mode re-analyzes.
// Truncation, not ranking: the first N in entry order.
const verifyTopN = 3

// SearchService orchestrates the recipe search pipeline: plan the
// queries with a model cascade, fan the searches out, optionally scrape
// and verify the top hits, and degrade to placeholders on any stage
// failure. It holds no per-request state.
type SearchService struct {
	Cfg     *config.Config
	Text    ai.TextProvider
	Search  ai.SearchProvider
	Fetcher *scrape.PageFetcher
}

// NewSearchService creates a new SearchService.
func NewSearchService(cfg *config.Config, text ai.TextProvider, search ai.SearchProvider, fetcher *scrape.PageFetcher) *SearchService {
	return &SearchService{
		Cfg:     cfg,
		Text:    text,
		Search:  search,
		Fetcher: fetcher,
	}
}

// FindRecipes runs the full pipeline. It never returns an error: every
// upstream failure ends in a clearly-labeled placeholder response so the
// caller always has something to render. Only input validation happens
// above this boundary.
func (s *SearchService) FindRecipes(ctx context.Context, req SearchRequest) (resp *SearchResponse) {
	ctx, cancel := context.WithTimeout(ctx, s.Cfg.EnvVars.RequestTimeout)
	defer cancel()

	log := logger.Get().With(zap.String("mode", req.Mode), zap.String("dish", req.Dish))

	// The pipeline must never raise past this boundary.
	defer func() {
		if r := recover(); r != nil {
			log.Error("search pipeline panicked", zap.Any("panic", r))
			resp = &SearchResponse{Results: s.placeholderResults(req, "internal pipeline failure")}
		}
	}()

	entries, plannerModel, err := s.plan(ctx, req)
	if err != nil {
		log.Warn("plan stage failed, serving placeholders", zap.Error(err))
		return &SearchResponse{Results: s.placeholderResults(req, planFailureReason(err))}
	}
	log.Info("search plan ready", zap.Int("entries", len(entries)), zap.String("model", plannerModel))

	results := s.executePlan(ctx, entries)

	if req.Mode == ModeDetailed && len(results) > 0 {
		results = s.verifyTop(ctx, results, req.Ingredients, plannerModel)
	}

	if len(results) == 0 {
		log.Warn("no search results, serving placeholders")
		return &SearchResponse{Results: s.placeholderResults(req, "no search results found")}
	}

	return &SearchResponse{Results: results}
}

// plan asks the model cascade to turn the ingredients into exactly three
// search queries with per-query inferred missing ingredients. A parse
// failure is a stage failure, not a partial result.
func (s *SearchService) plan(ctx context.Context, req SearchRequest) ([]PlanEntry, string, error) {
	dish := req.Dish
	if dish == "" {
		dish = "Any dish matching ingredients"
	}

	prompt, err := config.RenderPromptPair(s.Cfg.Prompts.Search.Plan, map[string]interface{}{
		"Ingredients": strings.Join(req.Ingredients, ", "),
		"Dish":        dish,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render plan prompt: %w", err)
	}

	cascade := fastPlanCascade
	if req.Mode == ModeDetailed {
		cascade = detailedPlanCascade
	}

	raw, model, err := ai.Resolve(ctx, s.Text, cascade, prompt)
	if err != nil {
		return nil, "", err
	}

	var entries []PlanEntry
	if err := util.ParseModelJSON(raw, &entries); err != nil {
		return nil, "", fmt.Errorf("plan output not parseable: %w", err)
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("plan contained no entries")
	}

	return entries, model, nil
}

// executePlan issues one search call per plan entry concurrently. A
// failed query contributes zero results; its siblings are unaffected.
// The flattened output preserves entry order, and within each entry the
// order the search service returned. Duplicate links across entries are
// kept: different query framings surfacing the same page is signal, not
// noise.
func (s *SearchService) executePlan(ctx context.Context, entries []PlanEntry) []SearchResult {
	nested := make([][]SearchResult, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry PlanEntry) {
			defer wg.Done()

			items, err := s.Search.Search(ctx, entry.Query, resultsPerQuery)
			if err != nil {
				logger.Get().Warn("search query failed",
					zap.String("query", entry.Query),
					zap.Error(err),
				)
				return
			}

			batch := make([]SearchResult, 0, len(items))
			for _, item := range items {
				batch = append(batch, SearchResult{
					Title:              item.Title,
					Link:               item.Link,
					Snippet:            item.Snippet,
					Source:             item.DisplayLink,
					Thumbnail:          item.Thumbnail,
					QueryUsed:          entry.Query,
					MissingIngredients: entry.InferredMissingIngredients,
				})
			}
			nested[i] = batch
		}(i, entry)
	}
	wg.Wait()

	var flattened []SearchResult
	for _, batch := range nested {
		flattened = append(flattened, batch...)
	}
	return flattened
}

// verifyOutcome is the structured result of one verification slot, so
// filtering operates on explicit variants instead of nil checks.
type verifyOutcome struct {
	result SearchResult
	drop   bool
}

// verifyTop scrapes and re-analyzes the first verifyTopN results
// concurrently, preserving slot order. Only pages the model explicitly
// classifies as non-recipes are dropped; infrastructure failures keep
// the cheaper inferred result so a flaky fetch never penalizes an
// otherwise-good hit.
func (s *SearchService) verifyTop(ctx context.Context, results []SearchResult, ingredients []string, plannerModel string) []SearchResult {
	top := results
	if len(top) > verifyTopN {
		top = top[:verifyTopN]
	}

	outcomes := make([]verifyOutcome, len(top))
	var wg sync.WaitGroup
	for i, res := range top {
		wg.Add(1)
		go func(i int, res SearchResult) {
			defer wg.Done()
			outcomes[i] = s.verifyOne(ctx, res, ingredients, plannerModel)
		}(i, res)
	}
	wg.Wait()

	kept := make([]SearchResult, 0, len(top))
	for _, o := range outcomes {
		if !o.drop {
			kept = append(kept, o.result)
		}
	}
	return kept
}

// verifyOne fetches one result page and asks the model whether it is a
// real recipe and which ingredients it actually needs. The verification
// cascade starts with the model that produced the plan, since it is
// known to be available right now.
func (s *SearchService) verifyOne(ctx context.Context, res SearchResult, ingredients []string, plannerModel string) verifyOutcome {
	log := logger.Get().With(zap.String("link", res.Link))

	pageText, err := s.Fetcher.VisibleText(ctx, res.Link)
	if err != nil {
		log.Warn("page fetch failed, keeping inferred result", zap.Error(err))
		res.Analyzed = false
		return verifyOutcome{result: res}
	}

	prompt, err := config.RenderPromptPair(s.Cfg.Prompts.Search.Verify, map[string]interface{}{
		"Ingredients": strings.Join(ingredients, ", "),
		"PageText":    pageText,
	})
	if err != nil {
		log.Warn("render verify prompt failed, keeping inferred result", zap.Error(err))
		res.Analyzed = false
		return verifyOutcome{result: res}
	}

	cascade := []string{plannerModel}
	if plannerModel != verifyFallbackModel {
		cascade = append(cascade, verifyFallbackModel)
	}

	raw, _, err := ai.Resolve(ctx, s.Text, cascade, prompt)
	if err != nil {
		log.Warn("verification models exhausted, keeping inferred result", zap.Error(err))
		res.Analyzed = false
		return verifyOutcome{result: res}
	}

	var verdict struct {
		Valid                    bool     `json:"valid"`
		ActualMissingIngredients []string `json:"actualMissingIngredients"`
	}
	if err := util.ParseModelJSON(raw, &verdict); err != nil {
		log.Warn("verification output not parseable, keeping inferred result", zap.Error(err))
		res.Analyzed = false
		return verifyOutcome{result: res}
	}

	if !verdict.Valid {
		log.Info("page classified as non-recipe, dropping result")
		return verifyOutcome{drop: true}
	}

	res.MissingIngredients = verdict.ActualMissingIngredients
	res.Analyzed = true
	return verifyOutcome{result: res}
}

// planFailureReason maps plan-stage errors to short operator-readable
// strings embedded in the placeholder snippet.
func planFailureReason(err error) string {
	switch {
	case isNoAPIKeys(err):
		return "no Google API keys configured"
	case isCascadeExhausted(err):
		return "all Gemini models failed, check API key permissions"
	default:
		return "AI response could not be parsed"
	}
}

// placeholderResults is the fixed, clearly-labeled degradation set. The
// reason is embedded for operator diagnosis; the items themselves are
// illustrative, not real search hits.
func (s *SearchService) placeholderResults(req SearchRequest, reason string) []SearchResult {
	dish := req.Dish
	if dish == "" {
		dish = "김치찌개"
	}
	firstIngredient := "재료"
	if len(req.Ingredients) > 0 && req.Ingredients[0] != "" {
		firstIngredient = req.Ingredients[0]
	}

	return []SearchResult{
		{
			Title:              fmt.Sprintf("[예시] %s 황금레시피 (API 키 확인 필요)", dish),
			Link:               "https://www.10000recipe.com/",
			Snippet:            fmt.Sprintf("API 연동에 문제가 있어 예시 결과를 보여드립니다. 환경 변수 설정을 확인해주세요. (%s)", reason),
			Source:             "만개의레시피",
			Thumbnail:          "https://via.placeholder.com/150/orange/white?text=MockResult",
			MissingIngredients: []string{"예시 재료 1", "예시 재료 2"},
		},
		{
			Title:              fmt.Sprintf("[예시] 초간단 %s 활용 요리", firstIngredient),
			Link:               "https://m.blog.naver.com/",
			Snippet:            "냉장고 파먹기 딱 좋은 레시피입니다. 이 결과는 실제 검색 결과가 아닙니다.",
			Source:             "네이버 블로그",
			MissingIngredients: []string{"추가 재료 A"},
		},
	}
}
