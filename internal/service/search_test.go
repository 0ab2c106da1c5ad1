package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/scrape"
	"github.com/fridgechef/fridgechef-api/internal/testutil"
)

var planQueries = []string{
	"김치 계란 볶음밥 레시피",
	"김치전 만들기",
	"김치 계란국 끓이는 법",
}

func fastRequest() SearchRequest {
	return SearchRequest{
		Ingredients: []string{"김치", "계란"},
		Mode:        ModeFast,
	}
}

func planOnlyText() *testutil.MockTextProvider {
	return &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			return testutil.FencedPlanJSON, nil
		},
	}
}

func TestFindRecipes_FastModeHealthy(t *testing.T) {
	search := &testutil.MockSearchProvider{
		ResultsByQuery: map[string][]ai.SearchItem{
			planQueries[0]: testutil.SearchItems(planQueries[0], 2),
			planQueries[1]: testutil.SearchItems(planQueries[1], 1),
			planQueries[2]: testutil.SearchItems(planQueries[2], 1),
		},
	}

	svc := NewSearchService(testutil.TestConfig(), planOnlyText(), search, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	if len(search.Queries) != 3 {
		t.Errorf("search executed %d queries, want exactly 3 from the plan", len(search.Queries))
	}
	if len(resp.Results) != 4 {
		t.Fatalf("got %d results, want 4 flattened", len(resp.Results))
	}

	// Entry order preserved in the flattened output.
	wantQueries := []string{planQueries[0], planQueries[0], planQueries[1], planQueries[2]}
	for i, res := range resp.Results {
		if res.QueryUsed != wantQueries[i] {
			t.Errorf("result %d from query %q, want %q", i, res.QueryUsed, wantQueries[i])
		}
		if res.Analyzed {
			t.Errorf("result %d analyzed = true, fast mode must not verify", i)
		}
	}

	// Missing ingredients initialized from the originating plan entry.
	if got := resp.Results[0].MissingIngredients; len(got) != 2 || got[0] != "밥" {
		t.Errorf("result 0 missing ingredients = %v, want plan inference [밥 참기름]", got)
	}
	if got := resp.Results[2].MissingIngredients; len(got) != 1 || got[0] != "부침가루" {
		t.Errorf("result 2 missing ingredients = %v, want [부침가루]", got)
	}
}

func TestFindRecipes_PartialSearchFailure(t *testing.T) {
	// One query fails; its siblings still contribute.
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchItem, error) {
			if query == planQueries[1] {
				return nil, errors.New("quota exceeded")
			}
			return testutil.SearchItems(query, 1), nil
		},
	}

	svc := NewSearchService(testutil.TestConfig(), planOnlyText(), search, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2 (failed entry contributes zero)", len(resp.Results))
	}
	if resp.Results[0].QueryUsed != planQueries[0] || resp.Results[1].QueryUsed != planQueries[2] {
		t.Errorf("surviving results out of entry order: %q, %q",
			resp.Results[0].QueryUsed, resp.Results[1].QueryUsed)
	}
}

func TestFindRecipes_DetailedFetchFailureKeepsInferredResults(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			if strings.Contains(prompt, "Text:") {
				t.Error("verification model called although every fetch failed")
			}
			return testutil.FencedPlanJSON, nil
		},
	}
	// Links point at a closed port so every fetch fails fast.
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchItem, error) {
			return []ai.SearchItem{{
				Title:       query,
				Link:        "http://127.0.0.1:9/" + query,
				Snippet:     "미리보기",
				DisplayLink: "blog.example.com",
			}}, nil
		},
	}

	req := fastRequest()
	req.Mode = ModeDetailed
	svc := NewSearchService(testutil.TestConfig(), text, search, scrape.NewPageFetcher(300*time.Millisecond))
	resp := svc.FindRecipes(context.Background(), req)

	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3 (verification failure must not drop slots)", len(resp.Results))
	}
	for i, res := range resp.Results {
		if res.Analyzed {
			t.Errorf("result %d analyzed = true, want false after fetch failure", i)
		}
		if res.QueryUsed != planQueries[i] {
			t.Errorf("result %d out of order: %q", i, res.QueryUsed)
		}
		if len(res.MissingIngredients) == 0 {
			t.Errorf("result %d lost its inferred missing ingredients", i)
		}
	}
}

func TestFindRecipes_DetailedVerification(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/spam") {
			fmt.Fprint(w, "<html><body>SPAM casino page</body></html>")
			return
		}
		fmt.Fprint(w, "<html><body>김치찌개 레시피: 김치, 돼지고기, 두부</body></html>")
	}))
	defer pages.Close()

	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			if !strings.Contains(prompt, "Text:") {
				return testutil.FencedPlanJSON, nil
			}
			if strings.Contains(prompt, "SPAM") {
				return `{"valid": false, "actualMissingIngredients": []}`, nil
			}
			return "```json\n{\"valid\": true, \"actualMissingIngredients\": [\"고추장\"]}\n```", nil
		},
	}
	linkByQuery := map[string]string{
		planQueries[0]: pages.URL + "/good/0",
		planQueries[1]: pages.URL + "/spam/1",
		planQueries[2]: pages.URL + "/good/2",
	}
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchItem, error) {
			return []ai.SearchItem{{Title: query, Link: linkByQuery[query], DisplayLink: "blog.example.com"}}, nil
		},
	}

	req := fastRequest()
	req.Mode = ModeDetailed
	svc := NewSearchService(testutil.TestConfig(), text, search, scrape.NewPageFetcher(2*time.Second))
	resp := svc.FindRecipes(context.Background(), req)

	// The spam slot is classified invalid and dropped; order of the
	// surviving slots is preserved.
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2 after invalid-page filtering", len(resp.Results))
	}
	for i, res := range resp.Results {
		if strings.Contains(res.Link, "/spam/") {
			t.Errorf("result %d is the invalid page, should have been dropped", i)
		}
		if !res.Analyzed {
			t.Errorf("result %d analyzed = false, want true after successful verification", i)
		}
		if len(res.MissingIngredients) != 1 || res.MissingIngredients[0] != "고추장" {
			t.Errorf("result %d missing ingredients = %v, want verified [고추장]", i, res.MissingIngredients)
		}
	}
}

func TestFindRecipes_DetailedTruncatesToTopThree(t *testing.T) {
	text := planOnlyText()
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchItem, error) {
			return testutil.SearchItems(query, 2), nil
		},
	}

	req := fastRequest()
	req.Mode = ModeDetailed
	// Closed port: verification degrades, slots are kept.
	svc := NewSearchService(testutil.TestConfig(), text, search, scrape.NewPageFetcher(300*time.Millisecond))

	// All six flattened links are unreachable; detailed mode analyzes
	// and returns only the first three.
	resp := svc.FindRecipes(context.Background(), req)

	if len(resp.Results) > verifyTopN {
		t.Errorf("detailed mode returned %d results, want at most %d", len(resp.Results), verifyTopN)
	}
}

func TestFindRecipes_PlanCascadeExhausted(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			return "", &ai.KeysExhaustedError{Model: model, Attempts: 2, LastErr: errors.New("403")}
		},
	}

	svc := NewSearchService(testutil.TestConfig(), text, &testutil.MockSearchProvider{}, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	assertPlaceholder(t, resp)
	if !strings.Contains(resp.Results[0].Snippet, "Gemini") {
		t.Errorf("placeholder snippet should name the failure reason, got %q", resp.Results[0].Snippet)
	}
}

func TestFindRecipes_NoAPIKeysReason(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			return "", ai.ErrNoAPIKeys
		},
	}

	svc := NewSearchService(testutil.TestConfig(), text, &testutil.MockSearchProvider{}, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	assertPlaceholder(t, resp)
	if !strings.Contains(resp.Results[0].Snippet, "API keys") {
		t.Errorf("placeholder snippet should mention missing keys, got %q", resp.Results[0].Snippet)
	}
}

func TestFindRecipes_PlanParseFailure(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			return "Sure! Here are some ideas for you.", nil
		},
	}

	svc := NewSearchService(testutil.TestConfig(), text, &testutil.MockSearchProvider{}, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	assertPlaceholder(t, resp)
}

func TestFindRecipes_ZeroSearchResults(t *testing.T) {
	search := &testutil.MockSearchProvider{Err: errors.New("search service down")}

	svc := NewSearchService(testutil.TestConfig(), planOnlyText(), search, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	assertPlaceholder(t, resp)
}

func TestFindRecipes_RecoversFromPanic(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			panic("provider bug")
		},
	}

	svc := NewSearchService(testutil.TestConfig(), text, &testutil.MockSearchProvider{}, nil)
	resp := svc.FindRecipes(context.Background(), fastRequest())

	assertPlaceholder(t, resp)
}

func TestFindRecipes_PlaceholderUsesRequestContext(t *testing.T) {
	text := &testutil.MockTextProvider{
		GenerateFunc: func(ctx context.Context, model, prompt string) (string, error) {
			return "", ai.ErrNoAPIKeys
		},
	}

	svc := NewSearchService(testutil.TestConfig(), text, &testutil.MockSearchProvider{}, nil)
	req := SearchRequest{Ingredients: []string{"돼지고기"}, Dish: "김치찜", Mode: ModeFast}
	resp := svc.FindRecipes(context.Background(), req)

	if !strings.Contains(resp.Results[0].Title, "김치찜") {
		t.Errorf("placeholder title should reference the requested dish, got %q", resp.Results[0].Title)
	}
	if !strings.Contains(resp.Results[1].Title, "돼지고기") {
		t.Errorf("placeholder title should reference the first ingredient, got %q", resp.Results[1].Title)
	}
}

// assertPlaceholder checks the degradation invariant: a non-empty,
// clearly-labeled result set instead of an error.
func assertPlaceholder(t *testing.T, resp *SearchResponse) {
	t.Helper()
	if resp == nil || len(resp.Results) == 0 {
		t.Fatal("degradation must yield a non-empty response")
	}
	for i, res := range resp.Results {
		if !strings.Contains(res.Title, "[예시]") {
			t.Errorf("placeholder result %d not labeled as illustrative: %q", i, res.Title)
		}
	}
}
