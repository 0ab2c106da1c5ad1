package testutil

import (
	"time"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/config"
)

// TestConfig returns a config with inline prompt templates so tests do
// not depend on the configs/ directory on disk.
func TestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			Port:           "8080",
			RequestTimeout: 10 * time.Second,
			FetchTimeout:   2 * time.Second,
		},
		Prompts: &config.Prompts{
			Search: config.SearchPrompts{
				Plan: config.PromptPair{
					System: "Respond with JSON only.",
					User:   "Ingredients: {{.Ingredients}} Dish: {{.Dish}}",
				},
				Verify: config.PromptPair{
					System: "Respond with JSON only.",
					User:   "Ingredients: {{.Ingredients}} Text: {{.PageText}}",
				},
			},
			Recommend: config.RecommendPrompts{
				Suggest: config.PromptPair{
					System: "Respond with JSON only.",
					User:   "Ingredients: {{.Ingredients}}",
				},
			},
		},
	}
}

// PlanJSON is a well-formed three-entry plan, the shape the plan stage
// expects from the model.
const PlanJSON = `[
  {"query": "김치 계란 볶음밥 레시피", "inferredMissingIngredients": ["밥", "참기름"]},
  {"query": "김치전 만들기", "inferredMissingIngredients": ["부침가루"]},
  {"query": "김치 계란국 끓이는 법", "inferredMissingIngredients": ["대파", "멸치육수"]}
]`

// FencedPlanJSON is the same plan wrapped in the markdown fence models
// tend to add despite instructions.
const FencedPlanJSON = "```json\n" + PlanJSON + "\n```"

// SearchItems returns n fake search hits for a query.
func SearchItems(query string, n int) []ai.SearchItem {
	items := make([]ai.SearchItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, ai.SearchItem{
			Title:       query + " 결과",
			Link:        "https://blog.example.com/" + query + "/" + string(rune('a'+i)),
			Snippet:     "레시피 미리보기",
			DisplayLink: "blog.example.com",
		})
	}
	return items
}
