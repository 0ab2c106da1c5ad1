package service

import (
	"context"
	"strings"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/config"
	"github.com/fridgechef/fridgechef-api/internal/logger"
	"github.com/fridgechef/fridgechef-api/internal/util"
	"go.uber.org/zap"
)

// recommendCascade prefers the newest preview models and falls back to
// the same workhorse the search pipeline uses.
var recommendCascade = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.0-flash-exp",
}

// RecommendService suggests dishes for a set of on-hand ingredients.
// Like the search pipeline, it never errors: upstream failure yields the
// fixed placeholder set.
type RecommendService struct {
	Cfg  *config.Config
	Text ai.TextProvider
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(cfg *config.Config, text ai.TextProvider) *RecommendService {
	return &RecommendService{Cfg: cfg, Text: text}
}

// Suggest asks the model cascade for 3-5 dish recommendations. Any
// failure, from missing keys to unparseable output, degrades to the
// placeholder set rather than surfacing an error.
func (s *RecommendService) Suggest(ctx context.Context, ingredients []string) *RecommendResponse {
	ctx, cancel := context.WithTimeout(ctx, s.Cfg.EnvVars.RequestTimeout)
	defer cancel()

	log := logger.Get().With(zap.Int("ingredients", len(ingredients)))

	prompt, err := config.RenderPromptPair(s.Cfg.Prompts.Recommend.Suggest, map[string]interface{}{
		"Ingredients": strings.Join(ingredients, ", "),
	})
	if err != nil {
		log.Error("render recommend prompt failed", zap.Error(err))
		return &RecommendResponse{Recommendations: placeholderRecommendations()}
	}

	raw, model, err := ai.Resolve(ctx, s.Text, recommendCascade, prompt)
	if err != nil {
		log.Warn("recommendation models failed, serving placeholders", zap.Error(err))
		return &RecommendResponse{Recommendations: placeholderRecommendations()}
	}

	var recommendations []Recommendation
	if err := util.ParseModelJSON(raw, &recommendations); err != nil {
		log.Warn("recommendation output not parseable, serving placeholders",
			zap.String("model", model),
			zap.Error(err),
		)
		return &RecommendResponse{Recommendations: placeholderRecommendations()}
	}
	if len(recommendations) == 0 {
		return &RecommendResponse{Recommendations: placeholderRecommendations()}
	}

	log.Info("recommendations generated", zap.String("model", model), zap.Int("count", len(recommendations)))
	return &RecommendResponse{Recommendations: recommendations}
}

// placeholderRecommendations is the fixed demo set served when the text
// service is unreachable or unconfigured.
func placeholderRecommendations() []Recommendation {
	return []Recommendation{
		{Name: "김치찌개", Reason: "김치가 있어 만들기 좋습니다.", Difficulty: "쉬움", Time: "20분"},
		{Name: "된장찌개", Reason: "기본적인 재료로 만들 수 있습니다.", Difficulty: "보통", Time: "30분"},
		{Name: "계란말이", Reason: "계란이 없어도 추천해봅니다.", Difficulty: "쉬움", Time: "10분"},
	}
}
