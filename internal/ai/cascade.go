package ai

import (
	"context"

	"github.com/fridgechef/fridgechef-api/internal/logger"
	"go.uber.org/zap"
)

// Resolve tries each model identifier in order against the provider and
// returns the first successful text along with the identifier that
// produced it, so callers can reuse the known-good model for follow-up
// calls. Model availability shifts with account, region, and quota, so
// the candidate list is a soft preference order rather than a hard
// dependency; only full exhaustion is an error (*CascadeExhaustedError).
func Resolve(ctx context.Context, provider TextProvider, models []string, prompt string) (string, string, error) {
	var lastErr error
	for _, model := range models {
		text, err := provider.Generate(ctx, model, prompt)
		if err == nil {
			return text, model, nil
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		logger.Get().Warn("model failed, trying next in cascade",
			zap.String("model", model),
			zap.Error(err),
		)
		lastErr = err
	}
	return "", "", &CascadeExhaustedError{Models: models, LastErr: lastErr}
}
