package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fridgechef/fridgechef-api/internal/logger"
	"go.uber.org/zap"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements TextProvider against the Google Gemini
// generateContent REST API. Each invocation walks a shuffled view of the
// key pool, one attempt per key, stopping at the first success. Backoff
// is deliberately absent at this layer; fallback across model variants
// belongs to the cascade above it.
type GeminiProvider struct {
	pool       *KeyPool
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini text provider backed by the given
// key pool.
func NewGeminiProvider(pool *KeyPool) *GeminiProvider {
	return &GeminiProvider{
		pool:    pool,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Generate sends the prompt to the named model, rotating through every
// configured key before giving up. Per-key failures (auth, quota,
// transient network) are swallowed and logged with a masked key suffix;
// full exhaustion returns a *KeysExhaustedError.
func (p *GeminiProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	keys := p.pool.Shuffled()
	if len(keys) == 0 {
		return "", ErrNoAPIKeys
	}

	var lastErr error
	for _, key := range keys {
		text, err := p.generateWithKey(ctx, model, prompt, key)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			// The context is dead; burning the remaining keys would
			// just repeat the same failure.
			return "", ctx.Err()
		}
		logger.Get().Warn("gemini key attempt failed",
			zap.String("model", model),
			zap.String("key", MaskKey(key)),
			zap.Error(err),
		)
		lastErr = err
	}

	logger.Get().Warn("all gemini keys failed",
		zap.String("model", model),
		zap.Int("keys", len(keys)),
	)
	return "", &KeysExhaustedError{Model: model, Attempts: len(keys), LastErr: lastErr}
}

// --- Gemini generateContent wire types ---

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) generateWithKey(ctx context.Context, model, prompt, key string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp geminiErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("gemini error (%d %s): %s", resp.StatusCode, errResp.Error.Status, errResp.Error.Message)
		}
		return "", fmt.Errorf("gemini error: status %d", resp.StatusCode)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var text string
	for _, candidate := range genResp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in gemini response")
	}

	return text, nil
}
