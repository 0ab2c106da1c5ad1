package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAPIKeys indicates that no generative-text API keys are configured.
// It is surfaced on use rather than at startup so deployments without
// keys still boot and degrade to placeholder results.
var ErrNoAPIKeys = errors.New("no google API keys configured")

// KeysExhaustedError indicates that every key in the pool failed for a
// single model invocation.
type KeysExhaustedError struct {
	Model    string
	Attempts int
	LastErr  error
}

func (e *KeysExhaustedError) Error() string {
	return fmt.Sprintf("all %d API keys failed for model %s: %v", e.Attempts, e.Model, e.LastErr)
}

func (e *KeysExhaustedError) Unwrap() error {
	return e.LastErr
}

// CascadeExhaustedError indicates that every model in a fallback cascade
// failed, keys included.
type CascadeExhaustedError struct {
	Models  []string
	LastErr error
}

func (e *CascadeExhaustedError) Error() string {
	return fmt.Sprintf("all models exhausted [%s]: %v", strings.Join(e.Models, ", "), e.LastErr)
}

func (e *CascadeExhaustedError) Unwrap() error {
	return e.LastErr
}
