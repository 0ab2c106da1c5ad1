package ai

import (
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"

	"github.com/fridgechef/fridgechef-api/internal/logger"
	"go.uber.org/zap"
)

// maxNumberedKeys is how far the numbered GOOGLE_API_KEY_N scan goes.
// Gaps in the numbering are tolerated.
const maxNumberedKeys = 10

// KeyPool holds the interchangeable API keys for the generative-text
// service. The pool is loaded once at startup and immutable afterwards;
// the rotation cursor is the only mutable state.
type KeyPool struct {
	keys   []string
	cursor atomic.Uint64
}

// LoadKeyPool reads GOOGLE_API_KEY plus the numbered GOOGLE_API_KEY_1..N
// variants from the environment into a de-duplicated pool. An empty pool
// is not an error here; callers get ErrNoAPIKeys on first use instead,
// which keeps key-less deployments on the placeholder path.
func LoadKeyPool() *KeyPool {
	var keys []string
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		keys = append(keys, key)
	}
	for i := 1; i <= maxNumberedKeys; i++ {
		if key := os.Getenv(fmt.Sprintf("GOOGLE_API_KEY_%d", i)); key != "" {
			keys = append(keys, key)
		}
	}

	pool := NewKeyPool(keys)
	logger.Get().Info("loaded google API key pool", zap.Int("keys", pool.Size()))
	return pool
}

// NewKeyPool builds a pool from the given keys, dropping duplicates while
// preserving first-occurrence order.
func NewKeyPool(keys []string) *KeyPool {
	seen := make(map[string]struct{}, len(keys))
	deduped := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
	}
	return &KeyPool{keys: deduped}
}

// Size returns the number of distinct keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Next returns a key using round-robin rotation. Rotation spreads load
// across keys between invocations; it is a heuristic, not a correctness
// mechanism, so concurrent callers occasionally landing on the same key
// is fine.
func (p *KeyPool) Next() (string, error) {
	if len(p.keys) == 0 {
		return "", ErrNoAPIKeys
	}
	n := p.cursor.Add(1) - 1
	return p.keys[n%uint64(len(p.keys))], nil
}

// Shuffled returns a freshly shuffled copy of all keys for one
// attempt-cycle, so concurrent requests do not correlate on key order.
func (p *KeyPool) Shuffled() []string {
	shuffled := make([]string, len(p.keys))
	copy(shuffled, p.keys)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// MaskKey renders a key as a short non-identifying suffix for logs.
// Full credentials must never be logged.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "..." + key[len(key)-4:]
}
