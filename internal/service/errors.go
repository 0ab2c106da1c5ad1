package service

import (
	"errors"

	"github.com/fridgechef/fridgechef-api/internal/ai"
)

// isNoAPIKeys reports whether the failure chain bottoms out in a missing
// credential configuration. Checked before cascade exhaustion because a
// key-less pool exhausts every cascade trivially.
func isNoAPIKeys(err error) bool {
	return errors.Is(err, ai.ErrNoAPIKeys)
}

func isCascadeExhausted(err error) bool {
	var cascadeErr *ai.CascadeExhaustedError
	return errors.As(err, &cascadeErr)
}
