// Package codec holds the transports that carry prompts to the caller
// model and bring raw text back: Gemini REST, a gRPC sidecar, and a
// scripted fixture for offline play and tests.
package codec

import (
	"context"
	"errors"
	"strings"
)

// #region types

// Kind distinguishes persona generation from per-turn completions.
type Kind string

const (
	KindTurn    Kind = "turn"
	KindPersona Kind = "persona"
)

// Request is one completion request.
type Request struct {
	Kind        Kind
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Backend returns the model's raw text for a prompt.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// #endregion types

// #region errors

// ErrRetryable marks a single overload/quota/rate-limit failure. Callers
// may retry it; anything else is final.
var ErrRetryable = errors.New("retryable upstream failure")

var retryableMarkers = []string{"503", "429", "overloaded", "quota"}

// IsRetryableMessage reports whether an upstream error text carries an
// overload, quota or rate-limit signal.
func IsRetryableMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range retryableMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// #endregion errors
