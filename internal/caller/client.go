// Package caller drives the conversational model: it builds prompts,
// spaces requests through a shared throttle, retries overload failures
// with backoff and strips code fences from what comes back.
package caller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region config

// Config tunes generation and the retry policy.
type Config struct {
	TurnModel          string
	PersonaModel       string
	TurnTemperature    float64
	TurnMaxTokens      int
	PersonaTemperature float64
	PersonaMaxTokens   int
	MaxAttempts        int
	BackoffBase        time.Duration
}

// DefaultConfig returns the production generation settings.
func DefaultConfig() Config {
	return Config{
		TurnModel:          "gemini-2.5-flash-lite",
		PersonaModel:       "gemini-2.5-flash-lite",
		TurnTemperature:    0.7,
		TurnMaxTokens:      1024,
		PersonaTemperature: 0.9,
		PersonaMaxTokens:   512,
		MaxAttempts:        3,
		BackoffBase:        2 * time.Second,
	}
}

// #endregion config

// #region client

// Client generates personas and turns through a codec.Backend.
type Client struct {
	backend  codec.Backend
	throttle *Throttle
	cfg      Config
	rng      *rand.Rand
	sleep    func(context.Context, time.Duration) error
	log      *slog.Logger
}

// New builds a Client. A nil throttle disables request spacing.
func New(backend codec.Backend, throttle *Throttle, cfg Config) *Client {
	if throttle == nil {
		throttle = NewThrottle(0)
	}
	return &Client{
		backend:  backend,
		throttle: throttle,
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep:    sleepCtx,
		log:      logging.New("caller"),
	}
}

// #endregion client

// #region generate-turn

// GenerateTurn returns the caller model's raw JSON for one turn with any
// code fences removed. Exhausted retries yield ErrRateLimitExceeded.
func (c *Client) GenerateTurn(ctx context.Context, req TurnRequest) (string, error) {
	text, err := c.complete(ctx, codec.Request{
		Kind:        codec.KindTurn,
		Prompt:      BuildTurnPrompt(req),
		Model:       c.cfg.TurnModel,
		Temperature: c.cfg.TurnTemperature,
		MaxTokens:   c.cfg.TurnMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return StripFences(text), nil
}

// #endregion generate-turn

// #region generate-persona

// GeneratePersona asks for a new caller identity. A payload that fails
// validation is replaced by one of the two fallback personas; transport
// failures, including ErrRateLimitExceeded, are returned.
func (c *Client) GeneratePersona(ctx context.Context) (scenario.Persona, error) {
	if r, ok := c.backend.(interface{ Rewind() }); ok {
		r.Rewind()
	}

	text, err := c.complete(ctx, codec.Request{
		Kind:        codec.KindPersona,
		Prompt:      PersonaPrompt,
		Model:       c.cfg.PersonaModel,
		Temperature: c.cfg.PersonaTemperature,
		MaxTokens:   c.cfg.PersonaMaxTokens,
	})
	if err != nil {
		if errors.Is(err, ErrRateLimitExceeded) {
			return scenario.Persona{}, err
		}
		return scenario.Persona{}, fmt.Errorf("generate persona: %w", err)
	}

	p, err := ParsePersona(text)
	if err != nil {
		fallback := scenario.FallbackPersona(c.rng.IntN(2) == 0)
		c.log.Warn("persona payload rejected, using fallback", "error", err, "persona", fallback.Name)
		return fallback, nil
	}
	return p, nil
}

// #endregion generate-persona
