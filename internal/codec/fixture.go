package codec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region fixture-types

// Fixture is a scripted caller: an optional persona and the per-turn
// replies handed back in order. YAML or JSON.
type Fixture struct {
	Description string `yaml:"description,omitempty"`
	// Persona is returned verbatim (as JSON) for persona requests. When
	// absent a catalog persona of CallType (or any type) is used.
	Persona  map[string]any `yaml:"persona,omitempty"`
	CallType string         `yaml:"call_type,omitempty"`
	Turns    []FixtureTurn  `yaml:"turns"`
}

// FixtureTurn is one scripted reply. Exactly one field should be set.
type FixtureTurn struct {
	Response map[string]any `yaml:"response,omitempty"`
	Raw      string         `yaml:"raw,omitempty"`
	// Error is "rate_limit" for a retryable failure, anything else for a
	// hard one.
	Error string `yaml:"error,omitempty"`
}

// ErrFixtureExhausted is returned when a turn is requested past the script.
var ErrFixtureExhausted = errors.New("fixture exhausted")

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes fixture bytes.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// #endregion fixture-loader

// #region fixture-backend

// FixtureBackend serves a Fixture as a Backend. Persona requests may be
// repeated; each turn request consumes the next scripted reply.
type FixtureBackend struct {
	mu      sync.Mutex
	fixture *Fixture
	rng     *rand.Rand
	next    int
	prompts []Request
}

// NewFixtureBackend wraps f. rng picks catalog personas when f has none.
func NewFixtureBackend(f *Fixture, rng *rand.Rand) *FixtureBackend {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &FixtureBackend{fixture: f, rng: rng}
}

// Complete implements Backend.
func (b *FixtureBackend) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, req)

	if req.Kind == KindPersona {
		return b.persona()
	}

	if b.next >= len(b.fixture.Turns) {
		return "", ErrFixtureExhausted
	}
	step := b.fixture.Turns[b.next]
	b.next++

	switch {
	case step.Error != "":
		if strings.EqualFold(step.Error, "rate_limit") {
			return "", fmt.Errorf("%w: fixture 429 quota exceeded", ErrRetryable)
		}
		return "", fmt.Errorf("fixture failure: %s", step.Error)
	case step.Raw != "":
		return step.Raw, nil
	case step.Response != nil:
		out, err := json.Marshal(step.Response)
		if err != nil {
			return "", fmt.Errorf("marshal fixture response: %w", err)
		}
		return string(out), nil
	}
	return "", fmt.Errorf("fixture turn %d is empty", b.next)
}

func (b *FixtureBackend) persona() (string, error) {
	if b.fixture.Persona != nil {
		out, err := json.Marshal(b.fixture.Persona)
		if err != nil {
			return "", fmt.Errorf("marshal fixture persona: %w", err)
		}
		return string(out), nil
	}
	var e scenario.Entry
	switch scenario.CallType(strings.ToUpper(b.fixture.CallType)) {
	case scenario.Scam, scenario.Genuine:
		e = scenario.EntryByType(b.rng, scenario.CallType(strings.ToUpper(b.fixture.CallType)))
	default:
		e = scenario.RandomEntry(b.rng)
	}
	out, err := json.Marshal(e.Persona)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Requests returns a copy of every request seen so far.
func (b *FixtureBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.prompts...)
}

// Rewind restarts the turn script for a new call.
func (b *FixtureBackend) Rewind() {
	b.mu.Lock()
	b.next = 0
	b.mu.Unlock()
}

// #endregion fixture-backend
