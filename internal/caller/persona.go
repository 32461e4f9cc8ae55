package caller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// ErrInvalidPersona marks a persona payload with missing or mistyped fields.
var ErrInvalidPersona = errors.New("invalid persona")

// Stability bounds for generated voices.
const (
	MinStability = 0.2
	MaxStability = 0.9
)

type personaPayload struct {
	Name           string   `json:"persona_name"`
	Organization   string   `json:"organization"`
	IsScam         *bool    `json:"is_scam"`
	Goal           string   `json:"scam_goal"`
	OpeningLine    string   `json:"opening_line"`
	VoiceStability *float64 `json:"voice_stability_setting"`
	VoiceID        string   `json:"voice_id"`
}

// ParsePersona decodes and validates a persona payload. Every field is
// required; stability is clamped into [MinStability, MaxStability].
func ParsePersona(text string) (scenario.Persona, error) {
	text = StripFences(text)
	if text == "" {
		return scenario.Persona{}, fmt.Errorf("%w: empty payload", ErrInvalidPersona)
	}

	var raw personaPayload
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return scenario.Persona{}, fmt.Errorf("%w: %v", ErrInvalidPersona, err)
	}

	var missing []string
	if strings.TrimSpace(raw.Name) == "" {
		missing = append(missing, "persona_name")
	}
	if strings.TrimSpace(raw.Organization) == "" {
		missing = append(missing, "organization")
	}
	if raw.IsScam == nil {
		missing = append(missing, "is_scam")
	}
	if strings.TrimSpace(raw.Goal) == "" {
		missing = append(missing, "scam_goal")
	}
	if strings.TrimSpace(raw.OpeningLine) == "" {
		missing = append(missing, "opening_line")
	}
	if raw.VoiceStability == nil {
		missing = append(missing, "voice_stability_setting")
	}
	if len(missing) > 0 {
		return scenario.Persona{}, fmt.Errorf("%w: missing %s", ErrInvalidPersona, strings.Join(missing, ", "))
	}

	return scenario.Persona{
		Name:           strings.TrimSpace(raw.Name),
		Organization:   strings.TrimSpace(raw.Organization),
		IsScam:         *raw.IsScam,
		Goal:           strings.TrimSpace(raw.Goal),
		OpeningLine:    strings.TrimSpace(raw.OpeningLine),
		VoiceStability: clampStability(*raw.VoiceStability),
		VoiceID:        raw.VoiceID,
	}, nil
}

func clampStability(v float64) float64 {
	if v < MinStability {
		return MinStability
	}
	if v > MaxStability {
		return MaxStability
	}
	return v
}
