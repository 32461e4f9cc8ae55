package evaluator

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #endregion

// #region errors

// ErrMalformedResponse marks a caller payload that breaks the turn schema.
var ErrMalformedResponse = errors.New("malformed response")

// #endregion

// #region outcome

// Outcome is the canonical, validated result of one caller turn.
type Outcome struct {
	ThreatLevel int
	TerminalLog string
	Tactic      scenario.Tactic // "" when none
	Damage      float64
	Status      scenario.Status
	Speech      string
	TurnAction  scenario.TurnAction
	Fallback    bool
}

// NeutralThreat is the starting and fallback threat level.
const NeutralThreat = 50

// Fallback is the synthetic outcome used when the caller payload is
// unusable, so the call keeps going instead of aborting.
func Fallback() Outcome {
	return Outcome{
		ThreatLevel: NeutralThreat,
		TerminalLog: "SYSTEM ERROR // CONNECTION TIMEOUT // RETRYING...",
		Status:      scenario.StatusActive,
		Speech:      "Sorry, connection issues. Can you repeat that?",
		TurnAction:  scenario.ActionHook,
		Fallback:    true,
	}
}

// #endregion

// #region decode

// Decode parses and validates a caller payload. Any schema violation is
// reported as ErrMalformedResponse.
func Decode(text string) (scenario.TurnResponse, error) {
	var r scenario.TurnResponse
	text = strings.TrimSpace(text)
	if text == "" {
		return r, fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return r, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := Validate(r); err != nil {
		return r, err
	}
	return r, nil
}

// Validate checks the required fields: speech, terminal_log, threat_level.
func Validate(r scenario.TurnResponse) error {
	switch {
	case strings.TrimSpace(r.Speech) == "":
		return fmt.Errorf("%w: missing speech", ErrMalformedResponse)
	case strings.TrimSpace(r.TerminalLog) == "":
		return fmt.Errorf("%w: missing terminal_log", ErrMalformedResponse)
	case r.ThreatLevel == nil:
		return fmt.Errorf("%w: missing threat_level", ErrMalformedResponse)
	case math.IsNaN(*r.ThreatLevel) || math.IsInf(*r.ThreatLevel, 0):
		return fmt.Errorf("%w: threat_level not finite", ErrMalformedResponse)
	}
	return nil
}

// #endregion

// #region interpret

// Interpret normalizes a validated payload into an Outcome. Threat is
// rounded and clamped to [0,100], unknown statuses count as active,
// known tactic labels are canonicalized (others kept as trimmed) and
// negative damage is ignored.
func Interpret(r scenario.TurnResponse) (Outcome, error) {
	if err := Validate(r); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		ThreatLevel: Clamp(int(math.Round(*r.ThreatLevel)), 0, 100),
		TerminalLog: strings.TrimSpace(r.TerminalLog),
		Speech:      strings.TrimSpace(r.Speech),
		Status:      normalizeStatus(r.Status),
		TurnAction:  scenario.TurnAction(strings.ToLower(strings.TrimSpace(r.TurnAction))),
	}

	if r.DetectedTactic != nil {
		if t, ok := scenario.ParseTactic(*r.DetectedTactic); ok {
			out.Tactic = t
		} else {
			out.Tactic = scenario.Tactic(strings.TrimSpace(*r.DetectedTactic))
		}
	}

	if r.Damage != nil && *r.Damage > 0 && !math.IsInf(*r.Damage, 0) {
		out.Damage = *r.Damage
	}

	return out, nil
}

// Evaluate decodes and interprets in one step. On any failure it returns
// the fallback outcome together with the error.
func Evaluate(text string) (Outcome, error) {
	r, err := Decode(text)
	if err != nil {
		return Fallback(), err
	}
	out, err := Interpret(r)
	if err != nil {
		return Fallback(), err
	}
	return out, nil
}

func normalizeStatus(s scenario.Status) scenario.Status {
	switch scenario.Status(strings.ToLower(strings.TrimSpace(string(s)))) {
	case scenario.StatusTerminatedSuccess:
		return scenario.StatusTerminatedSuccess
	case scenario.StatusSystemBreached:
		return scenario.StatusSystemBreached
	default:
		return scenario.StatusActive
	}
}

// #endregion

// #region clamp

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion
