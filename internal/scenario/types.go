package scenario

import "strings"

// #region call-type

// CallType says whether the caller is running a scam.
type CallType string

const (
	Scam    CallType = "SCAM"
	Genuine CallType = "GENUINE"
)

// #endregion

// #region tactic

// Tactic is a manipulation technique (scam) or a trust signal (genuine)
// the caller shows in a turn.
type Tactic string

const (
	Urgency   Tactic = "Urgency"
	Isolation Tactic = "Isolation"
	Authority Tactic = "Authority"
	Threat    Tactic = "Threat"

	Professional   Tactic = "Professional"
	LegitimateAuth Tactic = "Legitimate Auth"
	CalmTone       Tactic = "Calm Tone"
)

var (
	ScamTactics       = []Tactic{Urgency, Isolation, Authority, Threat}
	GenuineIndicators = []Tactic{Professional, LegitimateAuth, CalmTone}
)

// ParseTactic matches a label case-insensitively against the closed set.
func ParseTactic(s string) (Tactic, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, group := range [][]Tactic{ScamTactics, GenuineIndicators} {
		for _, t := range group {
			if strings.EqualFold(string(t), s) {
				return t, true
			}
		}
	}
	return "", false
}

// #endregion

// #region status

// Status is the caller model's verdict on the call after a turn.
type Status string

const (
	StatusActive            Status = "active"
	StatusTerminatedSuccess Status = "terminated_success"
	StatusSystemBreached    Status = "system_breached"
)

// TurnAction is the escalation step the caller claims to be on.
type TurnAction string

const (
	ActionHook      TurnAction = "hook"
	ActionEscalate  TurnAction = "escalate"
	ActionIsolate   TurnAction = "isolate"
	ActionThreaten  TurnAction = "threaten"
	ActionUltimatum TurnAction = "ultimatum"
)

// EscalationSteps maps turn N (1-based) to its scripted step.
var EscalationSteps = []TurnAction{ActionHook, ActionEscalate, ActionIsolate, ActionThreaten, ActionUltimatum}

// StepForTurn returns the escalation step for a 1-based turn number,
// clamped to the script's ends.
func StepForTurn(turn int) TurnAction {
	if turn < 1 {
		turn = 1
	}
	if turn > len(EscalationSteps) {
		turn = len(EscalationSteps)
	}
	return EscalationSteps[turn-1]
}

// BreachDamage is the simulated loss when the caller extracts real data.
const BreachDamage = 5000

// #endregion

// #region turn-response

// TurnResponse is the JSON schema the caller model must emit each turn.
// Pointer fields distinguish "absent" from zero so the evaluator can
// reject incomplete payloads.
type TurnResponse struct {
	Speech         string   `json:"speech"`
	TerminalLog    string   `json:"terminal_log"`
	ThreatLevel    *float64 `json:"threat_level"`
	Status         Status   `json:"status"`
	DetectedTactic *string  `json:"detected_tactic"`
	Damage         *float64 `json:"damage"`
	TurnAction     string   `json:"turn_action"`
}

// #endregion

// #region persona

// Persona is the generated caller identity.
type Persona struct {
	Name           string  `json:"persona_name"`
	Organization   string  `json:"organization"`
	IsScam         bool    `json:"is_scam"`
	Goal           string  `json:"scam_goal"`
	OpeningLine    string  `json:"opening_line"`
	VoiceStability float64 `json:"voice_stability_setting"`
	VoiceID        string  `json:"voice_id,omitempty"`
}

// CallType derives the call type from the scam flag.
func (p Persona) CallType() CallType {
	if p.IsScam {
		return Scam
	}
	return Genuine
}

// #endregion

// #region scenario

// Scenario is the immutable behavioral contract attached to a call.
type Scenario struct {
	Type        CallType `json:"type"`
	Persona     string   `json:"persona"`
	Goal        string   `json:"goal"`
	Contract    string   `json:"-"`
	OpeningLine string   `json:"opening_line"`
	RedFlags    []string `json:"red_flags,omitempty"`
	GreenFlags  []string `json:"green_flags,omitempty"`
}

// CallerName is the persona label up to " from ", used to prefix the
// caller's lines in the transcript.
func (s Scenario) CallerName() string {
	name, _, _ := strings.Cut(s.Persona, " from ")
	return name
}

// #endregion
