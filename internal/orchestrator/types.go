package orchestrator

// #region imports
import (
	"errors"
	"time"
)

// #endregion

// #region call-status

// CallStatus is the lifecycle state of the current call.
type CallStatus string

const (
	StatusIdle        CallStatus = "idle"
	StatusRinging     CallStatus = "ringing"
	StatusActive      CallStatus = "active"
	StatusHungUp      CallStatus = "hung_up"
	StatusCallSuccess CallStatus = "call_success"
	StatusCallFailure CallStatus = "call_failure"
	StatusGameOver    CallStatus = "game_over" // reserved; nothing transitions here yet
)

// Terminal reports whether the call has resolved.
func (s CallStatus) Terminal() bool {
	switch s {
	case StatusHungUp, StatusCallSuccess, StatusCallFailure, StatusGameOver:
		return true
	}
	return false
}

// #endregion

// #region pulse

// Pulse is the short-lived threat-change signal for dashboards.
type Pulse string

const (
	PulseNone     Pulse = ""
	PulsePositive Pulse = "positive" // threat went down
	PulseNegative Pulse = "negative" // threat went up
)

// #endregion

// #region errors

var (
	// ErrInvalidState rejects an action the current call status forbids.
	ErrInvalidState = errors.New("action not allowed in current call state")
	// ErrBusy rejects a turn while another is in flight.
	ErrBusy = errors.New("turn already in progress")
	// ErrNoScenario rejects an action that needs a resolved persona.
	ErrNoScenario = errors.New("no scenario attached")
)

// #endregion

// #region config

// Config holds the session constants.
type Config struct {
	InitialScore     int
	InitialBalance   float64
	MaxTurns         int
	BreachAlertDelay time.Duration
	ListenDebounce   time.Duration
	PulseDuration    time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		InitialScore:     1000,
		InitialBalance:   10000,
		MaxTurns:         5,
		BreachAlertDelay: 500 * time.Millisecond,
		ListenDebounce:   500 * time.Millisecond,
		PulseDuration:    400 * time.Millisecond,
	}
}

// #endregion

// #region snapshot

// Snapshot is a read-only projection of the session for presentation.
type Snapshot struct {
	CallID          string     `json:"call_id,omitempty"`
	Status          CallStatus `json:"status"`
	CallType        string     `json:"call_type,omitempty"`
	Persona         string     `json:"persona,omitempty"`
	CallerName      string     `json:"caller_name,omitempty"`
	Goal            string     `json:"goal,omitempty"`
	RedFlags        []string   `json:"red_flags,omitempty"`
	GreenFlags      []string   `json:"green_flags,omitempty"`
	Score           int        `json:"score"`
	ThreatLevel     int        `json:"threat_level"`
	Pulse           Pulse      `json:"pulse,omitempty"`
	TurnsUsed       int        `json:"turns_used"`
	MaxTurns        int        `json:"max_turns"`
	AccountBalance  float64    `json:"account_balance"`
	DetectedTactics []string   `json:"detected_tactics"`
	History         []string   `json:"history"`
	TerminalLogs    []string   `json:"terminal_logs"`
	ActiveDecoy     string     `json:"active_decoy,omitempty"`
	SuggestedDecoy  string     `json:"suggested_decoy,omitempty"`
	LastAIMessage   string     `json:"last_ai_message,omitempty"`
	LastDamage      float64    `json:"last_damage,omitempty"`
	LastScoreChange int        `json:"last_score_change"`
	Muted           bool       `json:"muted"`
	Listening       bool       `json:"listening"`
	Processing      bool       `json:"processing"`
}

// #endregion
