package orchestrator

import (
	"slices"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/decoy"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/evaluator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region session

const maxTerminalLogs = 10

// Session is the state of one call. Score and balance survive reset;
// everything else starts over.
type Session struct {
	CallID    string
	StartedAt time.Time

	Score          int
	ThreatLevel    int
	Status         CallStatus
	CallType       scenario.CallType // "" until the persona resolves
	Scenario       *scenario.Scenario
	Persona        *scenario.Persona
	TurnsUsed      int
	MaxTurns       int
	AccountBalance float64

	tactics      []scenario.Tactic
	History      []string
	TerminalLogs []string

	ActiveDecoy     string // display text
	decoyPrompt     string // sentence handed to the caller model
	LastAIMessage   string
	LastDamage      float64
	LastScoreChange int
	Pulse           Pulse
	greeted         bool
}

// NewSession returns an idle session with the configured starting funds.
func NewSession(cfg Config) *Session {
	s := &Session{Score: cfg.InitialScore, AccountBalance: cfg.InitialBalance, MaxTurns: cfg.MaxTurns}
	s.reset()
	return s
}

// reset clears per-call fields and returns the session to idle.
func (s *Session) reset() {
	*s = Session{
		Score:          s.Score,
		AccountBalance: s.AccountBalance,
		MaxTurns:       s.MaxTurns,
		ThreatLevel:    evaluator.NeutralThreat,
		Status:         StatusIdle,
	}
}

// #endregion

// #region terminal-log

// AppendLog adds a terminal line, evicting the oldest beyond ten.
func (s *Session) AppendLog(line string) {
	s.TerminalLogs = append(s.TerminalLogs, line)
	if over := len(s.TerminalLogs) - maxTerminalLogs; over > 0 {
		s.TerminalLogs = slices.Delete(s.TerminalLogs, 0, over)
	}
}

// #endregion

// #region tactics

// AddTactic records a tactic once; re-adding is a no-op.
func (s *Session) AddTactic(t scenario.Tactic) {
	if t == "" || slices.Contains(s.tactics, t) {
		return
	}
	s.tactics = append(s.tactics, t)
}

// HasTactic reports membership.
func (s *Session) HasTactic(t scenario.Tactic) bool {
	return slices.Contains(s.tactics, t)
}

// Tactics returns the recorded tactics in first-seen order.
func (s *Session) Tactics() []scenario.Tactic {
	return slices.Clone(s.tactics)
}

// #endregion

// #region scoring

func (s *Session) applyScore(change int) {
	s.Score = max(0, s.Score+change)
	s.LastScoreChange = change
}

func (s *Session) applyDamage(damage float64) {
	if damage <= 0 {
		return
	}
	s.AccountBalance = max(0, s.AccountBalance-damage)
	s.LastDamage = damage
}

// #endregion

// #region snapshot

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		CallID:          s.CallID,
		Status:          s.Status,
		CallType:        string(s.CallType),
		Score:           s.Score,
		ThreatLevel:     s.ThreatLevel,
		Pulse:           s.Pulse,
		TurnsUsed:       s.TurnsUsed,
		MaxTurns:        s.MaxTurns,
		AccountBalance:  s.AccountBalance,
		DetectedTactics: make([]string, 0, len(s.tactics)),
		History:         slices.Clone(s.History),
		TerminalLogs:    slices.Clone(s.TerminalLogs),
		ActiveDecoy:     s.ActiveDecoy,
		LastAIMessage:   s.LastAIMessage,
		LastDamage:      s.LastDamage,
		LastScoreChange: s.LastScoreChange,
	}
	for _, t := range s.tactics {
		snap.DetectedTactics = append(snap.DetectedTactics, string(t))
	}
	if snap.History == nil {
		snap.History = []string{}
	}
	if snap.TerminalLogs == nil {
		snap.TerminalLogs = []string{}
	}
	if sc := s.Scenario; sc != nil {
		snap.Persona = sc.Persona
		snap.CallerName = sc.CallerName()
		snap.Goal = sc.Goal
		snap.RedFlags = slices.Clone(sc.RedFlags)
		snap.GreenFlags = slices.Clone(sc.GreenFlags)
		if s.Status == StatusActive {
			if cat, ok := decoy.Suggest(sc.Goal, s.LastAIMessage); ok {
				snap.SuggestedDecoy = string(cat)
			}
		}
	}
	return snap
}

// #endregion
