package logging

import "time"

// #region turn-record

// TurnRecord captures everything that went into resolving one turn.
// Serialized as JSON into turn_log.record_json so a call can be reviewed
// after the session is gone.
type TurnRecord struct {
	TurnID    string `json:"turn_id"`
	Turn      int    `json:"turn"`
	Utterance string `json:"utterance"`
	Speech    string `json:"speech"`

	TerminalLog string `json:"terminal_log,omitempty"`

	// Caller verdict as reported, before resolution
	RawStatus string `json:"raw_status"`
	Tactic    string `json:"tactic,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
	Decoy     string `json:"decoy,omitempty"`

	ThreatBefore int     `json:"threat_before"`
	ThreatAfter  int     `json:"threat_after"`
	Damage       float64 `json:"damage"`

	// Resolution
	FinalStatus  string  `json:"final_status"`
	ScoreChange  int     `json:"score_change"`
	ScoreAfter   int     `json:"score_after"`
	BalanceAfter float64 `json:"balance_after"`
}

// #endregion turn-record

// #region call-summary

// CallSummary is a single row in the calls table.
type CallSummary struct {
	CallID       string    `json:"call_id"`
	Persona      string    `json:"persona,omitempty"`
	CallType     string    `json:"call_type,omitempty"` // "SCAM" | "GENUINE" | ""
	FinalStatus  string    `json:"final_status"`
	ScoreChange  int       `json:"score_change"`
	TurnsUsed    int       `json:"turns_used"`
	BalanceAfter float64   `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
	EndedAt      time.Time `json:"ended_at"`
}

// #endregion call-summary
