package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-turn

// LogTurn appends a turn record to the turn_log table.
func LogTurn(db *sql.DB, callID string, rec TurnRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal turn record: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO turn_log (call_id, turn, record_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		callID,
		rec.Turn,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// #endregion log-turn

// #region log-call

// LogCall writes the outcome of a finished call to the calls table.
func LogCall(db *sql.DB, s CallSummary) error {
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now().UTC()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.EndedAt
	}

	_, err := db.Exec(
		`INSERT INTO calls (call_id, persona, call_type, final_status, score_change, turns_used, balance_after, created_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CallID,
		nullIfEmpty(s.Persona),
		nullIfEmpty(s.CallType),
		s.FinalStatus,
		s.ScoreChange,
		s.TurnsUsed,
		s.BalanceAfter,
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.EndedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log call: %w", err)
	}
	return nil
}

// #endregion log-call

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
