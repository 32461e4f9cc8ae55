// Package store is the SQLite call ledger: an append-only review log of
// finished calls and their per-turn records. Sessions are never resumed
// from it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS calls (
	call_id       TEXT PRIMARY KEY,
	persona       TEXT,
	call_type     TEXT,
	final_status  TEXT NOT NULL,
	score_change  INTEGER NOT NULL,
	turns_used    INTEGER NOT NULL,
	balance_after REAL NOT NULL,
	created_at    TEXT NOT NULL,
	ended_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id       TEXT NOT NULL,
	turn          INTEGER NOT NULL,
	record_json   TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turn_log_call ON turn_log(call_id, turn);
`

// #endregion schema

// #region store-struct

// Store is the call ledger.
type Store struct {
	db *sql.DB
}

// TurnRow is one stored turn record.
type TurnRow struct {
	CallID    string
	Turn      int
	Record    logging.TurnRecord
	CreatedAt time.Time
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region write

// RecordTurn appends one turn record for callID.
func (s *Store) RecordTurn(callID string, rec logging.TurnRecord) error {
	return logging.LogTurn(s.db, callID, rec)
}

// RecordCall writes the outcome row for a finished call.
func (s *Store) RecordCall(summary logging.CallSummary) error {
	return logging.LogCall(s.db, summary)
}

// #endregion write

// #region read

// ListCalls returns the most recent calls, newest first. limit <= 0 means all.
func (s *Store) ListCalls(limit int) ([]logging.CallSummary, error) {
	q := `SELECT call_id, persona, call_type, final_status, score_change, turns_used, balance_after, created_at, ended_at
	      FROM calls ORDER BY ended_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var out []logging.CallSummary
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCall reads a single call by id.
func (s *Store) GetCall(callID string) (logging.CallSummary, error) {
	row := s.db.QueryRow(
		`SELECT call_id, persona, call_type, final_status, score_change, turns_used, balance_after, created_at, ended_at
		 FROM calls WHERE call_id = ?`, callID)
	c, err := scanCall(row)
	if err != nil {
		return logging.CallSummary{}, fmt.Errorf("get call %s: %w", callID, err)
	}
	return c, nil
}

// ListTurns returns the turn records of a call in turn order.
func (s *Store) ListTurns(callID string) ([]TurnRow, error) {
	rows, err := s.db.Query(
		`SELECT call_id, turn, record_json, created_at FROM turn_log
		 WHERE call_id = ? ORDER BY turn ASC, id ASC`, callID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRow
	for rows.Next() {
		var r TurnRow
		var payload, created string
		if err := rows.Scan(&r.CallID, &r.Turn, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Record); err != nil {
			return nil, fmt.Errorf("decode turn %d: %w", r.Turn, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion read

// #region helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(sc scanner) (logging.CallSummary, error) {
	var c logging.CallSummary
	var persona, callType sql.NullString
	var created, ended string
	if err := sc.Scan(&c.CallID, &persona, &callType, &c.FinalStatus, &c.ScoreChange,
		&c.TurnsUsed, &c.BalanceAfter, &created, &ended); err != nil {
		return c, fmt.Errorf("scan call: %w", err)
	}
	c.Persona = persona.String
	c.CallType = callType.String
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	c.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
	return c, nil
}

// #endregion helpers
