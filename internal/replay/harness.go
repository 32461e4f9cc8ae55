// Package replay drives scripted calls through the controller and compares
// the outcome with what the script expects.
package replay

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
)

// #region types

// Driver is the part of the controller a replay needs.
type Driver interface {
	InitiateCall(ctx context.Context) error
	Answer(ctx context.Context) error
	ProcessTurn(ctx context.Context, utterance string) error
	HangUp()
	Snapshot() orchestrator.Snapshot
}

// ReplayResult captures the outcome of one scripted user line.
type ReplayResult struct {
	Turn        int                     `json:"turn"`
	Utterance   string                  `json:"utterance"`
	Speech      string                  `json:"speech"`
	Log         string                  `json:"terminal_log,omitempty"`
	Status      orchestrator.CallStatus `json:"status"`
	ThreatLevel int                     `json:"threat_level"`
	ScoreChange int                     `json:"score_change"`
	Err         string                  `json:"error,omitempty"`
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Persona      string                  `json:"persona"`
	CallType     string                  `json:"call_type"`
	TotalTurns   int                     `json:"total_turns"`
	Resolution   orchestrator.CallStatus `json:"resolution"`
	ScoreChange  int                     `json:"score_change"`
	FinalScore   int                     `json:"final_score"`
	FinalBalance float64                 `json:"final_balance"`
	Tactics      []string                `json:"tactics"`
}

// Run is a finished replay.
type Run struct {
	Results []ReplayResult `json:"results"`
	Summary ReplaySummary  `json:"summary"`
}

// #endregion types

// #region replay

// Replay rings a call, answers it and feeds lines one per turn until the
// call resolves. Lines left over after resolution are dropped. If the lines
// run out mid-call the call is hung up, which scores like any hangup.
func Replay(ctx context.Context, d Driver, lines []string) (*Run, error) {
	start := d.Snapshot()
	if err := d.InitiateCall(ctx); err != nil {
		return nil, fmt.Errorf("initiate: %w", err)
	}
	if err := d.Answer(ctx); err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}

	run := &Run{}
	last := d.Snapshot()
	for _, line := range lines {
		if last.Status != orchestrator.StatusActive {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := d.ProcessTurn(ctx, line)
		if err != nil && !errors.Is(err, caller.ErrRateLimitExceeded) {
			return nil, fmt.Errorf("turn %d: %w", len(run.Results)+1, err)
		}
		snap := d.Snapshot()
		r := ReplayResult{
			Turn:        len(run.Results) + 1,
			Utterance:   line,
			Speech:      snap.LastAIMessage,
			Status:      snap.Status,
			ThreatLevel: snap.ThreatLevel,
			ScoreChange: snap.Score - last.Score,
		}
		if n := len(snap.TerminalLogs); n > 0 {
			r.Log = snap.TerminalLogs[n-1]
		}
		if err != nil {
			// the controller already hung up
			r.Err = err.Error()
			r.Status = orchestrator.StatusHungUp
			run.Results = append(run.Results, r)
			break
		}
		run.Results = append(run.Results, r)
		last = snap
	}

	run.Summary = ReplaySummary{
		Persona:    last.Persona,
		CallType:   last.CallType,
		TotalTurns: len(run.Results),
		Resolution: last.Status,
		Tactics:    last.DetectedTactics,
	}
	if n := len(run.Results); n > 0 && run.Results[n-1].Status == orchestrator.StatusHungUp {
		run.Summary.Resolution = orchestrator.StatusHungUp
	}
	if last.Status == orchestrator.StatusActive {
		d.HangUp()
		run.Summary.Resolution = orchestrator.StatusHungUp
	}

	end := d.Snapshot()
	run.Summary.FinalScore = end.Score
	run.Summary.FinalBalance = end.AccountBalance
	run.Summary.ScoreChange = end.Score - start.Score
	return run, nil
}

// #endregion replay

// #region compare

// Divergence is one turn whose status differs from the expectation.
type Divergence struct {
	Turn     int    `json:"turn"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

// Compare checks a run against per-turn expectations and an expected
// resolution. Either may be empty. A resolution mismatch is reported as
// turn 0. Expected turns the run never reached are reported as "missing".
func Compare(run *Run, expect []string, resolution string) []Divergence {
	var out []Divergence
	for i, want := range expect {
		got := "missing"
		if i < len(run.Results) {
			got = string(run.Results[i].Status)
		}
		if got != want {
			out = append(out, Divergence{Turn: i + 1, Expected: want, Got: got})
		}
	}
	if resolution != "" && resolution != string(run.Summary.Resolution) {
		out = append(out, Divergence{Expected: resolution, Got: string(run.Summary.Resolution)})
	}
	slices.SortStableFunc(out, func(a, b Divergence) int { return a.Turn - b.Turn })
	return out
}

// #endregion compare
