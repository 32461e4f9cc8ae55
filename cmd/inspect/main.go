package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", os.Getenv("VISHING_DB"), "path to the call ledger")
	last := flag.Int("last", 20, "show N most recent calls")
	callID := flag.String("call", "", "show single call detail with its turns")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/calls.db [--last N] [--call id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *callID != "" {
		err = runDetailMode(os.Stdout, st, *callID, *jsonOut)
	} else {
		err = runListMode(os.Stdout, st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listOutput struct {
	Calls   []logging.CallSummary `json:"calls"`
	Summary listSummary           `json:"summary"`
}

type listSummary struct {
	Calls      int `json:"calls"`
	Successes  int `json:"successes"`
	Failures   int `json:"failures"`
	HangUps    int `json:"hang_ups"`
	ScoreDelta int `json:"score_delta"`
}

func summarize(calls []logging.CallSummary) listSummary {
	s := listSummary{Calls: len(calls)}
	for _, c := range calls {
		switch c.FinalStatus {
		case "call_success":
			s.Successes++
		case "call_failure":
			s.Failures++
		case "hung_up":
			s.HangUps++
		}
		s.ScoreDelta += c.ScoreChange
	}
	return s
}

func runListMode(w io.Writer, st *store.Store, last int, jsonOut bool) error {
	calls, err := st.ListCalls(last)
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		fmt.Fprintln(os.Stderr, "no calls recorded")
		return nil
	}

	// store returns newest first; print chronologically
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
	out := listOutput{Calls: calls, Summary: summarize(calls)}
	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "%-10s  %-36s  %-8s  %-13s  %6s  %5s  %10s  %s\n",
		"Call", "Persona", "Type", "Status", "Score", "Turns", "Balance", "Time")
	fmt.Fprintf(w, "%-10s+-%-36s+-%-8s+-%-13s+-%6s+-%5s+-%10s+-%s\n",
		"----------", "------------------------------------", "--------", "-------------", "------", "-----", "----------", "--------------------")
	for _, c := range calls {
		fmt.Fprintf(w, "%-10s  %-36s  %-8s  %-13s  %+6d  %5d  %10.0f  %s\n",
			shortID(c.CallID), truncate(orDash(c.Persona), 36), orDash(c.CallType), c.FinalStatus,
			c.ScoreChange, c.TurnsUsed, c.BalanceAfter, c.EndedAt.Format("2006-01-02T15:04:05Z"))
	}

	s := out.Summary
	fmt.Fprintf(w, "\n%d calls: %d success, %d failure, %d hung up, net score %+d\n",
		s.Calls, s.Successes, s.Failures, s.HangUps, s.ScoreDelta)
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Call  logging.CallSummary  `json:"call"`
	Turns []logging.TurnRecord `json:"turns"`
}

func runDetailMode(w io.Writer, st *store.Store, callID string, jsonOut bool) error {
	call, err := st.GetCall(callID)
	if err != nil {
		return err
	}
	rows, err := st.ListTurns(callID)
	if err != nil {
		return err
	}
	out := detailOutput{Call: call, Turns: make([]logging.TurnRecord, 0, len(rows))}
	for _, r := range rows {
		out.Turns = append(out.Turns, r.Record)
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Call:     %s\n", call.CallID)
	fmt.Fprintf(w, "Persona:  %s\n", orDash(call.Persona))
	fmt.Fprintf(w, "Type:     %s\n", orDash(call.CallType))
	fmt.Fprintf(w, "Status:   %s\n", call.FinalStatus)
	fmt.Fprintf(w, "Score:    %+d\n", call.ScoreChange)
	fmt.Fprintf(w, "Turns:    %d\n", call.TurnsUsed)
	fmt.Fprintf(w, "Balance:  %.0f\n", call.BalanceAfter)
	fmt.Fprintf(w, "Started:  %s\n", call.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Ended:    %s\n", call.EndedAt.Format("2006-01-02T15:04:05Z"))

	for _, t := range out.Turns {
		fmt.Fprintf(w, "\nTurn %d  threat %d -> %d  status=%s", t.Turn, t.ThreatBefore, t.ThreatAfter, t.FinalStatus)
		if t.Tactic != "" {
			fmt.Fprintf(w, "  tactic=%s", t.Tactic)
		}
		if t.Damage > 0 {
			fmt.Fprintf(w, "  damage=%.0f", t.Damage)
		}
		if t.Fallback {
			fmt.Fprint(w, "  (fallback)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  user:   %s\n", t.Utterance)
		fmt.Fprintf(w, "  caller: %s\n", t.Speech)
		if t.Decoy != "" {
			fmt.Fprintf(w, "  decoy:  %s\n", t.Decoy)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion output
