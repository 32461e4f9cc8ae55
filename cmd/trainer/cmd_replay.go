package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/listen"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/replay"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/voice"
)

var replayCmd = &cobra.Command{
	Use:   "replay script.yaml",
	Short: "Run a scripted call and compare the verdicts",
	Long: `Plays a script (a scripted caller plus the trainee's lines) through the
call controller with no pauses and prints each turn against the statuses
the script expects. Exits non-zero when any turn diverges.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Bool("json", false, "print the run as JSON")
	replayCmd.Flags().BoolP("verbose", "v", false, "print the caller's spoken lines")
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, err := replay.LoadScript(args[0])
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	st, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	out := cmd.OutOrStdout()
	speech := io.Discard
	if verbose && !jsonOut {
		speech = out
	}
	cc := cfg.CallerSettings()
	cc.BackoffBase = 0
	ctrl := orchestrator.New(cfg.SessionSettings(), orchestrator.Deps{
		Caller:   caller.New(codec.NewFixtureBackend(&s.Fixture, nil), caller.NewThrottle(0), cc),
		Voice:    voice.NewConsole(speech),
		Listener: listen.NewLineListener(),
		Ledger:   ledgerDep(st),
	})

	run, err := replay.Replay(cmd.Context(), ctrl, s.User)
	if err != nil {
		return err
	}
	divs := replay.Compare(run, s.Expect, s.ExpectResolution)

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			*replay.Run
			Divergences []replay.Divergence `json:"divergences"`
		}{run, divs}); err != nil {
			return err
		}
	} else {
		printReplay(out, run, s.Expect)
	}

	if len(divs) > 0 {
		return fmt.Errorf("%d divergence(s) from the script", len(divs))
	}
	return nil
}

// printReplay outputs a per-turn table and the call summary.
func printReplay(w io.Writer, run *replay.Run, expect []string) {
	sum := run.Summary
	fmt.Fprintf(w, "Caller: %s (%s)\n\n", sum.Persona, sum.CallType)
	fmt.Fprintf(w, "%-5s| %-7s| %-14s| %-14s| %-6s| %s\n", "Turn", "Threat", "Expected", "Replayed", "Score", "Match")
	fmt.Fprintf(w, "%-5s+%-8s+%-15s+%-15s+%-7s+%s\n", "-----", "--------", "---------------", "---------------", "-------", "------")

	matches := 0
	for i, r := range run.Results {
		exp, match := "-", "-"
		if i < len(expect) {
			exp = expect[i]
			match = "DIFF"
			if exp == string(r.Status) {
				match = "OK"
				matches++
			}
		}
		fmt.Fprintf(w, "%-5d| %-7d| %-14s| %-14s| %+-6d| %s\n", r.Turn, r.ThreatLevel, exp, r.Status, r.ScoreChange, match)
	}

	fmt.Fprintf(w, "\nResolution: %s, score %d (%+d), balance $%.0f\n",
		sum.Resolution, sum.FinalScore, sum.ScoreChange, sum.FinalBalance)
	if len(expect) > 0 {
		fmt.Fprintf(w, "Summary: %d expected, %d match, %d diverge\n", len(expect), matches, len(expect)-matches)
	}
}
