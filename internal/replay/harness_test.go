package replay

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/listen"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/voice"
)

const breachScript = `
description: card number handed over on turn two
persona:
  persona_name: Rick Vale
  organization: National Card Services
  is_scam: true
  scam_goal: Get the card number
  opening_line: This is Rick from card security.
  voice_stability_setting: 0.3
turns:
  - response:
      speech: I just need the card number to release the hold.
      terminal_log: "URGENCY DETECTED"
      threat_level: 65
      detected_tactic: Urgency
      status: active
  - response:
      speech: Perfect, that's all I needed.
      terminal_log: "DATA EXFILTRATED"
      threat_level: 100
      status: system_breached
      damage: 5000
user:
  - Which card?
  - It's 4111 1111 1111 1111
  - hello?
expect: [active, call_failure, call_failure]
expect_resolution: call_failure
`

// helper: controller wired to a fixture caller with instant retries.
func newDriver(t *testing.T, s *Script) *orchestrator.Controller {
	t.Helper()
	cc := caller.DefaultConfig()
	cc.BackoffBase = 0
	cl := caller.New(codec.NewFixtureBackend(&s.Fixture, nil), caller.NewThrottle(0), cc)

	cfg := orchestrator.DefaultConfig()
	cfg.BreachAlertDelay = time.Millisecond
	cfg.ListenDebounce = time.Millisecond
	cfg.PulseDuration = time.Millisecond
	return orchestrator.New(cfg, orchestrator.Deps{
		Caller:   cl,
		Voice:    voice.NewConsole(io.Discard),
		Listener: listen.NewLineListener(),
	})
}

func mustParse(t *testing.T, data string) *Script {
	t.Helper()
	s, err := ParseScript([]byte(data))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	return s
}

// 1. Breach on turn two: resolution stops the replay, the spare line is dropped.
func TestReplay_BreachStopsAtResolution(t *testing.T) {
	s := mustParse(t, breachScript)
	run, err := Replay(context.Background(), newDriver(t, s), s.User)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	first, second := run.Results[0], run.Results[1]
	if first.Status != orchestrator.StatusActive || first.ThreatLevel != 65 || first.ScoreChange != 0 {
		t.Errorf("unexpected first turn %+v", first)
	}
	if first.Log != "URGENCY DETECTED" {
		t.Errorf("expected terminal log, got %q", first.Log)
	}
	if second.Status != orchestrator.StatusCallFailure || second.ScoreChange != -500 {
		t.Errorf("unexpected second turn %+v", second)
	}
	if second.Speech != "Perfect, that's all I needed." {
		t.Errorf("expected caller speech, got %q", second.Speech)
	}

	want := ReplaySummary{
		Persona:      "Rick Vale from National Card Services",
		CallType:     "SCAM",
		TotalTurns:   2,
		Resolution:   orchestrator.StatusCallFailure,
		ScoreChange:  -500,
		FinalScore:   500,
		FinalBalance: 5000,
		Tactics:      []string{"Urgency"},
	}
	if diff := cmp.Diff(want, run.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	divs := Compare(run, s.Expect, s.ExpectResolution)
	if diff := cmp.Diff([]Divergence{{Turn: 3, Expected: "call_failure", Got: "missing"}}, divs); diff != "" {
		t.Errorf("divergences (-want +got):\n%s", diff)
	}
}

// 2. Lines run out mid-call: the replay hangs up and scores the hangup.
func TestReplay_HangsUpWhenLinesRunOut(t *testing.T) {
	s := mustParse(t, breachScript)
	run, err := Replay(context.Background(), newDriver(t, s), s.User[:1])
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if run.Summary.Resolution != orchestrator.StatusHungUp {
		t.Errorf("expected hung_up, got %s", run.Summary.Resolution)
	}
	if run.Summary.ScoreChange != 500 || run.Summary.FinalScore != 1500 {
		t.Errorf("hanging up on a scammer should score +500, got %+v", run.Summary)
	}
	if divs := Compare(run, nil, "hung_up"); len(divs) != 0 {
		t.Errorf("expected no divergence, got %+v", divs)
	}
}

// 3. Exhausted retries end the call as a hangup without failing the replay.
func TestReplay_RateLimitEndsCall(t *testing.T) {
	s := mustParse(t, `
call_type: genuine
turns:
  - error: rate_limit
  - error: rate_limit
  - error: rate_limit
user: [hi, "still there?"]
`)
	run, err := Replay(context.Background(), newDriver(t, s), s.User)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(run.Results) != 1 {
		t.Fatalf("expected the replay to stop after one turn, got %d", len(run.Results))
	}
	r := run.Results[0]
	if r.Status != orchestrator.StatusHungUp || r.Err == "" {
		t.Errorf("expected a hung up turn with an error, got %+v", r)
	}
	if run.Summary.Resolution != orchestrator.StatusHungUp || run.Summary.ScoreChange != -400 {
		t.Errorf("hanging up on a genuine caller should score -400, got %+v", run.Summary)
	}
	if run.Summary.CallType != "GENUINE" {
		t.Errorf("expected a catalog genuine persona, got %q", run.Summary.CallType)
	}
}

// 4. An exhausted script falls back instead of aborting.
func TestReplay_ExhaustedScriptFallsBack(t *testing.T) {
	s := mustParse(t, `
call_type: scam
turns: []
user: [hello]
`)
	run, err := Replay(context.Background(), newDriver(t, s), s.User)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if got := run.Results[0]; got.Status != orchestrator.StatusActive || got.ThreatLevel != 50 {
		t.Errorf("expected a neutral fallback turn, got %+v", got)
	}
}

func TestReplay_CancelledContext(t *testing.T) {
	s := mustParse(t, breachScript)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Replay(ctx, newDriver(t, s), s.User); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestCompare(t *testing.T) {
	run := &Run{
		Results: []ReplayResult{
			{Turn: 1, Status: orchestrator.StatusActive},
			{Turn: 2, Status: orchestrator.StatusCallSuccess},
		},
		Summary: ReplaySummary{Resolution: orchestrator.StatusCallSuccess},
	}

	if divs := Compare(run, []string{"active", "call_success"}, "call_success"); len(divs) != 0 {
		t.Errorf("expected a clean match, got %+v", divs)
	}

	got := Compare(run, []string{"active", "call_failure"}, "call_failure")
	want := []Divergence{
		{Turn: 0, Expected: "call_failure", Got: "call_success"},
		{Turn: 2, Expected: "call_failure", Got: "call_success"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("divergences (-want +got):\n%s", diff)
	}
}
