package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
)

func TestParseScript_Rejects(t *testing.T) {
	cases := map[string]string{
		"no user lines": "turns: []\n",
		"blank line":    "user: [hi, '  ']\n",
		"expect count":  "user: [hi, there]\nexpect: [active]\n",
		"bad yaml":      "user: [\n",
	}
	for name, data := range cases {
		if _, err := ParseScript([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.yaml")
	if err := os.WriteFile(path, []byte(breachScript), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if len(s.Turns) != 2 || len(s.User) != 3 || s.ExpectResolution != "call_failure" {
		t.Errorf("unexpected script %+v", s)
	}
	if s.Persona["persona_name"] != "Rick Vale" {
		t.Errorf("inline fixture fields not decoded: %v", s.Persona)
	}

	if _, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// Exporting a recorded call and replaying it reproduces every verdict.
func TestFromLedger_RoundTrip(t *testing.T) {
	call := logging.CallSummary{
		CallID:      "call-1",
		Persona:     "Rick Vale from National Card Services",
		CallType:    "SCAM",
		FinalStatus: "call_failure",
	}
	turns := []logging.TurnRecord{
		{Turn: 1, Utterance: "who is this?", Speech: "Card security.", TerminalLog: "AUTHORITY CLAIMED",
			RawStatus: "active", Tactic: "Authority", ThreatAfter: 60, FinalStatus: "active"},
		{Turn: 2, Utterance: "what?", Speech: "Sorry, connection issues. Can you repeat that?",
			RawStatus: "active", Fallback: true, ThreatAfter: 50, FinalStatus: "active"},
		{Turn: 3, Utterance: "fine, it's 4111", Speech: "Thanks.", RawStatus: "system_breached",
			ThreatAfter: 100, Damage: 2500, FinalStatus: "call_failure"},
	}

	s := FromLedger(call, turns)
	if s.CallType != "scam" || len(s.Turns) != 3 || len(s.User) != 3 {
		t.Fatalf("unexpected export %+v", s)
	}
	if s.Turns[1].Raw == "" {
		t.Error("fallback turn should export as a malformed payload")
	}
	if s.Turns[2].Response["terminal_log"] != "REPLAYED TURN" {
		t.Errorf("missing terminal log should get a placeholder, got %v", s.Turns[2].Response["terminal_log"])
	}

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "error:") {
		t.Errorf("empty fields should be omitted:\n%s", data)
	}
	back, err := ParseScript(data)
	if err != nil {
		t.Fatalf("ParseScript(export): %v\n%s", err, data)
	}

	run, err := Replay(context.Background(), newDriver(t, back), back.User)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if divs := Compare(run, back.Expect, back.ExpectResolution); len(divs) != 0 {
		t.Errorf("replayed export diverged: %+v", divs)
	}
	if run.Summary.FinalBalance != 7500 {
		t.Errorf("expected recorded damage to apply, got balance %v", run.Summary.FinalBalance)
	}
}
