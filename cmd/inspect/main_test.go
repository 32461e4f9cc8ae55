package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "calls.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := []logging.CallSummary{
		{CallID: "call-aaaa-1111", Persona: "Rick Vale from National Card Services", CallType: "SCAM",
			FinalStatus: "call_failure", ScoreChange: -500, TurnsUsed: 2, BalanceAfter: 5000, CreatedAt: base, EndedAt: base.Add(time.Minute)},
		{CallID: "call-bbbb-2222", Persona: "Dana Wu from Riverside Clinic", CallType: "GENUINE",
			FinalStatus: "call_success", ScoreChange: 300, TurnsUsed: 3, BalanceAfter: 5000, CreatedAt: base.Add(2 * time.Minute), EndedAt: base.Add(3 * time.Minute)},
		{CallID: "call-cccc-3333", FinalStatus: "hung_up", BalanceAfter: 5000, CreatedAt: base.Add(4 * time.Minute), EndedAt: base.Add(5 * time.Minute)},
	}
	for _, c := range calls {
		if err := st.RecordCall(c); err != nil {
			t.Fatalf("RecordCall: %v", err)
		}
	}
	turns := []logging.TurnRecord{
		{TurnID: "t1", Turn: 1, Utterance: "who is this", Speech: "Card security.", RawStatus: "active",
			Tactic: "Urgency", ThreatBefore: 50, ThreatAfter: 70, FinalStatus: "active"},
		{TurnID: "t2", Turn: 2, Utterance: "4111 1111 1111 1111", Speech: "Thank you.", RawStatus: "system_breached",
			ThreatBefore: 70, ThreatAfter: 100, Damage: 5000, Decoy: "Card ****1111", FinalStatus: "call_failure", ScoreChange: -500},
	}
	for _, r := range turns {
		if err := st.RecordTurn("call-aaaa-1111", r); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}
	return st
}

func TestListMode_Table(t *testing.T) {
	st := seedStore(t)
	var buf bytes.Buffer
	if err := runListMode(&buf, st, 20, false); err != nil {
		t.Fatalf("runListMode: %v", err)
	}
	out := buf.String()
	first := strings.Index(out, "call-aaa")
	last := strings.Index(out, "call-ccc")
	if first < 0 || last < 0 || first > last {
		t.Errorf("expected chronological rows, got:\n%s", out)
	}
	if !strings.Contains(out, "3 calls: 1 success, 1 failure, 1 hung up, net score -200") {
		t.Errorf("summary line missing:\n%s", out)
	}
}

func TestListMode_JSONRespectsLast(t *testing.T) {
	st := seedStore(t)
	var buf bytes.Buffer
	if err := runListMode(&buf, st, 2, true); err != nil {
		t.Fatalf("runListMode: %v", err)
	}
	var got listOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Calls) != 2 || got.Calls[0].CallID != "call-bbbb-2222" || got.Calls[1].CallID != "call-cccc-3333" {
		t.Errorf("expected the two newest calls oldest first, got %+v", got.Calls)
	}
	if got.Summary.ScoreDelta != 300 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
}

func TestDetailMode(t *testing.T) {
	st := seedStore(t)
	var buf bytes.Buffer
	if err := runDetailMode(&buf, st, "call-aaaa-1111", false); err != nil {
		t.Fatalf("runDetailMode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Status:   call_failure", "Turn 1  threat 50 -> 70", "tactic=Urgency", "damage=5000", "decoy:  Card ****1111"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := runDetailMode(&buf, st, "call-aaaa-1111", true); err != nil {
		t.Fatalf("runDetailMode json: %v", err)
	}
	var got detailOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Turns) != 2 || got.Turns[1].RawStatus != "system_breached" {
		t.Errorf("unexpected turns %+v", got.Turns)
	}
}

func TestDetailMode_UnknownCall(t *testing.T) {
	st := seedStore(t)
	if err := runDetailMode(&bytes.Buffer{}, st, "nope", false); err == nil {
		t.Fatal("expected error for unknown call")
	}
}
