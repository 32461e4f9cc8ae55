package caller

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

func TestBuildTurnPrompt(t *testing.T) {
	sc := scenario.Scenario{Persona: "David Miller from Amazon Security", Contract: "CONTRACT"}
	prompt := BuildTurnPrompt(TurnRequest{
		Scenario:  sc,
		History:   []string{"David Miller: hello", "User: who is this?"},
		Turn:      3,
		MaxTurns:  5,
		Utterance: "who is this?",
		Decoy:     "User provided SSN 123-45-6789",
	})

	for _, want := range []string{
		"CONTRACT",
		"PREVIOUS CONVERSATION:\nDavid Miller: hello\nUser: who is this?",
		"[DECOY DATA DEPLOYED: User has access to fake honeypot data: User provided SSN 123-45-6789.",
		"This is TURN 3 of 5. Follow the ISOLATE strategy.",
		`USER JUST SAID: "who is this?"`,
		"Respond as David Miller from Amazon Security with ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n---\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "FINAL TURN") {
		t.Error("turn 3 must not carry the final-turn note")
	}
	if !strings.HasPrefix(prompt, "CONTRACT") {
		t.Error("contract must lead the prompt")
	}
}

func TestBuildTurnPrompt_FinalTurnNoDecoy(t *testing.T) {
	prompt := BuildTurnPrompt(TurnRequest{Turn: 5, MaxTurns: 5, Utterance: "no"})
	if !strings.Contains(prompt, "ULTIMATUM strategy. FINAL TURN") {
		t.Errorf("expected final-turn guidance, got %s", prompt)
	}
	if strings.Contains(prompt, "DECOY") {
		t.Error("no decoy block expected")
	}
	if strings.Contains(prompt, "PREVIOUS CONVERSATION") {
		t.Error("no history block expected for empty history")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"":                        "",
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Errorf("StripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThrottle_SpacesRequests(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected three requests to take >= ~100ms, took %v", elapsed)
	}
}

func TestThrottle_Disabled(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		th.Wait(context.Background())
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("disabled throttle should not block")
	}
}

func TestThrottle_ContextCancel(t *testing.T) {
	th := NewThrottle(time.Hour)
	th.Wait(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatal("expected error when the next slot is beyond the deadline")
	}
}
