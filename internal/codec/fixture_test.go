package codec

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

const sampleFixture = `
description: two turns then a quota failure
persona:
  persona_name: Test Caller
  organization: Test Bank
  is_scam: true
  scam_goal: get card number
  opening_line: Hello there
  voice_stability_setting: 0.4
turns:
  - response:
      speech: Your card is locked.
      terminal_log: URGENCY
      threat_level: 60
      status: active
  - raw: "not json at all"
  - error: rate_limit
  - error: boom
`

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.yaml")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(f.Turns))
	}
	if f.Persona["persona_name"] != "Test Caller" {
		t.Errorf("persona not parsed: %v", f.Persona)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFixtureBackend_Script(t *testing.T) {
	f, err := ParseFixture([]byte(sampleFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b := NewFixtureBackend(f, nil)
	ctx := context.Background()

	p, err := b.Complete(ctx, Request{Kind: KindPersona})
	if err != nil {
		t.Fatalf("persona: %v", err)
	}
	var persona scenario.Persona
	if err := json.Unmarshal([]byte(p), &persona); err != nil {
		t.Fatalf("persona json: %v", err)
	}
	if persona.Name != "Test Caller" || !persona.IsScam || persona.VoiceStability != 0.4 {
		t.Errorf("unexpected persona %+v", persona)
	}

	first, err := b.Complete(ctx, Request{Kind: KindTurn})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	var resp scenario.TurnResponse
	if err := json.Unmarshal([]byte(first), &resp); err != nil {
		t.Fatalf("turn 1 json: %v", err)
	}
	if resp.Speech != "Your card is locked." || resp.ThreatLevel == nil || *resp.ThreatLevel != 60 {
		t.Errorf("unexpected turn 1 %+v", resp)
	}

	if raw, _ := b.Complete(ctx, Request{Kind: KindTurn}); raw != "not json at all" {
		t.Errorf("expected raw passthrough, got %q", raw)
	}
	if _, err := b.Complete(ctx, Request{Kind: KindTurn}); !errors.Is(err, ErrRetryable) {
		t.Errorf("expected retryable error, got %v", err)
	}
	_, err = b.Complete(ctx, Request{Kind: KindTurn})
	if err == nil || errors.Is(err, ErrRetryable) {
		t.Errorf("expected hard error, got %v", err)
	}
	if _, err := b.Complete(ctx, Request{Kind: KindTurn}); !errors.Is(err, ErrFixtureExhausted) {
		t.Errorf("expected exhaustion, got %v", err)
	}

	b.Rewind()
	if _, err := b.Complete(ctx, Request{Kind: KindTurn}); err != nil {
		t.Errorf("rewind should restart the script, got %v", err)
	}
	if n := len(b.Requests()); n != 7 {
		t.Errorf("expected 7 recorded requests, got %d", n)
	}
}

func TestFixtureBackend_CatalogPersona(t *testing.T) {
	b := NewFixtureBackend(&Fixture{CallType: "genuine"}, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 10; i++ {
		out, err := b.Complete(context.Background(), Request{Kind: KindPersona})
		if err != nil {
			t.Fatalf("persona: %v", err)
		}
		var p scenario.Persona
		if err := json.Unmarshal([]byte(out), &p); err != nil {
			t.Fatalf("json: %v", err)
		}
		if p.IsScam {
			t.Fatalf("expected only genuine catalog personas, got %+v", p)
		}
	}
}
