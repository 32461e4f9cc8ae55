package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
)

// #region script-types

// Script is a complete scripted call: the caller side as a codec.Fixture,
// the trainee's lines, and optionally the statuses each turn should end in.
type Script struct {
	codec.Fixture `yaml:",inline"`

	User []string `yaml:"user"`
	// Expect holds one call status per user line, e.g. "active" or
	// "call_failure". Empty disables the per-turn check.
	Expect []string `yaml:"expect,omitempty"`
	// ExpectResolution is the status the call should end in, including
	// "hung_up" when the lines run out mid-call.
	ExpectResolution string `yaml:"expect_resolution,omitempty"`
}

// #endregion script-types

// #region script-loader

// LoadScript reads and parses a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return s, nil
}

// ParseScript decodes script bytes and checks the user lines line up with
// the expectations.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.User) == 0 {
		return nil, errors.New("no user lines")
	}
	for i, line := range s.User {
		if strings.TrimSpace(line) == "" {
			return nil, fmt.Errorf("user line %d is blank", i+1)
		}
	}
	if len(s.Expect) > 0 && len(s.Expect) != len(s.User) {
		return nil, fmt.Errorf("%d expectations for %d user lines", len(s.Expect), len(s.User))
	}
	return &s, nil
}

// Marshal encodes the script as YAML.
func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// #endregion script-loader

// #region export

// FromLedger rebuilds a script from a recorded call. The caller's replies
// are replayed as recorded, so the script reproduces the call's verdicts.
// Fallback turns are exported as malformed payloads to keep them fallbacks.
// The persona is not recorded in full; replays draw a catalog persona of
// the same call type.
func FromLedger(call logging.CallSummary, turns []logging.TurnRecord) *Script {
	s := &Script{
		Fixture: codec.Fixture{
			Description: fmt.Sprintf("exported from call %s (%s)", call.CallID, call.Persona),
			CallType:    strings.ToLower(call.CallType),
		},
		ExpectResolution: call.FinalStatus,
	}
	for _, rec := range turns {
		s.User = append(s.User, rec.Utterance)
		s.Expect = append(s.Expect, rec.FinalStatus)
		if rec.Fallback {
			s.Turns = append(s.Turns, codec.FixtureTurn{Raw: "not json"})
			continue
		}
		logLine := rec.TerminalLog
		if logLine == "" {
			logLine = "REPLAYED TURN"
		}
		resp := map[string]any{
			"speech":       rec.Speech,
			"terminal_log": logLine,
			"threat_level": rec.ThreatAfter,
			"status":       rec.RawStatus,
		}
		if rec.Tactic != "" {
			resp["detected_tactic"] = rec.Tactic
		}
		if rec.Damage > 0 {
			resp["damage"] = rec.Damage
		}
		s.Turns = append(s.Turns, codec.FixtureTurn{Response: resp})
	}
	return s
}

// #endregion export
