package caller

import (
	"fmt"
	"strings"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region turn-prompt

// TurnRequest is everything the caller model sees for one turn.
type TurnRequest struct {
	Scenario  scenario.Scenario
	History   []string // already includes "User: <Utterance>"
	Turn      int
	MaxTurns  int
	Utterance string
	Decoy     string // "" when no decoy is active
}

// BuildTurnPrompt assembles the contract, transcript, decoy context and
// escalation guidance into one prompt.
func BuildTurnPrompt(req TurnRequest) string {
	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = len(scenario.EscalationSteps)
	}

	var b strings.Builder
	b.WriteString(req.Scenario.Contract)

	if len(req.History) > 0 {
		b.WriteString("\n\nPREVIOUS CONVERSATION:\n")
		b.WriteString(strings.Join(req.History, "\n"))
	}

	if req.Decoy != "" {
		fmt.Fprintf(&b, "\n\n[DECOY DATA DEPLOYED: User has access to fake honeypot data: %s. If they provide this data, react accordingly.]", req.Decoy)
	}

	step := strings.ToUpper(string(scenario.StepForTurn(req.Turn)))
	fmt.Fprintf(&b, "\n\n[CRITICAL: This is TURN %d of %d. Follow the %s strategy.", req.Turn, maxTurns, step)
	if req.Turn >= maxTurns {
		b.WriteString(" FINAL TURN - Either achieve goal or user terminates.")
	}
	b.WriteString("]")

	fmt.Fprintf(&b, "\n\nUSER JUST SAID: \"%s\"\n\nRespond as %s with ONLY valid JSON (no markdown, no code blocks):",
		req.Utterance, req.Scenario.Persona)
	return b.String()
}

// #endregion turn-prompt

// #region persona-prompt

// PersonaPrompt asks for a random scam or genuine caller identity.
const PersonaPrompt = `Generate a random phone call scenario for a social engineering defense trainer.

REQUIREMENTS:
- 50% chance of SCAM, 50% chance of GENUINE call
- For SCAM: Create a creative attack vector (tech support, IRS, bank fraud alert, prize winner, charity, etc.)
- For GENUINE: Create a legitimate caller (actual bank, doctor's office, delivery service, utility company, etc.)
- persona_name: First and last name of caller
- organization: Company/agency name
- is_scam: true or false
- scam_goal: What data they're after (credit card, SSN, account login, verification code, etc.) OR if genuine, what they legitimately need
- opening_line: Natural first greeting (1-2 sentences max)
- voice_stability_setting: 0.2-0.4 for scammers (nervous/manipulative), 0.7-0.9 for genuine (professional)

Return ONLY valid JSON (no markdown):
{
  "persona_name": "string",
  "organization": "string",
  "is_scam": boolean,
  "scam_goal": "string",
  "opening_line": "string",
  "voice_stability_setting": number
}`

// #endregion persona-prompt

// #region fences

// StripFences removes markdown code fences wrapped around a JSON payload.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
	case strings.HasPrefix(text, "```"):
		text = strings.ReplaceAll(text, "```", "")
	}
	return strings.TrimSpace(text)
}

// #endregion fences
