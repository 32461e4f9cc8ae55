package scenario

// #region imports
import (
	"fmt"
	"strings"
)

// #endregion

// #region behavior-blocks

const scamBehavior = `
ATTACK STRATEGY (5-turn progression):
- Turn 1 (HOOK): Establish trust, create urgency
- Turn 2 (ESCALATE): Increase pressure, request initial info
- Turn 3 (ISOLATE): Keep user engaged, discourage verification
- Turn 4 (THREATEN): Warn of consequences, demand compliance
- Turn 5 (ULTIMATUM): Final push for sensitive data

TACTICS: Use social engineering - urgency, authority, fear, isolation. If user provides decoy data (fake credit card, SSN, etc.), accept it enthusiastically and either continue pressing for more or terminate successfully.
`

const genuineBehavior = `
GENUINE CALLER BEHAVIOR:
- Be professional and patient
- Provide clear information
- Allow user to verify your identity
- Don't pressure for immediate sensitive data
- Offer callback numbers and verification methods

If user seems suspicious, reassure them and offer legitimate verification.
`

// #endregion

// #region build-contract

// BuildContract renders the system instructions for the caller model,
// including the JSON schema the turn evaluator depends on.
func BuildContract(p Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s calling from %s.\n\n", p.Name, p.Organization)
	fmt.Fprintf(&b, "YOUR GOAL: %s\n", p.Goal)

	behavior, tacticSchema, tacticKind := genuineBehavior,
		`"Professional"|"Legitimate Auth"|"Calm Tone"|null (which indicator are you showing THIS turn)`,
		"GENUINE INDICATOR"
	if p.IsScam {
		behavior, tacticSchema, tacticKind = scamBehavior,
			`"Urgency"|"Isolation"|"Authority"|"Threat"|null (which tactic are you using THIS turn)`,
			"SCAM TACTIC"
	}
	b.WriteString(behavior)

	b.WriteString("\nOUTPUT FORMAT (valid JSON only):\n{\n")
	fmt.Fprintf(&b, "  \"speech\": \"Your response as %s\",\n", p.Name)
	b.WriteString("  \"terminal_log\": \"Technical analysis of user behavior\",\n")
	b.WriteString("  \"threat_level\": 0-100 (higher = more suspicious),\n")
	b.WriteString("  \"status\": \"active\"|\"terminated_success\"|\"system_breached\",\n")
	fmt.Fprintf(&b, "  \"detected_tactic\": %s,\n", tacticSchema)
	fmt.Fprintf(&b, "  \"damage\": 0 or %d,\n", BreachDamage)
	b.WriteString("  \"turn_action\": \"hook\"|\"escalate\"|\"isolate\"|\"threaten\"|\"ultimatum\"\n}\n\n")

	fmt.Fprintf(&b, "IMPORTANT: In EVERY response, set \"detected_tactic\" to the PRIMARY %s you are using in this specific turn. Don't leave it null unless absolutely necessary.", tacticKind)

	return b.String()
}

// #endregion

// #region from-persona

// FromPersona builds the call scenario for a generated persona. Personas
// that come from the authored catalog keep their hand-written contract.
func FromPersona(p Persona) Scenario {
	if s, ok := Authored(p); ok {
		return s
	}

	s := Scenario{
		Type:        p.CallType(),
		Persona:     fmt.Sprintf("%s from %s", p.Name, p.Organization),
		Goal:        p.Goal,
		Contract:    BuildContract(p),
		OpeningLine: p.OpeningLine,
	}
	if p.IsScam {
		s.RedFlags = []string{"Urgency", "Personal Info Request"}
	} else {
		s.GreenFlags = []string{"Professional", "Calm Tone"}
	}
	return s
}

// #endregion

// #region fallback

// FallbackPersona is the deterministic last-resort caller used when the
// persona payload cannot be decoded.
func FallbackPersona(scam bool) Persona {
	if scam {
		return Persona{
			Name:           "David Martinez",
			Organization:   "SecureBank Fraud Prevention",
			IsScam:         true,
			Goal:           "Verify account security by requesting full card number",
			OpeningLine:    "Hello, this is David from SecureBank's fraud department. We've detected suspicious activity on your account.",
			VoiceStability: 0.3,
		}
	}
	return Persona{
		Name:           "Sarah Johnson",
		Organization:   "City Medical Center",
		IsScam:         false,
		Goal:           "Confirm appointment and update insurance information",
		OpeningLine:    "Good afternoon, this is Sarah calling from City Medical Center regarding your upcoming appointment.",
		VoiceStability: 0.8,
	}
}

// #endregion
