package orchestrator

import "fmt"

// #region alert

// AlertKind names a user-facing notice.
type AlertKind string

const (
	AlertBreach            AlertKind = "breach"
	AlertRateLimitCall     AlertKind = "rate_limit_call"
	AlertRateLimitPersona  AlertKind = "rate_limit_persona"
	AlertPersonaFailed     AlertKind = "persona_failed"
	AlertListenUnsupported AlertKind = "listen_unsupported"
)

// Alert is a notice for the player.
type Alert struct {
	Kind        AlertKind `json:"kind"`
	Message     string    `json:"message"`
	Damage      float64   `json:"damage,omitempty"`
	Balance     float64   `json:"balance,omitempty"`
	CreditsLost int       `json:"credits_lost,omitempty"`
}

// Observer receives state projections and alerts. Calls are made while
// the controller holds its lock, so implementations must not call back
// into the Controller and should not block.
type Observer interface {
	OnState(Snapshot)
	OnAlert(Alert)
}

// #endregion

// #region messages

// BreachAlert builds the notice shown after data was extracted.
func BreachAlert(damage, balance float64, creditsLost int) Alert {
	return Alert{
		Kind: AlertBreach,
		Message: fmt.Sprintf("SYSTEM BREACH DETECTED: $%.0f deducted from account, new balance $%.0f, %d credits lost. The scammer successfully extracted information!",
			damage, balance, creditsLost),
		Damage:      damage,
		Balance:     balance,
		CreditsLost: creditsLost,
	}
}

var (
	rateLimitCallAlert = Alert{
		Kind:    AlertRateLimitCall,
		Message: "API rate limit reached: the caller service is overloaded. Try again in a few minutes. Your call will be ended.",
	}
	rateLimitPersonaAlert = Alert{
		Kind:    AlertRateLimitPersona,
		Message: "API rate limit reached: the caller service is overloaded. Come back in a few minutes and try again.",
	}
	personaFailedAlert = Alert{
		Kind:    AlertPersonaFailed,
		Message: "Failed to generate call scenario. Please try again.",
	}
	listenUnsupportedAlert = Alert{
		Kind:    AlertListenUnsupported,
		Message: "Speech input is not supported here. Replies will not be picked up automatically.",
	}
)

type nopObserver struct{}

func (nopObserver) OnState(Snapshot) {}
func (nopObserver) OnAlert(Alert)    {}

// #endregion
