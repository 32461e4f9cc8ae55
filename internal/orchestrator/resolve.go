package orchestrator

import "github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"

// #region score-constants

const (
	scoreBreach       = -500
	scoreScamDefeated = 500
	scoreGenuineHelp  = 300
	scoreScamTimeout  = -200
	scoreHangUpScam   = 500
	scoreHangUpReal   = -400
)

// #endregion

// #region resolve

// Resolve maps one turn's verdict to the call's final status and score
// change. raw is already normalized (unknown values arrive as active).
//
//	at max | raw                | type    | status       | change
//	no     | active             | any     | active       |    0
//	any    | system_breached    | any     | call_failure | -500
//	any    | terminated_success | SCAM    | call_success | +500
//	any    | terminated_success | GENUINE | call_success | +300
//	yes    | active             | SCAM    | call_failure | -200
//	yes    | active             | GENUINE | call_success | +300
func Resolve(atMaxTurns bool, raw scenario.Status, callType scenario.CallType) (CallStatus, int) {
	switch raw {
	case scenario.StatusSystemBreached:
		return StatusCallFailure, scoreBreach
	case scenario.StatusTerminatedSuccess:
		if callType == scenario.Scam {
			return StatusCallSuccess, scoreScamDefeated
		}
		return StatusCallSuccess, scoreGenuineHelp
	}

	if !atMaxTurns {
		return StatusActive, 0
	}
	if callType == scenario.Scam {
		return StatusCallFailure, scoreScamTimeout
	}
	return StatusCallSuccess, scoreGenuineHelp
}

// HangUpScore is the score change for a user hangup: hanging up on a
// scammer is the right call, on a genuine caller it is a false positive.
// No resolved persona scores nothing.
func HangUpScore(callType scenario.CallType) int {
	switch callType {
	case scenario.Scam:
		return scoreHangUpScam
	case scenario.Genuine:
		return scoreHangUpReal
	}
	return 0
}

// #endregion
