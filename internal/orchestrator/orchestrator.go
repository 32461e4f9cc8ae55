// Package orchestrator runs the call state machine: persona resolution,
// turn processing, scoring, decoys and the auto-listen policy.
package orchestrator

// #region imports
import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/decoy"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/evaluator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/listen"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/voice"
)

// #endregion

// #region collaborators

// Caller produces personas and raw turn payloads.
type Caller interface {
	GeneratePersona(ctx context.Context) (scenario.Persona, error)
	GenerateTurn(ctx context.Context, req caller.TurnRequest) (string, error)
}

// Ledger records finished turns and calls. Optional.
type Ledger interface {
	RecordTurn(callID string, rec logging.TurnRecord) error
	RecordCall(summary logging.CallSummary) error
}

// Deps are the controller's collaborators. Caller, Voice and Listener are
// required.
type Deps struct {
	Caller   Caller
	Voice    voice.Speaker
	Listener listen.Listener
	Decoys   *decoy.Generator
	Ledger   Ledger
	Observer Observer
}

// #endregion

// #region controller-struct

// Controller owns one session at a time. All methods are safe for
// concurrent use; external calls run outside the lock and their results
// are dropped if the call they belong to has since been reset.
type Controller struct {
	cfg      Config
	caller   Caller
	voice    voice.Speaker
	listener listen.Listener
	decoys   *decoy.Generator
	ledger   Ledger
	observer Observer
	log      *slog.Logger

	mu          sync.Mutex
	s           *Session
	epoch       uint64
	processing  bool
	muted       bool
	breachTimer *time.Timer
	pulseTimer  *time.Timer
	listenTimer *time.Timer
}

// #endregion

// #region constructor

// New builds an idle controller.
func New(cfg Config, deps Deps) *Controller {
	if deps.Decoys == nil {
		deps.Decoys = decoy.NewGenerator(nil)
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	return &Controller{
		cfg:      cfg,
		caller:   deps.Caller,
		voice:    deps.Voice,
		listener: deps.Listener,
		decoys:   deps.Decoys,
		ledger:   deps.Ledger,
		observer: deps.Observer,
		log:      logging.New("call"),
		s:        NewSession(cfg),
	}
}

// Snapshot returns the current projection.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := c.s.snapshot()
	snap.Muted = c.muted
	snap.Processing = c.processing
	snap.Listening = c.listener.Listening()
	return snap
}

func (c *Controller) publishLocked() {
	c.observer.OnState(c.snapshotLocked())
}

// #endregion

// #region initiate

// InitiateCall starts ringing and blocks until the persona resolves. On
// failure the session returns to idle and the error is returned after an
// alert; caller.ErrRateLimitExceeded is distinguishable with errors.Is.
func (c *Controller) InitiateCall(ctx context.Context) error {
	c.mu.Lock()
	if st := c.s.Status; st == StatusRinging || st == StatusActive {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.stopTimersLocked()
	c.epoch++
	epoch := c.epoch
	c.processing = false
	c.listener.Reset()
	c.s.reset()
	c.s.CallID = uuid.New().String()
	c.s.StartedAt = time.Now().UTC()
	c.s.Status = StatusRinging
	c.log.Info("call ringing", "session", c.s.CallID, "status", c.s.Status)
	c.publishLocked()
	c.mu.Unlock()

	persona, err := c.caller.GeneratePersona(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.s.Status != StatusRinging {
		c.log.Debug("discarding persona for a call that was reset", "error", err)
		return nil
	}
	if err != nil {
		c.log.Warn("persona generation failed", "session", c.s.CallID, "error", err)
		c.s.reset()
		if errors.Is(err, caller.ErrRateLimitExceeded) {
			c.observer.OnAlert(rateLimitPersonaAlert)
		} else {
			c.observer.OnAlert(personaFailedAlert)
		}
		c.publishLocked()
		return err
	}

	sc := scenario.FromPersona(persona)
	c.s.Persona = &persona
	c.s.Scenario = &sc
	c.s.CallType = sc.Type
	c.log.Info("persona attached", "session", c.s.CallID, "persona", sc.Persona, "type", sc.Type)
	c.publishLocked()
	return nil
}

// #endregion

// #region answer

// Answer picks up a ringing call with a resolved persona. The opening line
// is spoken once per call and then added to the transcript. Answering
// before the persona lands yields ErrNoScenario; InitiateCall returns
// only once it has, so callers answer after it.
func (c *Controller) Answer(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Status != StatusRinging {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if c.s.Scenario == nil {
		c.mu.Unlock()
		return ErrNoScenario
	}
	c.s.Status = StatusActive
	c.log.Info("call answered", "session", c.s.CallID, "status", c.s.Status)

	if c.s.greeted {
		c.scheduleListenLocked()
		c.publishLocked()
		c.mu.Unlock()
		return nil
	}
	c.s.greeted = true
	c.processing = true
	epoch := c.epoch
	p := *c.s.Persona
	c.publishLocked()
	c.mu.Unlock()

	stability := p.VoiceStability
	c.voice.Speak(ctx, voice.Request{
		Text:      p.OpeningLine,
		CallType:  p.CallType(),
		Sentiment: voice.Neutral,
		Stability: &stability,
		VoiceID:   p.VoiceID,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	c.s.History = append(c.s.History, p.Name+": "+p.OpeningLine)
	c.s.LastAIMessage = p.OpeningLine
	c.processing = false
	c.scheduleListenLocked()
	c.publishLocked()
	return nil
}

// #endregion

// #region process-turn

// ProcessTurn sends one user utterance to the caller and resolves the
// result. Blank utterances are ignored. A turn already in flight yields
// ErrBusy; exhausted retries end the call as a hangup and return
// caller.ErrRateLimitExceeded.
func (c *Controller) ProcessTurn(ctx context.Context, utterance string) error {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil
	}

	c.mu.Lock()
	switch {
	case c.processing:
		c.mu.Unlock()
		return ErrBusy
	case c.s.Scenario == nil:
		c.mu.Unlock()
		return ErrNoScenario
	case c.s.Status != StatusActive:
		c.mu.Unlock()
		return ErrInvalidState
	}

	c.processing = true
	c.cancelListenLocked()
	c.listener.Stop()

	s := c.s
	s.History = append(s.History, "User: "+utterance)
	s.TurnsUsed++
	req := caller.TurnRequest{
		Scenario:  *s.Scenario,
		History:   append([]string(nil), s.History...),
		Turn:      s.TurnsUsed,
		MaxTurns:  s.MaxTurns,
		Utterance: utterance,
		Decoy:     s.decoyPrompt,
	}
	epoch := c.epoch
	c.publishLocked()
	c.mu.Unlock()

	raw, err := c.caller.GenerateTurn(ctx, req)

	if errors.Is(err, caller.ErrRateLimitExceeded) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return nil
		}
		c.log.Warn("rate limit exhausted mid-call, hanging up", "session", c.s.CallID, "turn", req.Turn)
		c.observer.OnAlert(rateLimitCallAlert)
		c.hangUpLocked()
		return err
	}

	var out evaluator.Outcome
	if err != nil {
		c.log.Warn("turn generation failed, using fallback", "turn", req.Turn, "error", err)
		out = evaluator.Fallback()
	} else if out, err = evaluator.Evaluate(raw); err != nil {
		c.log.Warn("malformed caller payload, using fallback", "turn", req.Turn, "error", err)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.log.Debug("discarding stale turn result", "turn", req.Turn)
		return nil
	}
	speak := c.applyOutcomeLocked(req, out)
	c.mu.Unlock()

	if speak == nil {
		return nil
	}
	c.voice.Speak(ctx, *speak)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.processing = false
		c.scheduleListenLocked()
		c.publishLocked()
	}
	return nil
}

// applyOutcomeLocked folds a turn outcome into the session. It returns the
// line to speak when the call is still active; the turn stays in progress
// until that line has been spoken.
func (c *Controller) applyOutcomeLocked(req caller.TurnRequest, out evaluator.Outcome) *voice.Request {
	s := c.s
	threatBefore := s.ThreatLevel

	s.AppendLog(out.TerminalLog)
	s.AddTactic(out.Tactic)
	s.History = append(s.History, s.Scenario.CallerName()+": "+out.Speech)
	s.LastAIMessage = out.Speech

	s.ThreatLevel = evaluator.Clamp(out.ThreatLevel, 0, 100)
	switch {
	case s.ThreatLevel < threatBefore:
		c.pulseLocked(PulsePositive)
	case s.ThreatLevel > threatBefore:
		c.pulseLocked(PulseNegative)
	}

	s.LastDamage = 0
	s.applyDamage(out.Damage)

	status, change := Resolve(s.TurnsUsed >= s.MaxTurns, out.Status, s.CallType)
	s.applyScore(change)
	s.Status = status

	c.log.Info("turn resolved", "session", s.CallID, "turn", req.Turn, "status", status,
		"threat", s.ThreatLevel, "tactic", out.Tactic, "damage", out.Damage, "score_change", change)

	if status == StatusCallFailure && out.Damage > 0 {
		c.scheduleBreachAlertLocked(out.Damage, s.AccountBalance, -change)
	}

	c.recordTurnLocked(logging.TurnRecord{
		TurnID:       uuid.New().String(),
		Turn:         req.Turn,
		Utterance:    req.Utterance,
		Speech:       out.Speech,
		TerminalLog:  out.TerminalLog,
		RawStatus:    string(out.Status),
		Tactic:       string(out.Tactic),
		Fallback:     out.Fallback,
		Decoy:        s.ActiveDecoy,
		ThreatBefore: threatBefore,
		ThreatAfter:  s.ThreatLevel,
		Damage:       out.Damage,
		FinalStatus:  string(status),
		ScoreChange:  change,
		ScoreAfter:   s.Score,
		BalanceAfter: s.AccountBalance,
	})

	if status != StatusActive {
		c.processing = false
		c.recordCallLocked(status, change)
		c.publishLocked()
		return nil
	}
	c.publishLocked()

	p := s.Persona
	stability := p.VoiceStability
	return &voice.Request{
		Text:      out.Speech,
		CallType:  s.CallType,
		Sentiment: voice.SentimentFor(s.CallType),
		Stability: &stability,
		VoiceID:   p.VoiceID,
	}
}

// #endregion

// #region hang-up

// HangUp ends the call. Hanging up a ringing or active call is scored by
// call type; hanging up after resolution only clears the screen. Either
// way the session returns to idle.
func (c *Controller) HangUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hangUpLocked()
}

func (c *Controller) hangUpLocked() {
	s := c.s
	switch {
	case s.Status == StatusIdle:
		return
	case s.Status == StatusRinging || s.Status == StatusActive:
		change := HangUpScore(s.CallType)
		s.applyScore(change)
		s.Status = StatusHungUp
		c.log.Info("call hung up", "session", s.CallID, "status", s.Status, "turn", s.TurnsUsed, "score_change", change)
		c.recordCallLocked(StatusHungUp, change)
	}

	c.epoch++
	c.processing = false
	c.cancelListenLocked()
	c.cancelPulseLocked()
	c.listener.Stop()
	s.reset()
	c.publishLocked()
}

// #endregion

// #region mute

// ToggleMute flips the mute flag and returns the new value. Muting stops
// an open listening window.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	if c.muted {
		c.cancelListenLocked()
		if c.listener.Listening() {
			c.listener.Stop()
		}
	} else {
		c.scheduleListenLocked()
	}
	c.publishLocked()
	return c.muted
}

// #endregion

// #region decoy

// DeployDecoy generates decoy data for the active call. An empty category
// uses the suggestion for the caller's goal and last line, or a random one.
func (c *Controller) DeployDecoy(cat decoy.Category) (decoy.Data, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.s
	if s.Status != StatusActive || s.Scenario == nil {
		return decoy.Data{}, ErrInvalidState
	}

	if cat == "" {
		if suggested, ok := decoy.Suggest(s.Scenario.Goal, s.LastAIMessage); ok {
			cat = suggested
		}
	}
	d := c.decoys.Generate(cat)
	s.ActiveDecoy = d.DisplayText
	s.decoyPrompt = decoy.FormatForPrompt(d)
	s.AppendLog("DECOY DEPLOYED: " + d.DisplayText)
	c.log.Info("decoy deployed", "session", s.CallID, "category", d.Category)
	c.publishLocked()
	return d, nil
}

// #endregion

// #region run

// Run feeds finalized utterances into ProcessTurn until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	if !c.listener.Supported() {
		c.log.Warn("speech input not supported")
		c.mu.Lock()
		c.observer.OnAlert(listenUnsupportedAlert)
		c.mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.stopTimersLocked()
			c.mu.Unlock()
			return ctx.Err()
		case u := <-c.listener.Utterances():
			if err := c.ProcessTurn(ctx, u); err != nil && !errors.Is(err, caller.ErrRateLimitExceeded) {
				c.log.Debug("utterance dropped", "error", err)
			}
		}
	}
}

// #endregion

// #region timers

func (c *Controller) scheduleListenLocked() {
	if c.s.Status != StatusActive || c.processing || c.muted ||
		!c.listener.Supported() || c.listener.Listening() {
		return
	}
	c.cancelListenLocked()
	epoch := c.epoch
	c.listenTimer = time.AfterFunc(c.cfg.ListenDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch || c.s.Status != StatusActive || c.processing || c.muted || c.listener.Listening() {
			return
		}
		if err := c.listener.Start(); err != nil {
			c.log.Warn("listener start failed", "error", err)
			return
		}
		c.publishLocked()
	})
}

func (c *Controller) cancelListenLocked() {
	if c.listenTimer != nil {
		c.listenTimer.Stop()
		c.listenTimer = nil
	}
}

func (c *Controller) pulseLocked(p Pulse) {
	c.cancelPulseLocked()
	c.s.Pulse = p
	epoch := c.epoch
	c.pulseTimer = time.AfterFunc(c.cfg.PulseDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch || c.s.Pulse != p {
			return
		}
		c.s.Pulse = PulseNone
		c.publishLocked()
	})
}

func (c *Controller) cancelPulseLocked() {
	if c.pulseTimer != nil {
		c.pulseTimer.Stop()
		c.pulseTimer = nil
	}
}

// scheduleBreachAlertLocked delays the breach notice. It is cancelled only
// when a new call starts.
func (c *Controller) scheduleBreachAlertLocked(damage, balance float64, creditsLost int) {
	if c.breachTimer != nil {
		c.breachTimer.Stop()
	}
	alert := BreachAlert(damage, balance, creditsLost)
	c.breachTimer = time.AfterFunc(c.cfg.BreachAlertDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observer.OnAlert(alert)
	})
}

func (c *Controller) stopTimersLocked() {
	c.cancelListenLocked()
	c.cancelPulseLocked()
	if c.breachTimer != nil {
		c.breachTimer.Stop()
		c.breachTimer = nil
	}
}

// #endregion

// #region ledger

func (c *Controller) recordTurnLocked(rec logging.TurnRecord) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.RecordTurn(c.s.CallID, rec); err != nil {
		c.log.Warn("ledger turn write failed", "session", c.s.CallID, "error", err)
	}
}

func (c *Controller) recordCallLocked(final CallStatus, change int) {
	if c.ledger == nil {
		return
	}
	s := c.s
	summary := logging.CallSummary{
		CallID:       s.CallID,
		CallType:     string(s.CallType),
		FinalStatus:  string(final),
		ScoreChange:  change,
		TurnsUsed:    s.TurnsUsed,
		BalanceAfter: s.AccountBalance,
		CreatedAt:    s.StartedAt,
		EndedAt:      time.Now().UTC(),
	}
	if s.Scenario != nil {
		summary.Persona = s.Scenario.Persona
	}
	if err := c.ledger.RecordCall(summary); err != nil {
		c.log.Warn("ledger call write failed", "session", s.CallID, "error", err)
	}
}

// #endregion
