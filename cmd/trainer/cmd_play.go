package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/decoy"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/listen"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/voice"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take calls in the terminal",
	Long: `Rings you with a generated caller. Press Enter to answer, then type your
replies. Commands: /hangup /mute /decoy [category] /status /new /help /quit`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	log := logging.New("trainer")
	cl, closer, err := buildCaller(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	out := cmd.OutOrStdout()
	p := newPlaySession(cfg.SessionSettings(), cl, buildVoice(cfg, out), ledgerDep(st), out, cmd.ErrOrStderr())
	return p.run(cmd.Context(), cmd.InOrStdin())
}

// #region session

type playSession struct {
	ctrl     *orchestrator.Controller
	listener *listen.LineListener
	out      io.Writer
	errOut   io.Writer
}

func newPlaySession(oc orchestrator.Config, c orchestrator.Caller, sp voice.Speaker, ledger orchestrator.Ledger, out, errOut io.Writer) *playSession {
	p := &playSession{listener: listen.NewLineListener(), out: out, errOut: errOut}
	p.ctrl = orchestrator.New(oc, orchestrator.Deps{
		Caller:   c,
		Voice:    sp,
		Listener: p.listener,
		Ledger:   ledger,
		Observer: &terminalObserver{out: out, errOut: errOut},
	})
	return p
}

// run rings the first call and reads commands until /quit, EOF or ctx ends.
// Leaving mid-call counts as hanging up.
func (p *playSession) run(ctx context.Context, in io.Reader) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.ctrl.Run(runCtx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-runCtx.Done():
				return
			}
		}
	}()

	p.ring(ctx)
	for {
		select {
		case <-ctx.Done():
			p.hangUp()
			return nil
		case line, ok := <-lines:
			if !ok || p.handle(ctx, line) {
				p.hangUp()
				return nil
			}
		}
	}
}

// handle runs one input line and reports whether to quit.
func (p *playSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")

	switch name {
	case "/quit", "/exit":
		return true
	case "/hangup":
		p.hangUp()
	case "/mute":
		if p.ctrl.ToggleMute() {
			fmt.Fprintln(p.out, "Microphone muted.")
		} else {
			fmt.Fprintln(p.out, "Microphone on.")
		}
	case "/decoy":
		p.deployDecoy(strings.TrimSpace(arg))
	case "/status":
		p.printStatus()
	case "/new":
		p.ring(ctx)
	case "/help":
		fmt.Fprintln(p.out, "Commands: /hangup /mute /decoy [category] /status /new /quit")
		fmt.Fprintf(p.out, "Decoy categories: %s\n", categoryList())
	default:
		if strings.HasPrefix(name, "/") {
			fmt.Fprintf(p.out, "Unknown command %s, try /help.\n", name)
			return false
		}
		p.say(ctx, line)
	}
	return false
}

// #endregion session

// #region actions

func (p *playSession) ring(ctx context.Context) {
	fmt.Fprintln(p.out, "Incoming call...")
	if err := p.ctrl.InitiateCall(ctx); err != nil {
		if errors.Is(err, orchestrator.ErrInvalidState) {
			fmt.Fprintln(p.out, "Finish or /hangup the current call first.")
		}
		return
	}
	snap := p.ctrl.Snapshot()
	if snap.Status == orchestrator.StatusRinging {
		fmt.Fprintf(p.out, "%s is calling. Press Enter to answer, /hangup to decline.\n", snap.Persona)
	}
}

func (p *playSession) say(ctx context.Context, line string) {
	snap := p.ctrl.Snapshot()
	switch snap.Status {
	case orchestrator.StatusRinging:
		if err := p.ctrl.Answer(ctx); err != nil {
			fmt.Fprintf(p.errOut, "answer: %v\n", err)
		}
	case orchestrator.StatusActive:
		if line == "" || p.listener.Feed(line) {
			return
		}
		switch {
		case snap.Processing:
			fmt.Fprintln(p.out, "(the caller is still talking)")
		case snap.Muted:
			fmt.Fprintln(p.out, "(muted, /mute to speak)")
		default:
			if err := p.ctrl.ProcessTurn(ctx, line); err != nil && !errors.Is(err, caller.ErrRateLimitExceeded) {
				fmt.Fprintf(p.errOut, "turn: %v\n", err)
			}
		}
	case orchestrator.StatusIdle:
		fmt.Fprintln(p.out, "No call. /new to take one.")
	default:
		fmt.Fprintln(p.out, "The call is over. /new for another.")
	}
}

func (p *playSession) hangUp() {
	before := p.ctrl.Snapshot()
	if before.Status == orchestrator.StatusIdle {
		return
	}
	p.ctrl.HangUp()
	after := p.ctrl.Snapshot()
	if before.Status == orchestrator.StatusRinging || before.Status == orchestrator.StatusActive {
		fmt.Fprintf(p.out, "You hung up on %s (%s). Score %d (%+d).\n",
			before.CallerName, strings.ToLower(before.CallType), after.Score, after.Score-before.Score)
	}
}

func (p *playSession) deployDecoy(arg string) {
	cat, err := decoy.ParseCategory(arg)
	if err != nil {
		fmt.Fprintf(p.out, "%v. Categories: %s\n", err, categoryList())
		return
	}
	d, err := p.ctrl.DeployDecoy(cat)
	if err != nil {
		fmt.Fprintln(p.out, "Decoys only work during an active call.")
		return
	}
	fmt.Fprintf(p.out, "Decoy ready (%s): %s\n", d.Category, d.DisplayText)
}

func (p *playSession) printStatus() {
	s := p.ctrl.Snapshot()
	fmt.Fprintf(p.out, "Status:   %s\n", s.Status)
	if s.Persona != "" {
		fmt.Fprintf(p.out, "Caller:   %s\n", s.Persona)
		fmt.Fprintf(p.out, "Turn:     %d/%d\n", s.TurnsUsed, s.MaxTurns)
		fmt.Fprintf(p.out, "Threat:   %d\n", s.ThreatLevel)
	}
	fmt.Fprintf(p.out, "Score:    %d\n", s.Score)
	fmt.Fprintf(p.out, "Balance:  $%.0f\n", s.AccountBalance)
	if len(s.DetectedTactics) > 0 {
		fmt.Fprintf(p.out, "Tactics:  %s\n", strings.Join(s.DetectedTactics, ", "))
	}
	if s.SuggestedDecoy != "" {
		fmt.Fprintf(p.out, "Suggest:  /decoy %s\n", s.SuggestedDecoy)
	}
	if s.Muted {
		fmt.Fprintln(p.out, "Muted")
	}
}

func categoryList() string {
	names := make([]string, len(decoy.Categories))
	for i, c := range decoy.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// #endregion actions

// #region observer

// terminalObserver prints resolutions, new terminal log lines and alerts.
// The controller serializes calls, so it keeps no lock of its own.
type terminalObserver struct {
	out, errOut io.Writer

	callID  string
	status  orchestrator.CallStatus
	lastLog string
}

func (o *terminalObserver) OnState(s orchestrator.Snapshot) {
	if s.CallID != o.callID {
		o.callID, o.lastLog = s.CallID, ""
	}
	if n := len(s.TerminalLogs); n > 0 && s.TerminalLogs[n-1] != o.lastLog {
		o.lastLog = s.TerminalLogs[n-1]
		fmt.Fprintf(o.out, "  > %s  [threat %d]\n", o.lastLog, s.ThreatLevel)
	}
	if s.Status == o.status {
		return
	}
	o.status = s.Status
	switch s.Status {
	case orchestrator.StatusCallSuccess:
		fmt.Fprintf(o.out, "CALL RESOLVED: success (%+d). It was a %s call. Score %d, balance $%.0f. /new for another.\n",
			s.LastScoreChange, strings.ToLower(s.CallType), s.Score, s.AccountBalance)
	case orchestrator.StatusCallFailure:
		fmt.Fprintf(o.out, "CALL RESOLVED: failure (%+d). It was a %s call. Score %d, balance $%.0f. /new for another.\n",
			s.LastScoreChange, strings.ToLower(s.CallType), s.Score, s.AccountBalance)
	}
}

func (o *terminalObserver) OnAlert(a orchestrator.Alert) {
	fmt.Fprintf(o.errOut, "!! %s\n", a.Message)
}

// #endregion observer
