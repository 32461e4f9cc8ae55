package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/config"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/store"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/voice"
)

// #region backend

// buildCaller picks the conversational transport. A Gemini backend with no
// key degrades to an unscripted fixture, which draws personas from the
// authored catalog and answers every turn with the fallback line.
func buildCaller(c config.Config, log *slog.Logger) (*caller.Client, io.Closer, error) {
	var (
		backend  codec.Backend
		closer   io.Closer = nopCloser{}
		interval           = c.Caller.MinInterval
	)

	switch c.Caller.Backend {
	case config.BackendGRPC:
		cc, err := codec.NewCallerClient(c.Caller.GRPCAddr)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = cc, cc
		log.Info("caller backend", "backend", "grpc", "addr", c.Caller.GRPCAddr)

	case config.BackendFixture:
		f := &codec.Fixture{}
		if c.Caller.FixturePath != "" {
			loaded, err := codec.LoadFixture(c.Caller.FixturePath)
			if err != nil {
				return nil, nil, err
			}
			f = loaded
		}
		backend, interval = codec.NewFixtureBackend(f, nil), 0
		log.Info("caller backend", "backend", "fixture", "path", c.Caller.FixturePath, "turns", len(f.Turns))

	default:
		if c.Caller.APIKey == "" {
			log.Warn("GEMINI_API_KEY not set, using catalog personas with no live caller")
			backend, interval = codec.NewFixtureBackend(&codec.Fixture{}, nil), 0
			break
		}
		backend = codec.NewGeminiClient(c.Caller.APIKey, c.Caller.TurnModel)
		log.Info("caller backend", "backend", "gemini", "turn_model", c.Caller.TurnModel, "persona_model", c.Caller.PersonaModel)
	}

	return caller.New(backend, caller.NewThrottle(interval), c.CallerSettings()), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// #endregion backend

// #region voice

// buildVoice returns ElevenLabs when a key is configured, else the console.
func buildVoice(c config.Config, out io.Writer) voice.Speaker {
	console := voice.NewConsole(out)
	if c.Voice.APIKey == "" {
		return console
	}
	var player voice.Player = voice.DiscardPlayer{}
	if len(c.Voice.Player) > 0 {
		player = voice.CommandPlayer{Name: c.Voice.Player[0], Args: c.Voice.Player[1:]}
	}
	return voice.NewElevenLabs(c.Voice.APIKey, player, console)
}

// #endregion voice

// #region ledger

// openLedger opens the call ledger, or returns nil when recording is off.
func openLedger(c config.Config) (*store.Store, error) {
	if c.DBPath == "" {
		return nil, nil
	}
	st, err := store.NewStore(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return st, nil
}

// ledgerDep avoids handing the controller a typed-nil interface.
func ledgerDep(st *store.Store) orchestrator.Ledger {
	if st == nil {
		return nil
	}
	return st
}

// #endregion ledger
