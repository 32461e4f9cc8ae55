package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
)

// #region client

// DefaultElevenLabsURL is the public API root.
const DefaultElevenLabsURL = "https://api.elevenlabs.io/v1"

// ElevenLabs streams speech from the ElevenLabs API and plays it through
// Player. Every failure is routed to Fallback.
type ElevenLabs struct {
	APIKey     string
	BaseURL    string
	ModelID    string
	HTTPClient *http.Client
	Player     Player
	Fallback   Speaker

	mu  sync.Mutex
	rng *rand.Rand
	log *slog.Logger
}

// NewElevenLabs builds a client. player may be nil to fetch without
// playing; fallback nil means a stdout Console.
func NewElevenLabs(apiKey string, player Player, fallback Speaker) *ElevenLabs {
	if player == nil {
		player = DiscardPlayer{}
	}
	if fallback == nil {
		fallback = NewConsole(nil)
	}
	return &ElevenLabs{
		APIKey:     apiKey,
		BaseURL:    DefaultElevenLabsURL,
		ModelID:    "eleven_turbo_v2_5",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Player:     player,
		Fallback:   fallback,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:        logging.New("voice"),
	}
}

// #endregion client

// #region speak

type ttsRequest struct {
	Text          string   `json:"text"`
	ModelID       string   `json:"model_id"`
	VoiceSettings Settings `json:"voice_settings"`
}

// Speak implements Speaker.
func (e *ElevenLabs) Speak(ctx context.Context, req Request) {
	if strings.TrimSpace(req.Text) == "" {
		return
	}
	if e.APIKey == "" {
		e.Fallback.Speak(ctx, req)
		return
	}

	audio, err := e.synthesize(ctx, req)
	if err == nil {
		err = e.Player.Play(ctx, audio)
	}
	if err != nil {
		e.log.Warn("speech degraded to fallback", "error", err)
		e.Fallback.Speak(ctx, req)
	}
}

func (e *ElevenLabs) synthesize(ctx context.Context, req Request) ([]byte, error) {
	e.mu.Lock()
	voiceID := PickVoice(e.rng, req)
	e.mu.Unlock()

	body, err := json.Marshal(ttsRequest{Text: req.Text, ModelID: e.ModelID, VoiceSettings: SettingsFor(req)})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream", strings.TrimRight(e.BaseURL, "/"), voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.APIKey)

	resp, err := e.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

// #endregion speak
