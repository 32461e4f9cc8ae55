// Package voice speaks caller lines. The ElevenLabs client degrades to a
// console rendering on any failure, and Speak never returns an error so a
// call cannot stall on audio.
package voice

import (
	"context"
	"math/rand/v2"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region types

// Sentiment shades the default stability for scam voices.
type Sentiment string

const (
	Aggressive   Sentiment = "aggressive"
	Professional Sentiment = "professional"
	Neutral      Sentiment = "neutral"
)

// Request is one line to speak.
type Request struct {
	Text      string
	CallType  scenario.CallType
	Sentiment Sentiment
	// Stability overrides the call-type default when non-nil.
	Stability *float64
	// VoiceID overrides the random pool pick when set.
	VoiceID string
}

// Speaker renders a line as speech. Implementations must return only
// once playback is finished or abandoned.
type Speaker interface {
	Speak(ctx context.Context, req Request)
}

// Settings is the ElevenLabs voice_settings object.
type Settings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// #endregion types

// #region voice-selection

var (
	ScamVoices = []string{
		"pqHfZKP75CvOlQylNhV4",
		"nPczCjzI2devNBz1zQrb",
		"N2lVS1w4EtoT3dr4eOWO",
		"IKne3meq5aSn9XLyUdCD",
		"onwK4e9ZLuTAKqWW03F9",
	}
	GenuineVoices = []string{
		"EXAVITQu4vr4xnSDxMaL",
		"21m00Tcm4TlvDq8ikWAM",
		"AZnzlk1XvdvUeBnXmlld",
		"ErXwobaYiN019PkySvjV",
		"MF3mGyEYCl7XYWbV9V6O",
	}
)

// PickVoice returns the override if set, otherwise a random voice from the
// call type's pool.
func PickVoice(rng *rand.Rand, req Request) string {
	if req.VoiceID != "" {
		return req.VoiceID
	}
	pool := GenuineVoices
	if req.CallType == scenario.Scam {
		pool = ScamVoices
	}
	return pool[rng.IntN(len(pool))]
}

// SettingsFor derives voice settings from call type and sentiment.
func SettingsFor(req Request) Settings {
	scam := req.CallType == scenario.Scam

	stability := 0.9
	if scam {
		stability = 0.4
		if req.Sentiment == Aggressive {
			stability = 0.3
		}
	}
	if req.Stability != nil {
		stability = *req.Stability
	}

	if scam {
		return Settings{Stability: stability, SimilarityBoost: 0.75, Style: 0.7, UseSpeakerBoost: true}
	}
	return Settings{Stability: stability, SimilarityBoost: 0.8, Style: 0.3, UseSpeakerBoost: true}
}

// SentimentFor is the sentiment used for a call type's lines.
func SentimentFor(t scenario.CallType) Sentiment {
	if t == scenario.Scam {
		return Aggressive
	}
	return Professional
}

// #endregion voice-selection
