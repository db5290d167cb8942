// Package transcriber uploads finished recordings to a speech-to-text
// service. One upload per recording, no automatic retries: every failure is
// terminal for that attempt and surfaces to the caller.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// MinAudioBytes is the smallest recording worth submitting. Anything below
// this is almost certainly silence or a mis-tap and is rejected locally
// before any network traffic.
const MinAudioBytes = 1024

// ErrNoAudio marks a recording too small to contain speech.
var ErrNoAudio = errors.New("no audio captured")

// Error is a failed transcription attempt, carrying the upstream message.
type Error struct {
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s transcription: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s transcription: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

// Result is one completed transcription. Text may be empty when the service
// understood silence; NoSpeech distinguishes that from real output.
type Result struct {
	Text      string
	NoSpeech  bool
	Metrics   *NetworkMetrics
	RateLimit string // "remaining/limit" or empty
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	Transcribe(ctx context.Context, audio []byte) (Result, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
	lang   string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// checkAudio enforces the minimum viable recording size. Sub-threshold
// buffers must never reach the upload path.
func checkAudio(audio []byte) error {
	if len(audio) < MinAudioBytes {
		return fmt.Errorf("%w: %d bytes (minimum %d)", ErrNoAudio, len(audio), MinAudioBytes)
	}
	return nil
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

// New picks a provider from the environment. A missing credential is a
// fatal configuration error for the whole app, reported once at startup.
func New() (Transcriber, error) {
	if key := os.Getenv("DEEPGRAM_API_KEY"); key != "" {
		d := NewDeepgram(key)
		go d.client.Warm(d.apiURL)
		return d, nil
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		g := NewGroq(key)
		go g.client.Warm(g.apiURL)
		return g, nil
	}
	return nil, fmt.Errorf("set DEEPGRAM_API_KEY or GROQ_API_KEY environment variable")
}
