package transcriber

import (
	"context"
	"sync"
)

// FakeTranscriber records every payload it was asked to transcribe and
// answers with a canned result. Used by tests that exercise the full
// record-transcribe-insert path without a network.
type FakeTranscriber struct {
	text string
	err  error
	lang string

	mu       sync.Mutex
	payloads [][]byte
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string            { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

func (f *FakeTranscriber) Transcribe(_ context.Context, audio []byte) (Result, error) {
	if err := checkAudio(audio); err != nil {
		return Result{}, err
	}
	cp := make([]byte, len(audio))
	copy(cp, audio)
	f.mu.Lock()
	f.payloads = append(f.payloads, cp)
	f.mu.Unlock()
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Text: f.text, NoSpeech: f.text == ""}, nil
}

// Payloads returns the audio buffers received so far, in call order.
func (f *FakeTranscriber) Payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}
