package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"murmur/beep"
	"murmur/capture"
	"murmur/clipboard"
	"murmur/control"
	"murmur/encoder"
	"murmur/indicator"
	"murmur/log"
	"murmur/transcriber"
	"murmur/tray"
)

// recorder is the UI-side toggle loop: it flips the capture session on and
// off, walks the indicator through its states, and delivers finished
// recordings across the control channel.
type recorder struct {
	ch        *control.Channel
	sess      *capture.Session
	ind       *indicator.Machine
	slot      *control.Slot
	autoPaste bool

	insert       func(text string) error
	restoreDelay time.Duration
	answerDwell  time.Duration
	morphRetry   time.Duration

	mu        sync.Mutex
	lastText  string
	lastAudio []byte
}

func newRecorder(ch *control.Channel, sess *capture.Session, ind *indicator.Machine, autoPaste bool) *recorder {
	r := &recorder{
		ch:           ch,
		sess:         sess,
		ind:          ind,
		slot:         &control.Slot{},
		autoPaste:    autoPaste,
		restoreDelay: 600 * time.Millisecond,
		answerDwell:  400 * time.Millisecond,
		morphRetry:   50 * time.Millisecond,
	}
	r.insert = r.pasteInsert
	return r
}

// Run consumes the toggle stream until ctx is cancelled.
func (r *recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.ch.Toggle():
			r.toggle(ctx)
		}
	}
}

func (r *recorder) toggle(ctx context.Context) {
	if r.sess.State() == capture.StateRecording {
		r.finish(ctx)
		return
	}
	r.start()
}

func (r *recorder) start() {
	if r.slot.InFlight() {
		// One recording at a time end to end; toggles while a
		// transcription is still running are dropped, not queued.
		log.Warn("toggle ignored: transcription in flight")
		return
	}
	if err := r.sess.Start(); err != nil {
		if errors.Is(err, capture.ErrAlreadyRecording) {
			return
		}
		r.fail(err)
		return
	}
	log.Info("recording_start: " + r.sess.DeviceName())
	r.setIndicator(indicator.Prompted)
	go beep.PlayStart()
	tuiSend(RecordingStartMsg{})
}

func (r *recorder) finish(ctx context.Context) {
	done, err := r.sess.Stop()
	if err != nil {
		if errors.Is(err, capture.ErrNotRecording) {
			return
		}
		r.fail(err)
		return
	}
	log.Info("recording_stop")
	go beep.PlayEnd()
	tuiSend(RecordingStopMsg{})
	r.setIndicator(indicator.Thinking)

	if err := r.slot.Acquire(); err != nil {
		log.Warn("toggle ignored: transcription in flight")
		return
	}
	go func() {
		defer r.slot.Release()
		<-done
		r.deliver(ctx)
	}()
}

// deliver runs after the platform confirms the recorder stopped; the buffer
// is complete at this point.
func (r *recorder) deliver(ctx context.Context) {
	if err := r.sess.Err(); err != nil {
		r.fail(err)
		return
	}

	raw := r.sess.Bytes()
	r.mu.Lock()
	r.lastAudio = raw
	r.mu.Unlock()

	text, err := r.ch.Transcribe(ctx, raw)
	if err != nil {
		if errors.Is(err, transcriber.ErrNoAudio) {
			log.Info("recording too short, skipped")
			tuiSend(TranscriptMsg{NoSpeech: true})
			r.setIndicator(indicator.Dormant)
			return
		}
		r.fail(err)
		return
	}
	if text == "" {
		tuiSend(TranscriptMsg{NoSpeech: true})
		r.setIndicator(indicator.Dormant)
		return
	}

	r.mu.Lock()
	r.lastText = text
	r.mu.Unlock()
	transcriptCount.Add(1)

	r.setIndicator(indicator.Answering)
	tuiSend(TranscriptMsg{Text: text})
	audioLen := time.Duration(float64(len(raw)) / float64(encoder.BytesPerSecond) * float64(time.Second))
	tray.SetLastTranscript(audioLen)

	if r.autoPaste {
		if err := r.insert(text); err != nil {
			log.Errorf("paste error: %v", err)
			tuiSend(StatusMsg{Text: "Paste failed: " + err.Error()})
		}
	}

	time.Sleep(r.answerDwell)
	r.setIndicator(indicator.Dormant)
}

// setIndicator requests a transition, retrying briefly when a morph is in
// flight. The indicator drops concurrent requests; the recorder's moves are
// sequential and must all land eventually.
func (r *recorder) setIndicator(s indicator.State) {
	for i := 0; i < 20; i++ {
		if r.ind.State() == s || r.ind.Request(s) {
			break
		}
		time.Sleep(r.morphRetry)
	}
	tray.SetState(s)
}

func (r *recorder) fail(err error) {
	log.Errorf("recording error: %v", err)
	tuiSend(StatusMsg{Text: "Error: " + err.Error()})
	tray.SetError(err.Error())
	go beep.PlayError()
	r.setIndicator(indicator.Dormant)
}

// pasteInsert puts the transcript on the clipboard, synthesizes the paste
// keystroke, then restores whatever the clipboard held before.
func (r *recorder) pasteInsert(text string) error {
	prev, _ := clipboard.Read()
	if err := clipboard.Copy(text); err != nil {
		return err
	}
	if err := clipboard.Paste(); err != nil {
		return err
	}
	if prev != "" && prev != text {
		time.Sleep(r.restoreDelay)
		return clipboard.Copy(prev)
	}
	return nil
}

func (r *recorder) LastText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastText
}

func (r *recorder) LastAudio() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastAudio
}
