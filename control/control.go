// Package control is the boundary between the privileged side of the app
// (hotkey, transcription service, OS prompts) and the UI side (capture
// session, indicator, text insertion). It relays the toggle signal one way
// and correlated request/response calls the other; it never queues,
// reorders, or retries.
package control

import (
	"context"
	"fmt"
	"sync/atomic"
)

// SaveStatus is the outcome of a save request. A cancelled dialog is a
// normal outcome, not an error.
type SaveStatus int

const (
	SaveCompleted SaveStatus = iota
	SaveCancelled
)

func (s SaveStatus) String() string {
	if s == SaveCancelled {
		return "cancelled"
	}
	return "completed"
}

// Handler is the privileged surface exposed to the UI side. These are the
// only operations the UI may invoke across the boundary.
type Handler interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	RequestMicAccess(ctx context.Context) (bool, error)
	SaveRecording(ctx context.Context, audio []byte) (SaveStatus, error)
	HideWindow(ctx context.Context) error
}

type kind int

const (
	kindTranscribe kind = iota
	kindMicAccess
	kindSave
	kindHide
)

type request struct {
	id    uint64
	kind  kind
	audio []byte
	reply chan response
}

type response struct {
	id      uint64
	text    string
	granted bool
	status  SaveStatus
	err     error
}

// Channel carries one toggle signal stream and correlated calls. Each call
// gets a fresh correlation ID; the response must echo it back.
type Channel struct {
	toggle   chan struct{}
	requests chan request
	nextID   atomic.Uint64
}

func New() *Channel {
	return &Channel{
		toggle:   make(chan struct{}, 1),
		requests: make(chan request),
	}
}

// NotifyToggle signals the UI to flip recording. Signals arriving while one
// is already pending coalesce; the hotkey can outpace the UI loop.
func (c *Channel) NotifyToggle() {
	select {
	case c.toggle <- struct{}{}:
	default:
	}
}

// Toggle is the UI-side signal stream. At most one listener.
func (c *Channel) Toggle() <-chan struct{} {
	return c.toggle
}

// Serve runs the privileged dispatch loop until ctx is cancelled. Calls are
// handled one at a time on this loop, matching the single event loop of the
// privileged side.
func (c *Channel) Serve(ctx context.Context, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			resp := response{id: req.id}
			switch req.kind {
			case kindTranscribe:
				resp.text, resp.err = h.Transcribe(ctx, req.audio)
			case kindMicAccess:
				resp.granted, resp.err = h.RequestMicAccess(ctx)
			case kindSave:
				resp.status, resp.err = h.SaveRecording(ctx, req.audio)
			case kindHide:
				resp.err = h.HideWindow(ctx)
			}
			req.reply <- resp
		}
	}
}

func (c *Channel) call(ctx context.Context, k kind, audio []byte) (response, error) {
	req := request{
		id:    c.nextID.Add(1),
		kind:  k,
		audio: audio,
		reply: make(chan response, 1),
	}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		if resp.id != req.id {
			// Broken pairing is a logic error, never an expected condition.
			return response{}, fmt.Errorf("relay correlation mismatch: response %d for call %d", resp.id, req.id)
		}
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Transcribe sends a finished recording across the boundary and returns the
// recognized text.
func (c *Channel) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.call(ctx, kindTranscribe, audio)
	if err != nil {
		return "", err
	}
	return resp.text, resp.err
}

// RequestMicAccess asks the privileged side to run the OS microphone
// permission prompt.
func (c *Channel) RequestMicAccess(ctx context.Context) (bool, error) {
	resp, err := c.call(ctx, kindMicAccess, nil)
	if err != nil {
		return false, err
	}
	return resp.granted, resp.err
}

// SaveRecording asks the privileged side to prompt for a destination and
// write the recording verbatim.
func (c *Channel) SaveRecording(ctx context.Context, audio []byte) (SaveStatus, error) {
	resp, err := c.call(ctx, kindSave, audio)
	if err != nil {
		return SaveCancelled, err
	}
	return resp.status, resp.err
}

// HideWindow asks the privileged side to hide the main surface.
func (c *Channel) HideWindow(ctx context.Context) error {
	resp, err := c.call(ctx, kindHide, nil)
	if err != nil {
		return err
	}
	return resp.err
}
