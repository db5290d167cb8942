// Package capture owns the push-to-talk recording lifecycle: one microphone
// stream, one recorder, and the in-memory buffer of segments delivered while
// recording.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"murmur/audio"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrNoStream means no microphone stream was ever acquired (or the
	// session was torn down); recording cannot start.
	ErrNoStream = errors.New("no microphone stream acquired")

	// ErrAlreadyRecording is a non-fatal warning: Start while recording is
	// a no-op and the buffer is left intact.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrNotRecording is a non-fatal warning: Stop outside recording.
	ErrNotRecording = errors.New("not recording")
)

// Option configures a Session at construction.
type Option func(*Session)

// WithMonitor registers a hook invoked with each appended segment, for
// level metering. The hook runs on the platform callback goroutine.
func WithMonitor(fn func(segment []byte)) Option {
	return func(s *Session) { s.monitor = fn }
}

// Session holds exactly one capture device across many record/stop cycles.
// The stream is acquired once at construction; acquisition failure leaves
// the session permanently in the error state until it is re-created.
type Session struct {
	mu       sync.Mutex
	state    State
	stopping bool
	device   audio.CaptureDevice
	segments [][]byte
	size     int
	lastErr  error

	monitor func([]byte)
}

// NewSession acquires the microphone stream. The returned session is usable
// even when acquisition fails: it reports the error state and Err holds the
// unavailable cause.
func NewSession(ctx audio.Context, dev *audio.DeviceInfo, cfg audio.CaptureConfig, opts ...Option) *Session {
	s := &Session{state: StateIdle}
	for _, opt := range opts {
		opt(s)
	}

	device, err := ctx.NewCapture(dev, cfg)
	if err != nil {
		s.state = StateError
		if !errors.Is(err, audio.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", audio.ErrUnavailable, err)
		}
		s.lastErr = err
		return s
	}
	s.device = device
	return s
}

// Start begins a new recording. Valid from idle, stopped, or error (as the
// retry affordance); the segment buffer is cleared on success.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state == StateRecording {
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	if s.device == nil {
		s.mu.Unlock()
		return ErrNoStream
	}
	s.segments = nil
	s.size = 0
	s.lastErr = nil
	s.state = StateRecording
	device := s.device
	s.mu.Unlock()

	device.SetCallback(s.append)
	if err := device.Start(); err != nil {
		device.ClearCallback()
		s.mu.Lock()
		s.state = StateError
		s.lastErr = err
		s.mu.Unlock()
		return fmt.Errorf("recorder start: %w", err)
	}
	return nil
}

// append is the platform data callback. Out-of-state deliveries are dropped
// silently: they originate from asynchronous callbacks that may race
// teardown.
func (s *Session) append(data []byte, _ uint32) {
	if len(data) == 0 {
		return
	}
	seg := make([]byte, len(data))
	copy(seg, data)

	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.segments = append(s.segments, seg)
	s.size += len(seg)
	monitor := s.monitor
	s.mu.Unlock()

	if monitor != nil {
		monitor(seg)
	}
}

// Stop requests recorder finalization. The stopped transition is
// asynchronous: it commits only once the platform confirms the recorder
// halted and the last segment was flushed. Callers must wait on the
// returned channel before reading the buffer.
func (s *Session) Stop() (<-chan struct{}, error) {
	s.mu.Lock()
	if s.state != StateRecording || s.stopping {
		s.mu.Unlock()
		return nil, ErrNotRecording
	}
	s.stopping = true
	device := s.device
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := device.Stop() // blocks until the last callback is delivered
		device.ClearCallback()

		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopping = false
		if err != nil {
			// A recorder that failed to stop cleanly may have dropped
			// audio; the partial buffer is not trusted.
			s.state = StateError
			s.lastErr = err
			return
		}
		s.state = StateStopped
	}()
	return done, nil
}

// Bytes returns the buffered segments concatenated in delivery order.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, 0, s.size)
	for _, seg := range s.segments {
		buf = append(buf, seg...)
	}
	return buf
}

func (s *Session) SegmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) DeviceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return "none"
	}
	return s.device.DeviceName()
}

// Reset releases the stream and recorder and clears the buffer. Idempotent;
// the session is unusable for recording afterwards (Start reports
// ErrNoStream).
func (s *Session) Reset() {
	s.mu.Lock()
	device := s.device
	s.device = nil
	s.segments = nil
	s.size = 0
	s.state = StateIdle
	s.stopping = false
	s.mu.Unlock()

	if device != nil {
		device.ClearCallback()
		device.Stop()
		device.Close()
	}
}
