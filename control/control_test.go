package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// scriptHandler answers calls with canned values and records payloads.
type scriptHandler struct {
	mu       sync.Mutex
	payloads [][]byte
	text     func(audio []byte) string
	err      error
	granted  bool
	status   SaveStatus
	delay    time.Duration
}

func (h *scriptHandler) Transcribe(_ context.Context, audio []byte) (string, error) {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	cp := make([]byte, len(audio))
	copy(cp, audio)
	h.payloads = append(h.payloads, cp)
	h.mu.Unlock()
	if h.err != nil {
		return "", h.err
	}
	if h.text != nil {
		return h.text(audio), nil
	}
	return "ok", nil
}

func (h *scriptHandler) RequestMicAccess(context.Context) (bool, error) {
	return h.granted, h.err
}

func (h *scriptHandler) SaveRecording(_ context.Context, audio []byte) (SaveStatus, error) {
	h.mu.Lock()
	h.payloads = append(h.payloads, audio)
	h.mu.Unlock()
	return h.status, h.err
}

func (h *scriptHandler) HideWindow(context.Context) error {
	return h.err
}

func serve(t *testing.T, h Handler) *Channel {
	t.Helper()
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Serve(ctx, h)
	return c
}

func TestTranscribeRoundTrip(t *testing.T) {
	h := &scriptHandler{text: func(a []byte) string { return fmt.Sprintf("%d bytes", len(a)) }}
	c := serve(t, h)

	text, err := c.Transcribe(context.Background(), make([]byte, 12000))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "12000 bytes" {
		t.Errorf("text = %q", text)
	}
	if len(h.payloads) != 1 || len(h.payloads[0]) != 12000 {
		t.Errorf("handler payloads = %d", len(h.payloads))
	}
}

func TestHandlerErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream failed")
	c := serve(t, &scriptHandler{err: wantErr})

	_, err := c.Transcribe(context.Background(), []byte("xxxx"))
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestCorrelationUnderConcurrentCalls(t *testing.T) {
	h := &scriptHandler{text: func(a []byte) string { return fmt.Sprintf("len=%d", len(a)) }}
	c := serve(t, h)

	var wg sync.WaitGroup
	for n := 1; n <= 8; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			text, err := c.Transcribe(context.Background(), make([]byte, n))
			if err != nil {
				t.Errorf("call %d: %v", n, err)
				return
			}
			if want := fmt.Sprintf("len=%d", n); text != want {
				t.Errorf("call %d got response %q, want %q", n, text, want)
			}
		}(n)
	}
	wg.Wait()
}

func TestToggleCoalesces(t *testing.T) {
	c := New()
	c.NotifyToggle()
	c.NotifyToggle()
	c.NotifyToggle()

	select {
	case <-c.Toggle():
	default:
		t.Fatal("expected a pending toggle")
	}
	select {
	case <-c.Toggle():
		t.Fatal("toggles should coalesce to one pending signal")
	default:
	}
}

func TestCallContextCancelled(t *testing.T) {
	c := New() // no Serve loop: the call can never be accepted

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Transcribe(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMicAccessAndSave(t *testing.T) {
	c := serve(t, &scriptHandler{granted: true, status: SaveCancelled})

	granted, err := c.RequestMicAccess(context.Background())
	if err != nil || !granted {
		t.Errorf("RequestMicAccess = %v, %v", granted, err)
	}

	status, err := c.SaveRecording(context.Background(), []byte("data"))
	if err != nil {
		t.Fatalf("SaveRecording: %v", err)
	}
	if status != SaveCancelled {
		t.Errorf("status = %v, want cancelled", status)
	}
}

func TestSlotSingleFlight(t *testing.T) {
	var s Slot
	if err := s.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := s.Acquire(); !errors.Is(err, ErrCallInFlight) {
		t.Fatalf("second Acquire = %v, want ErrCallInFlight", err)
	}
	s.Release()
	if err := s.Acquire(); err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	if !s.InFlight() {
		t.Error("InFlight should be true while held")
	}
}
