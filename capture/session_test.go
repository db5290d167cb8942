package capture

import (
	"bytes"
	"errors"
	"testing"

	"murmur/audio"
)

var testConfig = audio.CaptureConfig{SampleRate: 16000, Channels: 1}

func newTestSession(t *testing.T) (*Session, *audio.FakeCapture) {
	t.Helper()
	ctx := audio.NewFakeContext()
	sess := NewSession(ctx, nil, testConfig)
	if sess.State() != StateIdle {
		t.Fatalf("state = %v, want idle", sess.State())
	}
	caps := ctx.Captures()
	if len(caps) != 1 {
		t.Fatalf("expected 1 capture device, got %d", len(caps))
	}
	return sess, caps[0]
}

func mustStop(t *testing.T, sess *Session) {
	t.Helper()
	done, err := sess.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	<-done
}

func segment(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestAcquisitionFailure(t *testing.T) {
	ctx := audio.NewFakeContext()
	ctx.AcquireErr = audio.ErrUnavailable

	sess := NewSession(ctx, nil, testConfig)
	if sess.State() != StateError {
		t.Fatalf("state = %v, want error", sess.State())
	}
	if !errors.Is(sess.Err(), audio.ErrUnavailable) {
		t.Errorf("Err = %v, want ErrUnavailable", sess.Err())
	}
	if err := sess.Start(); !errors.Is(err, ErrNoStream) {
		t.Errorf("Start = %v, want ErrNoStream", err)
	}
}

func TestRecordStopCycle(t *testing.T) {
	sess, cap := newTestSession(t)

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.State() != StateRecording {
		t.Fatalf("state = %v, want recording", sess.State())
	}

	cap.Feed(segment(1, 4000))
	cap.Feed(segment(2, 4000))
	cap.Feed(segment(3, 4000))

	mustStop(t, sess)
	if sess.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", sess.State())
	}

	buf := sess.Bytes()
	if len(buf) != 12000 {
		t.Fatalf("buffer size = %d, want 12000", len(buf))
	}
	// Delivery order must be preserved.
	if buf[0] != 1 || buf[4000] != 2 || buf[8000] != 3 {
		t.Error("segments out of delivery order")
	}
	if sess.SegmentCount() != 3 {
		t.Errorf("SegmentCount = %d, want 3", sess.SegmentCount())
	}
}

func TestDoubleStartIsNoOp(t *testing.T) {
	sess, cap := newTestSession(t)

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.Feed(segment(7, 1000))

	err := sess.Start()
	if !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second Start = %v, want ErrAlreadyRecording", err)
	}
	if sess.State() != StateRecording {
		t.Errorf("state = %v, want recording", sess.State())
	}
	if sess.Size() != 1000 {
		t.Errorf("buffer cleared by no-op Start: size = %d, want 1000", sess.Size())
	}
	if cap.Starts() != 1 {
		t.Errorf("recorder started %d times, want 1", cap.Starts())
	}
}

func TestAppendOutOfStateIgnored(t *testing.T) {
	sess, cap := newTestSession(t)

	cap.Feed(segment(9, 500)) // before Start: callback not yet registered
	if sess.Size() != 0 {
		t.Fatalf("size = %d before start, want 0", sess.Size())
	}

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.Feed(segment(9, 500))
	mustStop(t, sess)

	cap.SetCallback(sess.append) // simulate a straggler callback racing teardown
	cap.Feed(segment(9, 500))
	if sess.Size() != 500 {
		t.Errorf("size = %d after late delivery, want 500", sess.Size())
	}
}

func TestStartClearsPreviousBuffer(t *testing.T) {
	sess, cap := newTestSession(t)

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.Feed(segment(1, 100))
	mustStop(t, sess)

	if err := sess.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if sess.Size() != 0 {
		t.Errorf("buffer not cleared on restart: size = %d", sess.Size())
	}
	cap.Feed(segment(2, 200))
	mustStop(t, sess)
	if got := sess.Bytes(); len(got) != 200 || got[0] != 2 {
		t.Errorf("buffer = %d bytes starting %d, want 200 bytes of 2s", len(got), got[0])
	}
}

func TestStopWhileIdle(t *testing.T) {
	sess, _ := newTestSession(t)
	if _, err := sess.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop = %v, want ErrNotRecording", err)
	}
}

func TestSecondStopDuringFinalize(t *testing.T) {
	sess, _ := newTestSession(t)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	done, err := sess.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	<-done
	if _, err := sess.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("second Stop = %v, want ErrNotRecording", err)
	}
}

func TestStopErrorForcesErrorState(t *testing.T) {
	sess, cap := newTestSession(t)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.StopErr = errors.New("device wedged")
	mustStop(t, sess)
	if sess.State() != StateError {
		t.Fatalf("state = %v, want error after stop failure", sess.State())
	}
	if sess.Err() == nil {
		t.Error("Err should hold the stop failure")
	}
}

func TestStartErrorForcesErrorState(t *testing.T) {
	sess, cap := newTestSession(t)
	cap.StartErr = errors.New("device busy")
	if err := sess.Start(); err == nil {
		t.Fatal("Start should fail")
	}
	if sess.State() != StateError {
		t.Fatalf("state = %v, want error", sess.State())
	}

	// Error state is the retry affordance: a later Start must work.
	cap.StartErr = nil
	if err := sess.Start(); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
}

func TestResetIdempotent(t *testing.T) {
	sess, cap := newTestSession(t)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.Feed(segment(1, 100))

	sess.Reset()
	sess.Reset()

	if !cap.Closed() {
		t.Error("device not released by Reset")
	}
	if sess.Size() != 0 {
		t.Errorf("buffer not cleared: size = %d", sess.Size())
	}
	if err := sess.Start(); !errors.Is(err, ErrNoStream) {
		t.Errorf("Start after Reset = %v, want ErrNoStream", err)
	}
}

func TestMonitorSeesSegments(t *testing.T) {
	ctx := audio.NewFakeContext()
	var seen int
	sess := NewSession(ctx, nil, testConfig, WithMonitor(func(seg []byte) {
		seen += len(seg)
	}))
	cap := ctx.Captures()[0]

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.Feed(segment(1, 640))
	cap.Feed(segment(2, 640))
	mustStop(t, sess)

	if seen != 1280 {
		t.Errorf("monitor saw %d bytes, want 1280", seen)
	}
}
