package tray

import (
	"testing"
	"time"
)

func currentTooltip() string {
	tooltipMu.Lock()
	defer tooltipMu.Unlock()
	return tooltip
}

func waitTooltip(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if currentTooltip() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("tooltip = %q, want %q", currentTooltip(), want)
}

func TestSetErrorReverts(t *testing.T) {
	old := errorHold
	errorHold = 30 * time.Millisecond
	t.Cleanup(func() { errorHold = old })

	SetError("microphone unplugged")
	if got := currentTooltip(); got != "murmur – microphone unplugged" {
		t.Fatalf("tooltip = %q", got)
	}
	waitTooltip(t, defaultTooltip)
}

func TestNewerErrorSurvivesOlderTimer(t *testing.T) {
	old := errorHold
	errorHold = 150 * time.Millisecond
	t.Cleanup(func() { errorHold = old })

	SetError("first failure")
	time.Sleep(50 * time.Millisecond)
	SetError("second failure")

	// The first error's revert timer fires while the second is still
	// fresh; it must not reset the tooltip.
	time.Sleep(120 * time.Millisecond)
	if got := currentTooltip(); got != "murmur – second failure" {
		t.Fatalf("older timer clobbered tooltip: %q", got)
	}

	waitTooltip(t, defaultTooltip)
}
