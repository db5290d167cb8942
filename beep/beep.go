// Package beep plays short audio cues: a tick when recording starts, a
// lower tick when it stops, and a low double-beep on failure. Cues matter
// because the terminal window is usually not visible when the hotkey fires.
package beep

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Stop cue: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error cue: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)
