//go:build windows

package beep

// No playback backend wired up on Windows, cues are silent.

func Init()      {}
func PlayStart() {}
func PlayEnd()   {}
func PlayError() {}
