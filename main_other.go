//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// The hotkey and tray need the real main thread on macOS and Windows; run
// does everything else in a goroutine under mainthread's control.
func main() {
	mainthread.Init(run)
}
