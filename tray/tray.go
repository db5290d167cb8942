// Package tray mirrors the indicator in the system tray and exposes the
// same record, copy and save actions as the hotkey and terminal UI.
package tray

import (
	"sync"
	"time"

	"murmur/indicator"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	toggleFn   func()
	copyLastFn func()
	saveLastFn func()

	stateMu sync.Mutex
	state   indicator.State

	tooltipMu sync.Mutex
	tooltip   = defaultTooltip
	errGen    uint64
)

const defaultTooltip = "murmur – push to talk"

// errorHold is how long an error message stays in the tooltip before it
// reverts. Shortened under test.
var errorHold = 10 * time.Second

func OnToggle(fn func())   { toggleFn = fn }
func OnCopyLast(fn func()) { copyLastFn = fn }
func OnSaveLast(fn func()) { saveLastFn = fn }

// SetState updates the tray icon and menu to match the indicator.
func SetState(s indicator.State) {
	stateMu.Lock()
	state = s
	stateMu.Unlock()
	updateStateIcon(s)
}

// SetError shows msg in the tooltip and reverts after errorHold. Each call
// bumps a generation so an earlier error's revert timer cannot clobber a
// newer message.
func SetError(msg string) {
	tooltipMu.Lock()
	errGen++
	gen := errGen
	tooltip = "murmur – " + msg
	updateTooltip(tooltip)
	tooltipMu.Unlock()

	go func() {
		time.Sleep(errorHold)
		tooltipMu.Lock()
		defer tooltipMu.Unlock()
		if gen != errGen {
			return
		}
		tooltip = defaultTooltip
		updateTooltip(tooltip)
	}()
}

// SetLastTranscript enables the copy/save items once something exists to
// copy or save.
func SetLastTranscript(audioLen time.Duration) {
	enableLastItems(audioLen)
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}
