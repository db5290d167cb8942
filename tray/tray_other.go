//go:build !darwin

package tray

import (
	"time"

	"murmur/indicator"
)

// No tray on this platform, the terminal UI is the only surface.

func Init() <-chan struct{}           { return quitCh }
func updateStateIcon(indicator.State) {}
func updateTooltip(string)            {}
func enableLastItems(time.Duration)   {}
