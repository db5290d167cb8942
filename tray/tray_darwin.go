//go:build darwin

package tray

import (
	"fmt"
	"time"

	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"

	"murmur/indicator"
)

var (
	mRecord   *systray.MenuItem
	mCopy     *systray.MenuItem
	mSave     *systray.MenuItem
	menuReady chan struct{}
)

// Init starts the tray on the main thread and returns the quit channel.
// Must be called from a mainthread.Init context.
func Init() <-chan struct{} {
	menuReady = make(chan struct{})
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip(defaultTooltip)

	mRecord = systray.AddMenuItem("Start Recording", "Start or stop recording")
	systray.AddSeparator()
	mCopy = systray.AddMenuItem("Copy Last Transcript", "Copy last transcription to clipboard")
	mCopy.Disable()
	mSave = systray.AddMenuItem("Save Last Recording…", "Save last recording to a file")
	mSave.Disable()
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit murmur")

	go func() {
		for {
			select {
			case <-mRecord.ClickedCh:
				if toggleFn != nil {
					toggleFn()
				}
			case <-mCopy.ClickedCh:
				if copyLastFn != nil {
					copyLastFn()
				}
			case <-mSave.ClickedCh:
				if saveLastFn != nil {
					saveLastFn()
				}
			case <-mQuit.ClickedCh:
				Quit()
				return
			}
		}
	}()

	close(menuReady)
}

func onExit() {}

func updateStateIcon(s indicator.State) {
	if menuReady == nil {
		return
	}
	<-menuReady
	switch s {
	case indicator.Prompted:
		systray.SetIcon(iconRecHi)
		mRecord.SetTitle("Stop Recording")
	case indicator.Thinking:
		systray.SetIcon(iconThinkHi)
		mRecord.SetTitle("Start Recording")
	case indicator.Answering:
		systray.SetIcon(iconAnswerHi)
		mRecord.SetTitle("Start Recording")
	default:
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
		mRecord.SetTitle("Start Recording")
	}
}

func updateTooltip(msg string) {
	if menuReady == nil {
		return
	}
	<-menuReady
	systray.SetTooltip(msg)
}

func enableLastItems(audioLen time.Duration) {
	if menuReady == nil {
		return
	}
	<-menuReady
	mCopy.SetTitle(fmt.Sprintf("Copy Last Transcript (%.1fs)", audioLen.Seconds()))
	mCopy.Enable()
	mSave.Enable()
}
