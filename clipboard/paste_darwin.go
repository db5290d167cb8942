//go:build darwin

package clipboard

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	bond     keybd_event.KeyBonding
	bondOnce sync.Once
	bondErr  error
)

// Init prepares the keyboard event binding. The first synthesized keystroke
// triggers the macOS accessibility permission prompt, so this runs once up
// front rather than at paste time.
func Init() error {
	bondOnce.Do(func() {
		bond, bondErr = keybd_event.NewKeyBonding()
	})
	return bondErr
}

// Paste synthesizes Cmd+V into the focused application. Launching presses
// and releases the whole chord in one call.
func Paste() error {
	if err := Init(); err != nil {
		return err
	}
	bond.SetKeys(keybd_event.VK_V)
	bond.HasSuper(true)
	return bond.Launching()
}

// Verify confirms the binding can be created. Actual delivery depends on
// the accessibility permission, which only the user can grant.
func Verify() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return "Cmd+V keystroke binding ready", nil
}
