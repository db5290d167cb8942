// Package hotkey delivers global Ctrl+Shift+Space press and release events
// regardless of which window has focus.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
