// Package clipboard owns the two halves of text insertion: putting the
// transcript on the system clipboard and synthesizing the paste keystroke
// into the focused application.
package clipboard

import cb "github.com/atotto/clipboard"

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}
