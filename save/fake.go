package save

import "context"

// FakeDialog answers every prompt with a fixed path. Path "" simulates the
// user dismissing the dialog.
type FakeDialog struct {
	Path    string
	Err     error
	Prompts int
}

func (f *FakeDialog) PromptPath(_ context.Context, _ string) (string, error) {
	f.Prompts++
	return f.Path, f.Err
}
