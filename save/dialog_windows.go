//go:build windows

package save

import (
	"context"
	"os"
	"path/filepath"
)

// SystemDialog has no native chooser wired up on Windows, recordings land
// next to the user's home directory under the suggested name.
type SystemDialog struct{}

func NewSystemDialog() *SystemDialog { return &SystemDialog{} }

func (d *SystemDialog) PromptPath(_ context.Context, suggested string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, suggested), nil
}
