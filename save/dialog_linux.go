//go:build linux

package save

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// SystemDialog shells out to zenity for the file chooser. Exit status 1
// means the user dismissed the dialog.
type SystemDialog struct{}

func NewSystemDialog() *SystemDialog { return &SystemDialog{} }

func (d *SystemDialog) PromptPath(ctx context.Context, suggested string) (string, error) {
	cmd := exec.CommandContext(ctx, "zenity",
		"--file-selection", "--save",
		"--title=Save recording",
		"--filename="+suggested)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
