//go:build darwin

package save

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// SystemDialog drives the native save panel through osascript. A cancelled
// panel makes osascript exit 1 with "User canceled" on stderr.
type SystemDialog struct{}

func NewSystemDialog() *SystemDialog { return &SystemDialog{} }

func (d *SystemDialog) PromptPath(ctx context.Context, suggested string) (string, error) {
	script := `POSIX path of (choose file name with prompt "Save recording" default name "` + suggested + `")`
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && strings.Contains(string(exitErr.Stderr), "User canceled") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
