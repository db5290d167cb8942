// Package save persists the most recent recording to a user-chosen path.
// The recorded bytes are written exactly as captured, nothing is re-encoded
// on the way to disk.
package save

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Status reports how a save request ended. A dismissed dialog is a normal
// outcome, not an error.
type Status int

const (
	Completed Status = iota
	Cancelled
)

// Dialog prompts the user for a destination path. An empty path with a nil
// error means the user dismissed the prompt.
type Dialog interface {
	PromptPath(ctx context.Context, suggested string) (string, error)
}

type Service struct {
	dialog Dialog
}

func NewService(dialog Dialog) *Service {
	return &Service{dialog: dialog}
}

// Save prompts for a path and writes the recording there verbatim.
func (s *Service) Save(ctx context.Context, audio []byte) (Status, error) {
	if len(audio) == 0 {
		return Cancelled, fmt.Errorf("nothing recorded yet")
	}

	suggested := fmt.Sprintf("murmur-%s.pcm", time.Now().Format("20060102-150405"))
	path, err := s.dialog.PromptPath(ctx, suggested)
	if err != nil {
		return Cancelled, fmt.Errorf("save dialog: %w", err)
	}
	if path == "" {
		return Cancelled, nil
	}

	if err := os.WriteFile(path, audio, 0644); err != nil {
		return Cancelled, fmt.Errorf("writing %s: %w", path, err)
	}
	return Completed, nil
}
