package save

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesBytesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.pcm")
	dialog := &FakeDialog{Path: path}
	svc := NewService(dialog)

	audio := []byte{0x01, 0x02, 0x03, 0xff, 0x00, 0x7f}
	status, err := svc.Save(context.Background(), audio)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if status != Completed {
		t.Fatalf("status = %v, want Completed", status)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, audio) {
		t.Errorf("file contents %v, want recorded bytes %v", got, audio)
	}
}

func TestSaveCancelledIsNotAnError(t *testing.T) {
	dialog := &FakeDialog{Path: ""}
	svc := NewService(dialog)

	status, err := svc.Save(context.Background(), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("cancelled save returned error: %v", err)
	}
	if status != Cancelled {
		t.Fatalf("status = %v, want Cancelled", status)
	}
	if dialog.Prompts != 1 {
		t.Errorf("prompts = %d, want 1", dialog.Prompts)
	}
}

func TestSaveDialogFailure(t *testing.T) {
	dialog := &FakeDialog{Err: errors.New("no display")}
	svc := NewService(dialog)

	status, err := svc.Save(context.Background(), []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error when the dialog cannot open")
	}
	if status != Cancelled {
		t.Fatalf("status = %v, want Cancelled", status)
	}
}

func TestSaveEmptyRecording(t *testing.T) {
	dialog := &FakeDialog{Path: "/tmp/should-not-be-used"}
	svc := NewService(dialog)

	if _, err := svc.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty recording")
	}
	if dialog.Prompts != 0 {
		t.Error("dialog prompted for an empty recording")
	}
}
