// Package doctor runs interactive end-to-end checks of everything the app
// needs from the host: hotkey delivery, microphone capture, the
// transcription credential, and clipboard/paste output.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"murmur/audio"
	"murmur/capture"
	"murmur/clipboard"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/transcriber"
)

// Run executes the checks in order and returns an exit code (0 = all pass).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("murmur doctor - interactive system diagnostics")
	fmt.Println("==============================================")

	allPass := true

	if !checkHotkey() {
		allPass = false
	}
	if allPass && !checkMicAndTranscription() {
		allPass = false
	}
	if allPass && !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")

	if msg, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", msg)
	}

	fmt.Println("Press Ctrl+Shift+Space...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// Drain the keyup so it does not leak into the next step
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicAndTranscription() bool {
	fmt.Println()
	fmt.Println("[2/3] Microphone and transcription")

	trans, err := transcriber.New()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  Provider: %s\n", trans.Name())

	audioCtx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer audioCtx.Close()

	devices, err := audioCtx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}

	device := pickDevice(devices)
	if device == nil {
		fmt.Println("  FAIL: invalid choice")
		return false
	}
	fmt.Printf("Using device: %s\n", device.Name)

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	sess := capture.NewSession(audioCtx, device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err := sess.Start(); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}

	fmt.Print("  Recording")
	for i := 0; i < 6; i++ {
		time.Sleep(500 * time.Millisecond)
		fmt.Print(".")
	}

	done, err := sess.Stop()
	if err != nil {
		fmt.Printf("\n  FAIL: stop error: %v\n", err)
		return false
	}
	<-done
	fmt.Println(" done")

	if err := sess.Err(); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}

	raw := sess.Bytes()
	fmt.Printf("  Recorded %.1f KB, transcribing...\n", float64(len(raw))/1024)

	result, err := trans.Transcribe(context.Background(), raw)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func pickDevice(devices []audio.DeviceInfo) *audio.DeviceInfo {
	if len(devices) == 1 {
		return &devices[0]
	}
	fmt.Println()
	fmt.Println("Select input device:")
	for i, d := range devices {
		fmt.Printf("  %d. %s\n", i+1, d.Name)
	}
	fmt.Printf("Choice [1-%d]: ", len(devices))

	reader := bufio.NewReader(os.Stdin)
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	idx := 1
	if choice != "" {
		fmt.Sscanf(choice, "%d", &idx)
	}
	idx--
	if idx < 0 || idx >= len(devices) {
		return nil
	}
	return &devices[idx]
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[3/3] Clipboard and paste")

	testStr := fmt.Sprintf("murmur-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(testStr); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != testStr {
		fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, got)
		return false
	}
	fmt.Println("  PASS: clipboard write/read verified")

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: paste: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
