package audio

import (
	"errors"
	"strings"
)

// ErrUnavailable covers both permission denial and a missing capture
// capability. The two are indistinguishable to the rest of the app: either
// way no microphone stream can be acquired until the user intervenes.
var ErrUnavailable = errors.New("microphone unavailable (permission denied or no capture support)")

// DataCallback receives one segment of captured audio (s16le mono).
// The slice is only valid for the duration of the call.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

// CaptureDevice is one microphone stream. Stop blocks until the platform
// confirms the recorder halted and the last segment was delivered to the
// callback, so callers may treat its return as the flush barrier.
type CaptureDevice interface {
	Start() error
	Stop() error
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether a microphone is a
// bluetooth headset (lower capture quality, worth warning about).
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
