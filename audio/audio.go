package audio

import (
	"errors"
	"strings"
)

// Errors surfaced by capture backends and the Recorder. The conversation
// controller classifies these with errors.Is.
var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrNoActiveRecording = errors.New("no active recording")
)

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context owns the platform audio backend and hands out capture devices.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

// CaptureDevice delivers raw PCM16 mono frames to the registered callback.
// Start/Stop own the microphone exclusively; callers must never have two
// capture sources started at once.
type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

var btKeywords = []string{
	"airpods", "beats", "bose", "jabra", "galaxy buds", "pixel buds",
	"sony wh-", "sony wf-", "wh-1000", "wf-1000",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether a microphone is a
// Bluetooth headset (which typically drops to a low-quality codec while
// capturing).
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
