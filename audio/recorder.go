package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vishnuarumugam/voiceCapture/encoder"
)

// RecordingHandle points at a finished recording artifact. Ownership moves
// to the transcriber; the file is not reused for a second transcription.
type RecordingHandle struct {
	Path      string
	StartedAt time.Time
}

// Recorder is the manual-mode capture source: Start begins buffering mic
// PCM, Stop encodes the buffer to a mono 16 kHz artifact and returns its
// handle.
type Recorder struct {
	capture CaptureDevice
	format  string
	dir     string

	mu        sync.Mutex
	recording bool
	samples   []int16
	startedAt time.Time
}

func NewRecorder(capture CaptureDevice, format, dir string) *Recorder {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Recorder{capture: capture, format: format, dir: dir}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.samples = r.samples[:0]
	r.startedAt = time.Now()
	r.recording = true
	r.mu.Unlock()

	r.capture.SetCallback(func(data []byte, _ uint32) {
		r.mu.Lock()
		if r.recording {
			for i := 0; i+1 < len(data); i += 2 {
				r.samples = append(r.samples, int16(binary.LittleEndian.Uint16(data[i:])))
			}
		}
		r.mu.Unlock()
	})

	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Recorder) Stop() (RecordingHandle, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return RecordingHandle{}, ErrNoActiveRecording
	}
	r.recording = false
	samples := r.samples
	r.samples = nil
	startedAt := r.startedAt
	r.mu.Unlock()

	r.capture.Stop()
	r.capture.ClearCallback()

	enc, err := encoder.New(r.format)
	if err != nil {
		return RecordingHandle{}, err
	}
	for pos := 0; pos < len(samples); pos += encoder.BlockSize {
		end := min(pos+encoder.BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[pos:end]); err != nil {
			return RecordingHandle{}, fmt.Errorf("encoding recording: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return RecordingHandle{}, fmt.Errorf("finishing recording: %w", err)
	}

	name := fmt.Sprintf("capture-%d.%s", startedAt.UnixNano(), encoder.Extension(r.format))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, enc.Bytes(), 0o644); err != nil {
		return RecordingHandle{}, fmt.Errorf("writing recording: %w", err)
	}

	return RecordingHandle{Path: path, StartedAt: startedAt}, nil
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}
