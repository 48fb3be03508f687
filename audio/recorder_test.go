package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
)

func fakePCM(nSamples int) []byte {
	pcm := make([]byte, nSamples*2)
	for i := 0; i < nSamples; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(i%512))
	}
	return pcm
}

func TestRecorderStartStop(t *testing.T) {
	capture := &FakeCapture{pcm: fakePCM(8000)}
	rec := NewRecorder(capture, "wav", t.TempDir())

	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !rec.Recording() {
		t.Fatal("expected recording in progress")
	}

	handle, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.Recording() {
		t.Fatal("expected recording finished")
	}

	data, err := os.ReadFile(handle.Path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	// 44-byte WAV header plus the captured samples
	if len(data) != 44+8000*2 {
		t.Errorf("artifact size = %d, want %d", len(data), 44+8000*2)
	}
	if handle.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec := NewRecorder(&FakeCapture{}, "wav", t.TempDir())
	_, err := rec.Stop()
	if !errors.Is(err, ErrNoActiveRecording) {
		t.Fatalf("err = %v, want ErrNoActiveRecording", err)
	}
}

func TestRecorderStartFailure(t *testing.T) {
	capture := &FakeCapture{StartErr: ErrPermissionDenied}
	rec := NewRecorder(capture, "wav", t.TempDir())
	if err := rec.Start(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if rec.Recording() {
		t.Fatal("recording should not be active after failed start")
	}
}
