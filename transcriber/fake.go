package transcriber

import (
	"context"

	"github.com/vishnuarumugam/voiceCapture/audio"
)

// FakeTranscriber returns canned text or a canned error. When Gate is set,
// Transcribe blocks until the gate receives a value or the context ends,
// which lets tests hold the controller in its transcribing phase.
type FakeTranscriber struct {
	Text string
	Err  error
	Gate chan struct{}

	lang string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{Text: text, Err: err}
}

func (f *FakeTranscriber) Name() string           { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ audio.RecordingHandle) (*Result, error) {
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &Result{Text: f.Text, Metrics: &NetworkMetrics{}}, nil
}
