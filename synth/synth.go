// Package synth wraps text-to-speech playback. A synthesizer speaks one
// utterance at a time, latest-wins: Speak while speaking cancels the
// previous utterance, and Stop suppresses its completion callback.
package synth

import "errors"

var ErrSynthesis = errors.New("speech synthesis failed")

// Config carries the recognized voice parameters.
type Config struct {
	Voice    string
	Rate     float64
	Pitch    float64
	Language string
}

// Synthesizer speaks text asynchronously. onDone fires exactly once when
// the utterance finishes and never after Stop. Implementations must invoke
// onDone from their own goroutine, not from inside Speak.
type Synthesizer interface {
	Speak(text string, onDone func()) error
	Stop()
}
