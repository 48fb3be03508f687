// Package recognizer provides live speech recognition for call mode: a
// started recognizer owns the microphone and delivers partial and final
// recognition events until stopped.
package recognizer

import "errors"

var ErrRecognizer = errors.New("recognizer error")

// Event is a single recognition update. Only final events carry actionable
// utterances; partials are display-only.
type Event struct {
	Text    string
	IsFinal bool
}

// Recognizer streams recognition events to the registered callback.
// Start and Stop are idempotent.
type Recognizer interface {
	Start(onEvent func(Event)) error
	Stop()
}
