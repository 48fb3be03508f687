package synth

import (
	"strings"
	"sync"
	"time"

	"github.com/vishnuarumugam/voiceCapture/log"
)

// perWord approximates speaking pace for the silent synthesizer.
const perWord = 250 * time.Millisecond

// Noop is the silent synthesizer used when no TTS backend is configured:
// it logs the utterance and completes after an estimated speaking time, so
// the call loop keeps its shape without audio output.
type Noop struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Speak(text string, onDone func()) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	log.Info("noop_speak: " + text)
	d := time.Duration(len(strings.Fields(text))) * perWord
	if d <= 0 {
		d = perWord
	}
	n.timer = time.AfterFunc(d, func() {
		if onDone != nil {
			onDone()
		}
	})
	return nil
}

func (n *Noop) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
