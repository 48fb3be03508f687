package recognizer

import "time"

const tickInterval = 100 * time.Millisecond

// endpointMonitor decides when an utterance should be force-finalized:
// after speech has been heard, a run of silence ticks spanning the pause
// threshold fires exactly once.
type endpointMonitor struct {
	need      int
	silent    int
	sawSpeech bool
}

func newEndpointMonitor(pause time.Duration) *endpointMonitor {
	need := int(pause / tickInterval)
	if need < 1 {
		need = 1
	}
	return &endpointMonitor{need: need}
}

func (m *endpointMonitor) Tick(hasSpeech bool) bool {
	if hasSpeech {
		m.sawSpeech = true
		m.silent = 0
		return false
	}
	if !m.sawSpeech {
		return false
	}
	m.silent++
	if m.silent == m.need {
		// Re-arm for the next utterance in the same span
		m.sawSpeech = false
		m.silent = 0
		return true
	}
	return false
}
