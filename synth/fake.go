package synth

import "sync"

// Fake records spoken texts and lets tests drive completion by hand, or
// automatically with AutoComplete for loop-shaped scenarios.
type Fake struct {
	SpeakErr     error
	AutoComplete bool

	mu     sync.Mutex
	texts  []string
	onDone func()
	stops  int
}

func (f *Fake) Speak(text string, onDone func()) error {
	f.mu.Lock()
	if f.SpeakErr != nil {
		f.mu.Unlock()
		return f.SpeakErr
	}
	f.texts = append(f.texts, text)
	f.onDone = onDone
	auto := f.AutoComplete
	f.mu.Unlock()

	if auto {
		go f.Complete()
	}
	return nil
}

// Complete fires the completion callback of the most recent Speak, once.
func (f *Fake) Complete() {
	f.mu.Lock()
	cb := f.onDone
	f.onDone = nil
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *Fake) Stop() {
	f.mu.Lock()
	f.onDone = nil // suppress pending completion
	f.stops++
	f.mu.Unlock()
}

func (f *Fake) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
