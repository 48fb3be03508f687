package recognizer

import "sync"

// Fake is an injectable recognizer for tests: Emit delivers an event to the
// registered callback as if the backend produced it.
type Fake struct {
	StartErr error

	mu      sync.Mutex
	onEvent func(Event)
	running bool
	starts  int
	stops   int
}

func (f *Fake) Start(onEvent func(Event)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}
	if f.StartErr != nil {
		return f.StartErr
	}
	f.onEvent = onEvent
	f.running = true
	f.starts++
	return nil
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	f.stops++
}

// Emit delivers ev to the callback registered by the most recent Start.
// Events emitted while stopped are dropped, like a halted backend.
func (f *Fake) Emit(ev Event) {
	f.mu.Lock()
	cb := f.onEvent
	running := f.running
	f.mu.Unlock()
	if running && cb != nil {
		cb(ev)
	}
}

// EmitStale delivers ev to the previously registered callback even though
// the recognizer is stopped, mimicking a delayed duplicate delivery.
func (f *Fake) EmitStale(ev Event) {
	f.mu.Lock()
	cb := f.onEvent
	f.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func (f *Fake) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *Fake) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
