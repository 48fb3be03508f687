package synth

import (
	"testing"
	"time"
)

func TestFakeCompleteFiresOnce(t *testing.T) {
	f := &Fake{}
	fired := 0
	if err := f.Speak("hello", func() { fired++ }); err != nil {
		t.Fatal(err)
	}
	f.Complete()
	f.Complete()
	if fired != 1 {
		t.Fatalf("completion fired %d times, want 1", fired)
	}
	if got := f.Texts(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("texts = %v", got)
	}
}

func TestFakeStopSuppressesCompletion(t *testing.T) {
	f := &Fake{}
	fired := false
	f.Speak("hello", func() { fired = true })
	f.Stop()
	f.Complete()
	if fired {
		t.Fatal("completion fired after Stop")
	}
}

func TestFakeLatestWins(t *testing.T) {
	f := &Fake{}
	var done []string
	f.Speak("first", func() { done = append(done, "first") })
	f.Speak("second", func() { done = append(done, "second") })
	f.Complete()
	if len(done) != 1 || done[0] != "second" {
		t.Fatalf("done = %v, want [second]", done)
	}
}

func TestNoopCompletes(t *testing.T) {
	n := NewNoop()
	done := make(chan struct{})
	if err := n.Speak("hi", func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("noop synthesizer never completed")
	}
}

func TestNoopStopSuppresses(t *testing.T) {
	n := NewNoop()
	fired := make(chan struct{}, 1)
	n.Speak("hello there friendly assistant", func() { fired <- struct{}{} })
	n.Stop()
	select {
	case <-fired:
		t.Fatal("completion fired after Stop")
	case <-time.After(1500 * time.Millisecond):
	}
}
