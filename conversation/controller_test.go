package conversation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/recognizer"
	"github.com/vishnuarumugam/voiceCapture/synth"
	"github.com/vishnuarumugam/voiceCapture/transcriber"
)

type fakeRecorder struct {
	StartErr error
	StopErr  error

	mu        sync.Mutex
	recording bool
	starts    int
}

func (f *fakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.recording = true
	f.starts++
	return nil
}

func (f *fakeRecorder) Stop() (audio.RecordingHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StopErr != nil {
		return audio.RecordingHandle{}, f.StopErr
	}
	if !f.recording {
		return audio.RecordingHandle{}, audio.ErrNoActiveRecording
	}
	f.recording = false
	return audio.RecordingHandle{Path: "test.wav", StartedAt: time.Now()}, nil
}

type recordingSink struct {
	mu          sync.Mutex
	transcripts []string
	captions    []string
	notices     []Notice
	messages    []Message
}

func (s *recordingSink) ModeChanged(Mode, bool) {}

func (s *recordingSink) Transcript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, text)
}

func (s *recordingSink) Caption(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captions = append(s.captions, text)
}

func (s *recordingSink) MessageAppended(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *recordingSink) Notify(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

func (s *recordingSink) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}

func (s *recordingSink) Captions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.captions...)
}

type fixture struct {
	rec  *fakeRecorder
	stt  *transcriber.FakeTranscriber
	lis  *recognizer.Fake
	tts  *synth.Fake
	sink *recordingSink
	ctl  *Controller
}

func newFixture(cooldown time.Duration) *fixture {
	f := &fixture{
		rec:  &fakeRecorder{},
		stt:  transcriber.NewFake("hello world", nil),
		lis:  &recognizer.Fake{},
		tts:  &synth.Fake{},
		sink: &recordingSink{},
	}
	f.ctl = New(Config{Cooldown: cooldown}, f.rec, f.stt, f.lis, f.tts, nil, f.sink)
	return f
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestManualRecordTranscribe(t *testing.T) {
	f := newFixture(0)

	f.ctl.Toggle()
	if f.ctl.Mode() != ModeManualRecording {
		t.Fatalf("mode = %s, want recording", f.ctl.Mode())
	}
	f.ctl.Toggle()
	waitFor(t, "idle after transcription", func() bool { return f.ctl.Mode() == ModeIdle })
	if got := f.ctl.Transcript(); got != "hello world" {
		t.Fatalf("transcript = %q", got)
	}

	f.ctl.Speak()
	if got := f.tts.Texts(); len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("spoken = %v", got)
	}
}

func TestToggleWhileTranscribingIsNoOp(t *testing.T) {
	f := newFixture(0)
	f.stt.Gate = make(chan struct{})

	f.ctl.Toggle()
	f.ctl.Toggle()
	if f.ctl.Mode() != ModeManualTranscribing {
		t.Fatalf("mode = %s, want transcribing", f.ctl.Mode())
	}

	// Extra toggles while busy must not start a recording or change state.
	f.ctl.Toggle()
	f.ctl.Toggle()
	if f.ctl.Mode() != ModeManualTranscribing {
		t.Fatalf("busy toggle changed mode to %s", f.ctl.Mode())
	}
	f.rec.mu.Lock()
	starts := f.rec.starts
	f.rec.mu.Unlock()
	if starts != 1 {
		t.Fatalf("recorder started %d times, want 1", starts)
	}

	close(f.stt.Gate)
	waitFor(t, "transcription to finish", func() bool { return f.ctl.Mode() == ModeIdle })
	if got := f.ctl.Transcript(); got != "hello world" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestSpeakWithoutTranscriptIsNoOp(t *testing.T) {
	f := newFixture(0)
	f.ctl.Speak()
	if got := f.tts.Texts(); len(got) != 0 {
		t.Fatalf("spoken = %v, want none", got)
	}
}

func TestTranscriptionFailureNotifies(t *testing.T) {
	f := newFixture(0)
	f.stt.Err = transcriber.ErrTranscription

	f.ctl.Toggle()
	f.ctl.Toggle()
	waitFor(t, "idle after failure", func() bool { return f.ctl.Mode() == ModeIdle })

	ns := f.sink.Notices()
	if len(ns) != 1 || ns[0].Kind != NoticeTranscriptionFailure {
		t.Fatalf("notices = %v", ns)
	}
	if f.ctl.Transcript() != "" {
		t.Fatalf("transcript survived failure: %q", f.ctl.Transcript())
	}
}

func TestRecorderPermissionDenied(t *testing.T) {
	f := newFixture(0)
	f.rec.StartErr = audio.ErrPermissionDenied

	f.ctl.Toggle()
	if f.ctl.Mode() != ModeIdle {
		t.Fatalf("mode = %s, want idle", f.ctl.Mode())
	}
	ns := f.sink.Notices()
	if len(ns) != 1 || ns[0].Kind != NoticePermissionDenied {
		t.Fatalf("notices = %v", ns)
	}
}

func TestCallTurn(t *testing.T) {
	f := newFixture(20 * time.Millisecond)

	f.ctl.StartCall()
	if f.ctl.Mode() != ModeCallListening || !f.ctl.InCall() {
		t.Fatalf("mode = %s in-call = %t", f.ctl.Mode(), f.ctl.InCall())
	}

	f.lis.Emit(recognizer.Event{Text: "turn on the light", IsFinal: true})
	if f.ctl.Mode() != ModeCallSpeaking {
		t.Fatalf("mode = %s, want speaking", f.ctl.Mode())
	}

	hist := f.ctl.History()
	if len(hist) != 2 {
		t.Fatalf("history length %d, want 2", len(hist))
	}
	if hist[0].Role != RoleUser || hist[0].Text != "turn on the light" {
		t.Fatalf("user entry = %+v", hist[0])
	}
	if hist[1].Role != RoleBot || hist[1].Text != "You said: turn on the light" {
		t.Fatalf("bot entry = %+v", hist[1])
	}
	if got := f.tts.Texts(); len(got) != 1 || got[0] != "You said: turn on the light" {
		t.Fatalf("spoken = %v", got)
	}

	f.tts.Complete()
	if f.ctl.Mode() != ModeCallCoolingDown {
		t.Fatalf("mode = %s, want cooling-down", f.ctl.Mode())
	}
	waitFor(t, "listening to resume", func() bool { return f.ctl.Mode() == ModeCallListening })
	if f.lis.Starts() != 2 {
		t.Fatalf("recognizer started %d times, want 2", f.lis.Starts())
	}
}

func TestCallHistoryAlternates(t *testing.T) {
	f := newFixture(time.Millisecond)
	f.tts.AutoComplete = true

	f.ctl.StartCall()
	utterances := []string{"first thing", "second thing", "third thing"}
	for i, u := range utterances {
		waitFor(t, "listening", func() bool { return f.ctl.Mode() == ModeCallListening })
		f.lis.Emit(recognizer.Event{Text: u, IsFinal: true})
		waitFor(t, "turn recorded", func() bool { return len(f.ctl.History()) == 2*(i+1) })
	}

	hist := f.ctl.History()
	if len(hist) != 2*len(utterances) {
		t.Fatalf("history length %d, want %d", len(hist), 2*len(utterances))
	}
	for i, msg := range hist {
		want := RoleUser
		if i%2 == 1 {
			want = RoleBot
		}
		if msg.Role != want {
			t.Fatalf("entry %d role = %s, want %s", i, msg.Role, want)
		}
	}
}

func TestPartialEventsCaptionOnly(t *testing.T) {
	f := newFixture(0)
	f.ctl.StartCall()

	f.lis.Emit(recognizer.Event{Text: "turn on", IsFinal: false})
	f.lis.Emit(recognizer.Event{Text: "turn on the", IsFinal: false})
	if got := f.sink.Captions(); len(got) != 2 {
		t.Fatalf("captions = %v", got)
	}
	if len(f.ctl.History()) != 0 {
		t.Fatal("partial events reached history")
	}
	if f.ctl.Mode() != ModeCallListening {
		t.Fatalf("mode = %s, want listening", f.ctl.Mode())
	}
}

func TestEmptyFinalEventIgnored(t *testing.T) {
	f := newFixture(0)
	f.ctl.StartCall()

	f.lis.Emit(recognizer.Event{Text: "   ", IsFinal: true})
	if f.ctl.Mode() != ModeCallListening {
		t.Fatalf("mode = %s, want listening", f.ctl.Mode())
	}
	if len(f.ctl.History()) != 0 {
		t.Fatal("empty utterance reached history")
	}
}

func TestStaleEventDuringSpeakingDiscarded(t *testing.T) {
	f := newFixture(0)
	f.ctl.StartCall()
	f.lis.Emit(recognizer.Event{Text: "hello", IsFinal: true})
	if f.ctl.Mode() != ModeCallSpeaking {
		t.Fatalf("mode = %s, want speaking", f.ctl.Mode())
	}

	// A late delivery from the stopped listening phase must change nothing.
	f.lis.EmitStale(recognizer.Event{Text: "ghost", IsFinal: true})
	if f.ctl.Mode() != ModeCallSpeaking {
		t.Fatalf("stale event moved mode to %s", f.ctl.Mode())
	}
	if got := len(f.ctl.History()); got != 2 {
		t.Fatalf("history length %d, want 2", got)
	}
}

func TestEndCallResetsAndIsIdempotent(t *testing.T) {
	f := newFixture(0)
	f.ctl.StartCall()
	f.lis.Emit(recognizer.Event{Text: "hello", IsFinal: true})

	f.ctl.EndCall()
	if f.ctl.Mode() != ModeIdle || f.ctl.InCall() {
		t.Fatalf("mode = %s in-call = %t after end", f.ctl.Mode(), f.ctl.InCall())
	}
	if len(f.ctl.History()) != 0 {
		t.Fatal("history survived EndCall")
	}
	if f.tts.Stops() == 0 {
		t.Fatal("synthesizer not stopped on EndCall")
	}

	f.ctl.EndCall()
	f.ctl.EndCall()
	if f.ctl.Mode() != ModeIdle {
		t.Fatalf("mode = %s after repeated EndCall", f.ctl.Mode())
	}
}

func TestEndCallDuringCooldownCancelsRestart(t *testing.T) {
	f := newFixture(250 * time.Millisecond)
	f.ctl.StartCall()
	f.lis.Emit(recognizer.Event{Text: "hello", IsFinal: true})
	f.tts.Complete()
	if f.ctl.Mode() != ModeCallCoolingDown {
		t.Fatalf("mode = %s, want cooling-down", f.ctl.Mode())
	}

	f.ctl.EndCall()
	time.Sleep(400 * time.Millisecond)
	if f.ctl.Mode() != ModeIdle {
		t.Fatalf("mode = %s, want idle", f.ctl.Mode())
	}
	if f.lis.Starts() != 1 {
		t.Fatalf("recognizer restarted after EndCall: %d starts", f.lis.Starts())
	}
}

func TestStartCallPermissionDenied(t *testing.T) {
	f := newFixture(0)
	f.lis.StartErr = audio.ErrPermissionDenied

	f.ctl.StartCall()
	if f.ctl.Mode() != ModeIdle || f.ctl.InCall() {
		t.Fatalf("mode = %s in-call = %t", f.ctl.Mode(), f.ctl.InCall())
	}
	ns := f.sink.Notices()
	if len(ns) != 1 || ns[0].Kind != NoticePermissionDenied {
		t.Fatalf("notices = %v", ns)
	}
}

func TestSynthesisFailureResumesListening(t *testing.T) {
	f := newFixture(0)
	f.tts.SpeakErr = synth.ErrSynthesis

	f.ctl.StartCall()
	f.lis.Emit(recognizer.Event{Text: "hello", IsFinal: true})

	if f.ctl.Mode() != ModeCallListening {
		t.Fatalf("mode = %s, want listening after synthesis failure", f.ctl.Mode())
	}
	if !f.ctl.InCall() {
		t.Fatal("call ended on synthesis failure")
	}
	ns := f.sink.Notices()
	if len(ns) != 1 || ns[0].Kind != NoticeSynthesisFailure {
		t.Fatalf("notices = %v", ns)
	}
	// The utterance still made it into history; only the spoken reply was lost.
	if got := len(f.ctl.History()); got != 2 {
		t.Fatalf("history length %d, want 2", got)
	}
}

func TestStartCallWhileBusyIsNoOp(t *testing.T) {
	f := newFixture(0)
	f.ctl.Toggle()
	f.ctl.StartCall()
	if f.ctl.InCall() {
		t.Fatal("call started while recording")
	}
	if f.lis.Starts() != 0 {
		t.Fatalf("recognizer started %d times", f.lis.Starts())
	}
}

func TestClassifyFallback(t *testing.T) {
	plain := errors.New("boom")
	if got := classify(plain, NoticeRecognizerError); got != NoticeRecognizerError {
		t.Fatalf("classify fallback = %s", got)
	}
	wrapped := errors.Join(audio.ErrPermissionDenied, plain)
	if got := classify(wrapped, NoticeRecognizerError); got != NoticePermissionDenied {
		t.Fatalf("classify wrapped = %s", got)
	}
}
