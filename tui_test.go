package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/conversation"
	"github.com/vishnuarumugam/voiceCapture/recognizer"
	"github.com/vishnuarumugam/voiceCapture/synth"
	"github.com/vishnuarumugam/voiceCapture/transcriber"
)

type stubRecorder struct{ recording bool }

func (s *stubRecorder) Start() error {
	s.recording = true
	return nil
}

func (s *stubRecorder) Stop() (audio.RecordingHandle, error) {
	if !s.recording {
		return audio.RecordingHandle{}, audio.ErrNoActiveRecording
	}
	s.recording = false
	return audio.RecordingHandle{Path: "stub.wav", StartedAt: time.Now()}, nil
}

func newTestController() (*conversation.Controller, *recognizer.Fake, *synth.Fake) {
	lis := &recognizer.Fake{}
	tts := &synth.Fake{}
	ctl := conversation.New(
		conversation.Config{Cooldown: time.Millisecond},
		&stubRecorder{},
		transcriber.NewFake("hello world", nil),
		lis, tts, nil, conversation.NopSink{},
	)
	return ctl, lis, tts
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDriveController(t *testing.T) {
	ctl, lis, _ := newTestController()
	var m tea.Model = tuiModel{ctl: ctl}

	m, _ = m.Update(key(" "))
	if got := ctl.Mode(); got != conversation.ModeManualRecording {
		t.Fatalf("after space: mode = %s", got)
	}
	m, _ = m.Update(key(" "))

	deadline := time.Now().Add(3 * time.Second)
	for ctl.Mode() != conversation.ModeIdle && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := ctl.Transcript(); got != "hello world" {
		t.Fatalf("transcript = %q", got)
	}

	m, _ = m.Update(key("c"))
	if !ctl.InCall() {
		t.Fatal("c did not start a call")
	}
	if lis.Starts() != 1 {
		t.Fatalf("recognizer started %d times", lis.Starts())
	}

	_, _ = m.Update(key("e"))
	if ctl.InCall() {
		t.Fatal("e did not end the call")
	}
}

func TestQuitKey(t *testing.T) {
	ctl, _, _ := newTestController()
	var m tea.Model = tuiModel{ctl: ctl}
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Fatalf("q produced %T, want tea.QuitMsg", msg)
	}
}

func TestModelProjections(t *testing.T) {
	ctl, _, _ := newTestController()
	var m tea.Model = tuiModel{ctl: ctl}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = m.Update(ModeMsg{Mode: conversation.ModeCallListening, InCall: true})
	m, _ = m.Update(CaptionMsg{Text: "turn on"})
	view := m.View()
	if !strings.Contains(view, "LISTENING") {
		t.Error("view missing listening status")
	}
	if !strings.Contains(view, "turn on") {
		t.Error("view missing caption")
	}

	m, _ = m.Update(MessageMsg{Msg: conversation.Message{Role: conversation.RoleUser, Text: "turn on the light"}})
	m, _ = m.Update(MessageMsg{Msg: conversation.Message{Role: conversation.RoleBot, Text: "You said: turn on the light"}})
	view = m.View()
	if !strings.Contains(view, "turn on the light") {
		t.Error("view missing history entry")
	}
	if mm := m.(tuiModel); mm.turns != 1 {
		t.Errorf("turns = %d, want 1", mm.turns)
	}

	m, _ = m.Update(ModeMsg{Mode: conversation.ModeIdle, InCall: false})
	m, _ = m.Update(TranscriptMsg{Text: "hello world", Copied: true})
	view = m.View()
	if !strings.Contains(view, "hello world") || !strings.Contains(view, "copied") {
		t.Error("view missing transcript with copy indicator")
	}
	if mm := m.(tuiModel); mm.transcriptions != 1 {
		t.Errorf("transcriptions = %d, want 1", mm.transcriptions)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	for _, line := range lines {
		if len(line) > 15 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("wrap lost content: %v", lines)
	}
}
