package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishnuarumugam/voiceCapture/beep"
	"github.com/vishnuarumugam/voiceCapture/clipboard"
	"github.com/vishnuarumugam/voiceCapture/conversation"
	"github.com/vishnuarumugam/voiceCapture/log"
)

// Messages delivered to the TUI. Each mirrors one Sink projection.
type ModeMsg struct {
	Mode   conversation.Mode
	InCall bool
}
type TranscriptMsg struct {
	Text   string
	Copied bool
}
type CaptionMsg struct{ Text string }
type MessageMsg struct{ Msg conversation.Message }
type NoticeMsg struct{ Notice conversation.Notice }
type UpdateMsg struct{ Version string }

// teaSink forwards controller projections to the running TUI program and
// drives the side effects tied to them: audible cues on phase changes and
// clipboard copy of fresh transcripts. Safe to call before the program
// exists; display events from that window are dropped.
type teaSink struct {
	mu       sync.Mutex
	program  *tea.Program
	prevMode conversation.Mode
	prevCall bool
}

func (s *teaSink) attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *teaSink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *teaSink) ModeChanged(mode conversation.Mode, inCall bool) {
	s.mu.Lock()
	prevMode, prevCall := s.prevMode, s.prevCall
	s.prevMode, s.prevCall = mode, inCall
	s.mu.Unlock()

	switch {
	case mode == conversation.ModeManualRecording:
		beep.PlayStart()
	case prevMode == conversation.ModeManualRecording:
		beep.PlayEnd()
	case inCall && !prevCall:
		beep.PlayStart()
	case !inCall && prevCall:
		beep.PlayEnd()
	}

	s.send(ModeMsg{Mode: mode, InCall: inCall})
}

func (s *teaSink) Transcript(text string) {
	copied := false
	if text != "" {
		if err := clipboard.Copy(text); err != nil {
			log.Warnf("clipboard copy failed: %v", err)
		} else {
			copied = true
		}
	}
	s.send(TranscriptMsg{Text: text, Copied: copied})
}

func (s *teaSink) Caption(text string) {
	s.send(CaptionMsg{Text: text})
}

func (s *teaSink) MessageAppended(msg conversation.Message) {
	s.send(MessageMsg{Msg: msg})
}

func (s *teaSink) Notify(n conversation.Notice) {
	beep.PlayError()
	s.send(NoticeMsg{Notice: n})
}
