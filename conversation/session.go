// Package conversation owns the session state machine that ties capture,
// transcription, recognition, reply generation and synthesis into one
// conversational loop.
package conversation

import "time"

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one history entry. Immutable once appended; only the
// controller appends, in strict causal order.
type Message struct {
	ID   string
	Role Role
	Text string
	At   time.Time
}

// Mode is the session phase. At most one of recording, transcribing,
// listening or speaking is ever active.
type Mode int

const (
	ModeIdle Mode = iota
	ModeManualRecording
	ModeManualTranscribing
	ModeCallListening
	ModeCallSpeaking
	ModeCallCoolingDown
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeManualRecording:
		return "recording"
	case ModeManualTranscribing:
		return "transcribing"
	case ModeCallListening:
		return "listening"
	case ModeCallSpeaking:
		return "speaking"
	case ModeCallCoolingDown:
		return "cooling-down"
	default:
		return "unknown"
	}
}

// InCallMode reports whether m belongs to the call sub-machine.
func (m Mode) InCallMode() bool {
	return m == ModeCallListening || m == ModeCallSpeaking || m == ModeCallCoolingDown
}

// NoticeKind classifies recoverable failures for the presentation layer.
type NoticeKind int

const (
	NoticePermissionDenied NoticeKind = iota
	NoticeNoActiveRecording
	NoticeTranscriptionFailure
	NoticeModelUnavailable
	NoticeSynthesisFailure
	NoticeRecognizerError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticePermissionDenied:
		return "permission denied"
	case NoticeNoActiveRecording:
		return "no active recording"
	case NoticeTranscriptionFailure:
		return "transcription failure"
	case NoticeModelUnavailable:
		return "model unavailable"
	case NoticeSynthesisFailure:
		return "synthesis failure"
	case NoticeRecognizerError:
		return "recognizer error"
	default:
		return "error"
	}
}

type Notice struct {
	Kind NoticeKind
	Err  error
}

// Sink receives read-only projections of session changes. Calls arrive
// while the controller holds its lock; implementations must not call back
// into the controller synchronously.
type Sink interface {
	ModeChanged(mode Mode, inCall bool)
	Transcript(text string)
	Caption(text string)
	MessageAppended(msg Message)
	Notify(n Notice)
}

// NopSink discards all projections.
type NopSink struct{}

func (NopSink) ModeChanged(Mode, bool)  {}
func (NopSink) Transcript(string)       {}
func (NopSink) Caption(string)          {}
func (NopSink) MessageAppended(Message) {}
func (NopSink) Notify(Notice)           {}
