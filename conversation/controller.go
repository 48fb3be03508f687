package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/log"
	"github.com/vishnuarumugam/voiceCapture/recognizer"
	"github.com/vishnuarumugam/voiceCapture/reply"
	"github.com/vishnuarumugam/voiceCapture/synth"
	"github.com/vishnuarumugam/voiceCapture/transcriber"
)

const (
	// DefaultCooldown is the pause after the bot finishes speaking before
	// the microphone reopens, so the tail of synthesized audio is not
	// picked up as user speech.
	DefaultCooldown = 1200 * time.Millisecond

	transcribeTimeout = 90 * time.Second
)

// RecordSource starts and stops a push-to-talk capture. Stop hands back the
// finished artifact.
type RecordSource interface {
	Start() error
	Stop() (audio.RecordingHandle, error)
}

// Transcriber converts a finished recording to text. The handle is consumed.
type Transcriber interface {
	Transcribe(ctx context.Context, h audio.RecordingHandle) (*transcriber.Result, error)
}

// Recognizer streams live recognition events until stopped.
type Recognizer interface {
	Start(onEvent func(recognizer.Event)) error
	Stop()
}

// Synthesizer speaks text asynchronously. onDone fires exactly once on
// natural completion and never after Stop.
type Synthesizer interface {
	Speak(text string, onDone func()) error
	Stop()
}

type Config struct {
	Cooldown time.Duration
}

// Controller is the session state machine. All transitions happen under one
// mutex; async completions (recognition events, synthesis done, cooldown
// timers, transcription results) carry the sequence number current when they
// were armed and are discarded at fire time if the session has moved on.
type Controller struct {
	rec      RecordSource
	stt      Transcriber
	listener Recognizer
	tts      Synthesizer
	replyFn  reply.Func
	sink     Sink
	cooldown time.Duration

	mu         sync.Mutex
	mode       Mode
	inCall     bool
	seq        uint64
	history    []Message
	transcript string
}

func New(cfg Config, rec RecordSource, stt Transcriber, listener Recognizer, tts Synthesizer, replyFn reply.Func, sink Sink) *Controller {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if replyFn == nil {
		replyFn = reply.Echo
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Controller{
		rec:      rec,
		stt:      stt,
		listener: listener,
		tts:      tts,
		replyFn:  replyFn,
		sink:     sink,
		cooldown: cfg.Cooldown,
	}
}

// Toggle drives the push-to-talk flow: idle starts a recording, recording
// stops it and hands the artifact to transcription. While transcribing or in
// a call, Toggle is a no-op.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeIdle:
		if c.inCall {
			return
		}
		if err := c.rec.Start(); err != nil {
			c.notifyLocked(classify(err, NoticePermissionDenied), err)
			return
		}
		c.setModeLocked(ModeManualRecording)
	case ModeManualRecording:
		handle, err := c.rec.Stop()
		if err != nil {
			c.setModeLocked(ModeIdle)
			c.notifyLocked(classify(err, NoticeNoActiveRecording), err)
			return
		}
		c.setModeLocked(ModeManualTranscribing)
		go c.transcribe(c.seq, handle)
	default:
		log.Infof("toggle ignored in mode %s", c.mode)
	}
}

func (c *Controller) transcribe(seq uint64, h audio.RecordingHandle) {
	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()
	res, err := c.stt.Transcribe(ctx, h)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || c.mode != ModeManualTranscribing {
		return
	}
	c.setModeLocked(ModeIdle)
	if err != nil {
		c.notifyLocked(classify(err, NoticeTranscriptionFailure), err)
		return
	}
	c.transcript = strings.TrimSpace(res.Text)
	c.sink.Transcript(c.transcript)
	if c.transcript != "" {
		log.TranscriptionText(c.transcript)
	}
}

// Speak replays the current transcript through the synthesizer. Nothing to
// say, or a session that is not idle, is a no-op.
func (c *Controller) Speak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle || c.inCall || c.transcript == "" {
		return
	}
	c.tts.Stop()
	if err := c.tts.Speak(c.transcript, func() {}); err != nil {
		c.notifyLocked(classify(err, NoticeSynthesisFailure), err)
	}
}

// StartCall enters the continuous listen/reply loop. Only valid from idle;
// a recognizer that fails to start leaves the session idle.
func (c *Controller) StartCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle || c.inCall {
		return
	}
	c.seq++
	seq := c.seq
	if err := c.listener.Start(func(ev recognizer.Event) { c.onRecognition(seq, ev) }); err != nil {
		c.notifyLocked(classify(err, NoticeRecognizerError), err)
		return
	}
	c.inCall = true
	c.setModeLocked(ModeCallListening)
}

// EndCall tears the call down and resets the session. Idempotent; safe in
// any call phase, including mid-speech and mid-cooldown.
func (c *Controller) EndCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inCall {
		return
	}
	c.seq++ // orphan every in-flight completion
	c.inCall = false
	c.listener.Stop()
	c.tts.Stop()
	c.history = nil
	c.transcript = ""
	c.sink.Transcript("")
	c.setModeLocked(ModeIdle)
}

func (c *Controller) onRecognition(seq uint64, ev recognizer.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || !c.inCall || c.mode != ModeCallListening {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if !ev.IsFinal {
		if text != "" {
			c.sink.Caption(text)
		}
		return
	}
	if text == "" {
		return
	}

	c.listener.Stop()
	c.appendLocked(RoleUser, text)
	answer := c.replyFn(text)
	c.appendLocked(RoleBot, answer)
	c.setModeLocked(ModeCallSpeaking)

	c.seq++
	next := c.seq
	c.tts.Stop()
	if err := c.tts.Speak(answer, func() { c.onSpeechDone(next) }); err != nil {
		c.notifyLocked(classify(err, NoticeSynthesisFailure), err)
		c.resumeListeningLocked()
	}
}

func (c *Controller) onSpeechDone(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || !c.inCall || c.mode != ModeCallSpeaking {
		return
	}
	c.setModeLocked(ModeCallCoolingDown)
	c.seq++
	next := c.seq
	time.AfterFunc(c.cooldown, func() { c.onCooldown(next) })
}

func (c *Controller) onCooldown(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || !c.inCall || c.mode != ModeCallCoolingDown {
		return
	}
	c.resumeListeningLocked()
}

// resumeListeningLocked re-arms the recognizer with a fresh sequence so the
// next utterance is attributed to the new listening phase. A recognizer that
// cannot restart ends the call.
func (c *Controller) resumeListeningLocked() {
	c.seq++
	seq := c.seq
	if err := c.listener.Start(func(ev recognizer.Event) { c.onRecognition(seq, ev) }); err != nil {
		c.notifyLocked(classify(err, NoticeRecognizerError), err)
		c.inCall = false
		c.setModeLocked(ModeIdle)
		return
	}
	c.setModeLocked(ModeCallListening)
}

func (c *Controller) appendLocked(role Role, text string) {
	msg := Message{ID: uuid.NewString(), Role: role, Text: text, At: time.Now()}
	c.history = append(c.history, msg)
	c.sink.MessageAppended(msg)
	log.TranscriptionText(string(role) + ": " + text)
}

func (c *Controller) setModeLocked(m Mode) {
	if c.mode == m {
		return
	}
	c.mode = m
	c.sink.ModeChanged(m, c.inCall)
	log.Infof("mode -> %s (call=%t)", m, c.inCall)
}

func (c *Controller) notifyLocked(kind NoticeKind, err error) {
	log.Warnf("%s: %v", kind, err)
	c.sink.Notify(Notice{Kind: kind, Err: err})
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) InCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inCall
}

func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// History returns a copy of the conversation so far, oldest first.
func (c *Controller) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

func classify(err error, fallback NoticeKind) NoticeKind {
	switch {
	case errors.Is(err, audio.ErrPermissionDenied):
		return NoticePermissionDenied
	case errors.Is(err, audio.ErrNoActiveRecording):
		return NoticeNoActiveRecording
	case errors.Is(err, transcriber.ErrModelUnavailable):
		return NoticeModelUnavailable
	case errors.Is(err, transcriber.ErrTranscription):
		return NoticeTranscriptionFailure
	case errors.Is(err, synth.ErrSynthesis):
		return NoticeSynthesisFailure
	case errors.Is(err, recognizer.ErrRecognizer):
		return NoticeRecognizerError
	}
	return fallback
}
