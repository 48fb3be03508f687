package recognizer

import (
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/vishnuarumugam/voiceCapture/encoder"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = encoder.SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
)

// vadProcessor chops the PCM stream into 20 ms frames and runs WebRTC VAD
// over them. HasSpeechTick drains the speech flag accumulated since the
// previous poll.
type vadProcessor struct {
	vad *webrtcvad.VAD

	mu         sync.Mutex
	buf        []byte
	tickSpeech bool
}

func newVADProcessor() (*vadProcessor, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &vadProcessor{vad: v}, nil
}

func (p *vadProcessor) Process(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	for len(p.buf) >= vadFrameBytes {
		frame := p.buf[:vadFrameBytes]
		p.buf = p.buf[vadFrameBytes:]

		active, err := p.vad.Process(encoder.SampleRate, frame)
		if err != nil {
			continue
		}
		if active {
			p.tickSpeech = true
		}
	}
}

func (p *vadProcessor) HasSpeechTick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	had := p.tickSpeech
	p.tickSpeech = false
	return had
}
