package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/encoder"
	"github.com/vishnuarumugam/voiceCapture/log"
)

// Options configure the streaming recognizer.
type Options struct {
	Language       string
	Model          string
	PauseThreshold time.Duration
}

// Deepgram streams microphone PCM over a websocket and maps the backend's
// interim/final results onto Events. A local VAD-driven endpoint monitor
// forces finalization after PauseThreshold of silence, so an utterance is
// not held open when the backend misses the pause.
type Deepgram struct {
	apiKey  string
	capture audio.CaptureDevice
	opts    Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	conn    *websocket.Conn
}

func NewDeepgram(apiKey string, capture audio.CaptureDevice, opts Options) *Deepgram {
	if opts.Model == "" {
		opts.Model = "nova-3"
	}
	if opts.PauseThreshold <= 0 {
		opts.PauseThreshold = time.Second
	}
	return &Deepgram{apiKey: apiKey, capture: capture, opts: opts}
}

type deepgramResponse struct {
	Type         string `json:"type"`
	IsFinal      bool   `json:"is_final"`
	SpeechFinal  bool   `json:"speech_final"`
	FromFinalize bool   `json:"from_finalize"`
	Channel      struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (d *Deepgram) Start(onEvent func(Event)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}

	endpoint, err := url.Parse("wss://api.deepgram.com/v1/listen")
	if err != nil {
		return err
	}
	q := endpoint.Query()
	q.Set("model", d.opts.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprintf("%d", encoder.SampleRate))
	q.Set("channels", fmt.Sprintf("%d", encoder.Channels))
	q.Set("interim_results", "true")
	if d.opts.Language != "" {
		q.Set("language", d.opts.Language)
	}
	endpoint.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.apiKey)

	ctx, cancel := context.WithCancel(context.Background())
	conn, _, err := websocket.Dial(ctx, endpoint.String(), &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		cancel()
		return fmt.Errorf("%w: dial: %v", ErrRecognizer, err)
	}

	vp, vadErr := newVADProcessor()
	if vadErr != nil {
		// Endpointing degrades to the backend's own pause detection
		log.Warnf("vad init failed: %v", vadErr)
		vp = nil
	}

	d.capture.SetCallback(func(data []byte, _ uint32) {
		if len(data) == 0 {
			return
		}
		pcm := make([]byte, len(data))
		copy(pcm, data)
		if err := conn.Write(ctx, websocket.MessageBinary, pcm); err != nil {
			return
		}
		if vp != nil {
			vp.Process(data)
		}
	})

	if err := d.capture.Start(); err != nil {
		d.capture.ClearCallback()
		cancel()
		conn.Close(websocket.StatusNormalClosure, "")
		return err
	}

	d.running = true
	d.cancel = cancel
	d.conn = conn

	go d.readLoop(ctx, conn, onEvent)
	if vp != nil {
		go d.endpointLoop(ctx, conn, vp)
	}
	return nil
}

func (d *Deepgram) readLoop(ctx context.Context, conn *websocket.Conn, onEvent func(Event)) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var resp deepgramResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if resp.Type != "Results" {
			continue
		}
		transcript := ""
		if len(resp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(resp.Channel.Alternatives[0].Transcript)
		}
		onEvent(Event{
			Text:    transcript,
			IsFinal: resp.SpeechFinal || resp.FromFinalize,
		})
	}
}

func (d *Deepgram) endpointLoop(ctx context.Context, conn *websocket.Conn, vp *vadProcessor) {
	mon := newEndpointMonitor(d.opts.PauseThreshold)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if mon.Tick(vp.HasSpeechTick()) {
				log.Info("endpoint_finalize")
				conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Finalize"}`))
			}
		}
	}
}

func (d *Deepgram) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.running = false
	d.capture.Stop()
	d.capture.ClearCallback()
	d.cancel()
	d.conn.Close(websocket.StatusNormalClosure, "")
	d.conn = nil
	d.cancel = nil
}
