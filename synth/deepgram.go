package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/vishnuarumugam/voiceCapture/encoder"
	"github.com/vishnuarumugam/voiceCapture/log"
)

// Deepgram streams linear16 PCM from the speak API straight into the
// player. Completion fires after playback drains; a failed fetch still
// completes the utterance so a call is never left waiting on a reply that
// will not be spoken.
type Deepgram struct {
	apiKey string
	cfg    Config
	player PCMPlayer
	client *http.Client

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewDeepgram(apiKey string, player PCMPlayer, cfg Config) *Deepgram {
	if cfg.Voice == "" {
		cfg.Voice = "aura-2-thalia-en"
	}
	return &Deepgram{
		apiKey: apiKey,
		cfg:    cfg,
		player: player,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *Deepgram) Speak(text string, onDone func()) error {
	if text == "" {
		return nil
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	go d.run(ctx, gen, text, onDone)
	return nil
}

func (d *Deepgram) run(ctx context.Context, gen uint64, text string, onDone func()) {
	if err := d.fetchAndPlay(ctx, text); err != nil {
		if ctx.Err() != nil {
			return // stopped, completion suppressed
		}
		log.Errorf("synthesis error: %v", err)
	}

	d.mu.Lock()
	current := d.gen == gen
	if current {
		d.cancel = nil
	}
	d.mu.Unlock()

	if current && onDone != nil {
		onDone()
	}
}

func (d *Deepgram) fetchAndPlay(ctx context.Context, text string) error {
	endpoint, err := url.Parse("https://api.deepgram.com/v1/speak")
	if err != nil {
		return err
	}
	q := endpoint.Query()
	q.Set("model", d.cfg.Voice)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprintf("%d", encoder.SampleRate))
	endpoint.RawQuery = q.Encode()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: speak API error %d", ErrSynthesis, resp.StatusCode)
	}

	return d.player.Play(ctx, resp.Body)
}

func (d *Deepgram) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++ // invalidate any in-flight completion
}
