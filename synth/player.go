package synth

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/vishnuarumugam/voiceCapture/encoder"
)

// PCMPlayer renders a mono 16 kHz PCM16 stream to the output device,
// blocking until the stream drains or ctx is canceled.
type PCMPlayer interface {
	Play(ctx context.Context, pcm io.Reader) error
}

// playbackTail lets the device drain buffered frames before teardown.
const playbackTail = 150 * time.Millisecond

type Player struct {
	ctx *malgo.AllocatedContext
}

func NewPlayer() (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &Player{ctx: ctx}, nil
}

func (p *Player) Close() {
	p.ctx.Uninit()
	p.ctx.Free()
}

func (p *Player) Play(ctx context.Context, pcm io.Reader) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = encoder.Channels
	deviceConfig.SampleRate = encoder.SampleRate

	drained := make(chan struct{})
	var once sync.Once

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n, err := io.ReadFull(pcm, out)
			if err != nil {
				for i := n; i < len(out); i++ {
					out[i] = 0
				}
				once.Do(func() { close(drained) })
			}
		},
	}

	dev, err := malgo.InitDevice(p.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return err
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-drained:
		time.Sleep(playbackTail)
		return nil
	}
}
