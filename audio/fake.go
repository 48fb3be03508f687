package audio

import "sync"

const fakeFrameSize = 1024

// FakeContext replays canned PCM through the CaptureDevice interface so the
// recording pipeline can be exercised without a microphone.
type FakeContext struct {
	pcm []byte
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm}, nil
}

// FakeCapture feeds its PCM to the callback synchronously on Start.
type FakeCapture struct {
	pcm      []byte
	StartErr error

	mu      sync.Mutex
	cb      DataCallback
	started bool
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	f.started = true
	cb := f.cb
	f.mu.Unlock()

	if cb == nil {
		return nil
	}
	chunkBytes := fakeFrameSize * 2
	for pos := 0; pos < len(f.pcm); pos += chunkBytes {
		end := min(pos+chunkBytes, len(f.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, f.pcm[pos:end])
		cb(chunk, uint32(len(chunk)/2))
	}
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close()             {}
func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}
