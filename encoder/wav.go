package encoder

import (
	"bytes"
	"encoding/binary"
	"sync"
)

const wavHeaderSize = 44

// WavEncoder writes a canonical 44-byte RIFF header followed by raw
// little-endian PCM16. Sizes in the header are patched on Close.
type WavEncoder struct {
	mu          sync.Mutex
	buf         bytes.Buffer
	totalFrames uint64
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.buf.Write(make([]byte, wavHeaderSize))
	return e
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range block {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		e.buf.Write(b[:])
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := e.buf.Bytes()
	dataLen := uint32(len(data) - wavHeaderSize)
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	copy(data[0:], "RIFF")
	binary.LittleEndian.PutUint32(data[4:], 36+dataLen)
	copy(data[8:], "WAVE")
	copy(data[12:], "fmt ")
	binary.LittleEndian.PutUint32(data[16:], 16)
	binary.LittleEndian.PutUint16(data[20:], 1) // PCM
	binary.LittleEndian.PutUint16(data[22:], Channels)
	binary.LittleEndian.PutUint32(data[24:], SampleRate)
	binary.LittleEndian.PutUint32(data[28:], byteRate)
	binary.LittleEndian.PutUint16(data[32:], blockAlign)
	binary.LittleEndian.PutUint16(data[34:], BitsPerSample)
	copy(data[36:], "data")
	binary.LittleEndian.PutUint32(data[40:], dataLen)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}
