package encoder

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func testBlock(n int) []int16 {
	block := make([]int16, n)
	for i := range block {
		block[i] = int16(i % 1000)
	}
	return block
}

func TestNew(t *testing.T) {
	for _, format := range []string{"wav", "flac"} {
		t.Run(format, func(t *testing.T) {
			enc, err := New(format)
			if err != nil {
				t.Fatalf("New(%q): %v", format, err)
			}
			if enc == nil {
				t.Fatalf("New(%q) returned nil", format)
			}
		})
	}
	t.Run("unknown", func(t *testing.T) {
		if _, err := New("mp3"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestWavHeader(t *testing.T) {
	enc := NewWav()
	block := testBlock(BlockSize)
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := enc.Bytes()
	if len(data) != wavHeaderSize+BlockSize*2 {
		t.Fatalf("got %d bytes, want %d", len(data), wavHeaderSize+BlockSize*2)
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != BlockSize*2 {
		t.Errorf("data length = %d, want %d", got, BlockSize*2)
	}
	if enc.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize)
	}

	// Samples survive round-trip
	for i := 0; i < 10; i++ {
		got := int16(binary.LittleEndian.Uint16(data[wavHeaderSize+i*2:]))
		if got != block[i] {
			t.Fatalf("sample %d = %d, want %d", i, got, block[i])
		}
	}
}

func TestFlacEncodeBlock(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.EncodeBlock(testBlock(BlockSize)); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data := enc.Bytes()
	if len(data) == 0 {
		t.Fatal("no flac output")
	}
	if !bytes.Equal(data[0:4], []byte("fLaC")) {
		t.Error("missing fLaC marker")
	}
	if enc.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize)
	}
}
