package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder turns 16-bit mono PCM blocks into a finished audio artifact
// suitable for upload to a transcription backend.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// Extension returns the file extension for a recording format.
func Extension(format string) string {
	if format == "flac" {
		return "flac"
	}
	return "wav"
}

func New(format string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(), nil
	case "flac":
		return NewFlac()
	default:
		return nil, fmt.Errorf("unknown recording format %q (use wav or flac)", format)
	}
}
