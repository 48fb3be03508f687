package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/log"
)

// Errors classified by the conversation controller.
var (
	ErrModelUnavailable = errors.New("transcription model unavailable")
	ErrTranscription    = errors.New("transcription failed")
)

type Segment struct {
	Text         string
	NoSpeechProb float64
	AvgLogProb   float64
	Start        float64
	End          float64
}

type Result struct {
	Text         string
	Duration     float64
	NoSpeechProb float64
	AvgLogProb   float64
	Segments     []Segment
	Metrics      *NetworkMetrics
	RateLimit    string // "remaining/limit" or empty
}

// NoSpeech reports whether the backend returned an empty transcript.
func (r *Result) NoSpeech() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Transcriber converts a finished recording into text. Transcribe consumes
// the handle: the artifact is removed after a single use.
type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	Transcribe(ctx context.Context, handle audio.RecordingHandle) (*Result, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
	lang   string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// readHandle loads and consumes the recording artifact.
func readHandle(handle audio.RecordingHandle) ([]byte, string, error) {
	data, err := os.ReadFile(handle.Path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: unreadable recording: %v", ErrTranscription, err)
	}
	os.Remove(handle.Path)
	format := strings.TrimPrefix(filepath.Ext(handle.Path), ".")
	if format == "" {
		format = "wav"
	}
	return data, format, nil
}

// logMetrics records per-request network timings for the diagnostics log.
func logMetrics(provider, format string, uploadBytes int, res *Result) {
	m := res.Metrics
	if m == nil {
		return
	}
	log.TranscriptionMetrics(log.Metrics{
		AudioLengthS:     res.Duration,
		CompressedSizeKB: float64(uploadBytes) / 1024,
		DNSTimeMs:        float64(m.DNS.Milliseconds()),
		TLSTimeMs:        float64(m.TLS.Milliseconds()),
		TTFBMs:           float64(m.TTFB.Milliseconds()),
		TotalTimeMs:      float64(m.Total.Milliseconds()),
	}, format, provider, m.ConnReused, m.TLSProtocol)
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

// New picks a backend from the environment. With no API key configured the
// transcription model is unavailable until setup completes.
func New() (Transcriber, error) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key), nil
	}
	return nil, fmt.Errorf("%w: set GROQ_API_KEY or OPENAI_API_KEY", ErrModelUnavailable)
}
