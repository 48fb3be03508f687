package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/vishnuarumugam/voiceCapture/audio"
)

type Groq struct {
	baseTranscriber
	apiKey string
	model  string
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(),
			apiURL: "https://api.groq.com/openai/v1/audio/transcriptions",
		},
		apiKey: apiKey,
		model:  "whisper-large-v3-turbo",
	}
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
		NoSpeechProb float64 `json:"no_speech_prob"`
		AvgLogProb   float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, handle audio.RecordingHandle) (*Result, error) {
	audioData, format, err := readHandle(handle)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, err
	}
	writer.WriteField("model", g.model)
	writer.WriteField("response_format", "verbose_json")
	if g.lang != "" {
		writer.WriteField("language", g.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: groq API error %d: %s", ErrModelUnavailable, resp.StatusCode, string(resp.Body))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: groq API error %d: %s", ErrTranscription, resp.StatusCode, string(resp.Body))
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("%w: groq response parse error: %v", ErrTranscription, err)
	}

	var noSpeechProb, avgLogProb float64
	var segments []Segment
	if len(gResp.Segments) > 0 {
		var logProbSum float64
		for _, seg := range gResp.Segments {
			if seg.NoSpeechProb > noSpeechProb {
				noSpeechProb = seg.NoSpeechProb
			}
			logProbSum += seg.AvgLogProb
			segments = append(segments, Segment{
				Text:         seg.Text,
				NoSpeechProb: seg.NoSpeechProb,
				AvgLogProb:   seg.AvgLogProb,
				Start:        seg.Start,
				End:          seg.End,
			})
		}
		avgLogProb = logProbSum / float64(len(gResp.Segments))
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	res := &Result{
		Text:         gResp.Text,
		Duration:     gResp.Duration,
		NoSpeechProb: noSpeechProb,
		AvgLogProb:   avgLogProb,
		Segments:     segments,
		Metrics:      resp.Metrics,
		RateLimit:    remaining + "/" + limit,
	}
	logMetrics(g.Name(), format, len(audioData), res)
	return res, nil
}
