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

type OpenAI struct {
	baseTranscriber
	apiKey string
	model  string
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(),
			apiURL: "https://api.openai.com/v1/audio/transcriptions",
		},
		apiKey: apiKey,
		model:  "gpt-4o-transcribe",
	}
}

func (o *OpenAI) Name() string { return "openai" }

type openAIResponse struct {
	Text string `json:"text"`
}

func (o *OpenAI) Transcribe(ctx context.Context, handle audio.RecordingHandle) (*Result, error) {
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
	writer.WriteField("model", o.model)
	writer.WriteField("response_format", "json")
	if o.lang != "" {
		writer.WriteField("language", o.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: openai API error %d: %s", ErrModelUnavailable, resp.StatusCode, string(resp.Body))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: openai API error %d: %s", ErrTranscription, resp.StatusCode, string(resp.Body))
	}

	var oResp openAIResponse
	if err := json.Unmarshal(resp.Body, &oResp); err != nil {
		return nil, fmt.Errorf("%w: openai response parse error: %v", ErrTranscription, err)
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	res := &Result{
		Text:      oResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}
	logMetrics(o.Name(), format, len(audioData), res)
	return res, nil
}
