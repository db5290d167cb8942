package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"murmur/encoder"
)

// Groq posts recordings to the whisper-large-v3-turbo endpoint. The endpoint
// only accepts self-describing audio containers, so the raw PCM buffer is
// packaged as FLAC (lossless, so the samples on the wire are the samples
// that were recorded) right before upload.
type Groq struct {
	baseTranscriber
	apiKey string
}

func NewGroq(apiKey string) *Groq {
	apiURL := "https://api.groq.com/openai/v1/audio/transcriptions"
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(),
			apiURL: apiURL,
		},
		apiKey: apiKey,
	}
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

func (g *Groq) Transcribe(ctx context.Context, audio []byte) (Result, error) {
	if err := checkAudio(audio); err != nil {
		return Result{}, err
	}

	flacData, err := encoder.EncodePCM(audio)
	if err != nil {
		return Result{}, &Error{Provider: "groq", Message: "flac packaging failed", Err: err}
	}

	// The multipart body is spooled to a temp file instead of held in a
	// second in-memory copy of the recording. The file is removed before
	// returning on every path, success or failure.
	body, contentType, size, cleanup, err := spoolMultipart(flacData, g.lang)
	if err != nil {
		return Result{}, &Error{Provider: "groq", Message: "request spool failed", Err: err}
	}
	defer cleanup()

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, body)
	if err != nil {
		return Result{}, &Error{Provider: "groq", Message: "request build failed", Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, &Error{Provider: "groq", Message: "upload failed", Err: err}
	}

	if resp.StatusCode != 200 {
		return Result{}, &Error{
			Provider: "groq",
			Message:  fmt.Sprintf("API error %d: %s", resp.StatusCode, string(resp.Body)),
		}
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return Result{}, &Error{Provider: "groq", Message: "response parse failed", Err: err}
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return Result{
		Text:      gResp.Text,
		NoSpeech:  strings.TrimSpace(gResp.Text) == "",
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}, nil
}

// spoolMultipart writes the upload body to a temp file and hands back the
// open file positioned at the start. cleanup closes and removes it.
func spoolMultipart(flacData []byte, lang string) (*os.File, string, int64, func(), error) {
	f, err := os.CreateTemp("", "murmur-upload-*")
	if err != nil {
		return nil, "", 0, nil, err
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	writer := multipart.NewWriter(f)
	part, err := writer.CreateFormFile("file", "audio.flac")
	if err != nil {
		cleanup()
		return nil, "", 0, nil, err
	}
	if _, err := part.Write(flacData); err != nil {
		cleanup()
		return nil, "", 0, nil, err
	}
	writer.WriteField("model", "whisper-large-v3-turbo")
	writer.WriteField("response_format", "json")
	if lang != "" {
		writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		cleanup()
		return nil, "", 0, nil, err
	}

	size, err := f.Seek(0, 1)
	if err != nil {
		cleanup()
		return nil, "", 0, nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		cleanup()
		return nil, "", 0, nil, err
	}
	return f, writer.FormDataContentType(), size, cleanup, nil
}
