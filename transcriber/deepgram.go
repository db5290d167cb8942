package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"murmur/encoder"
)

// Deepgram posts the recorded PCM verbatim. The listen endpoint takes raw
// linear16 samples when told the encoding in the query string, so no
// container packaging happens on this path.
type Deepgram struct {
	baseTranscriber
	apiKey string
}

func NewDeepgram(apiKey string) *Deepgram {
	return &Deepgram{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(),
			apiURL: "https://api.deepgram.com/v1/listen",
		},
		apiKey: apiKey,
	}
}

func (d *Deepgram) Name() string { return "deepgram" }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *Deepgram) requestURL() string {
	params := url.Values{}
	params.Set("model", "nova-3")
	params.Set("encoding", "linear16")
	params.Set("sample_rate", strconv.Itoa(encoder.SampleRate))
	params.Set("channels", strconv.Itoa(encoder.Channels))
	params.Set("smart_format", "true")
	if d.lang != "" {
		params.Set("language", d.lang)
	}
	return d.apiURL + "?" + params.Encode()
}

func (d *Deepgram) Transcribe(ctx context.Context, audio []byte) (Result, error) {
	if err := checkAudio(audio); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.requestURL(), bytes.NewReader(audio))
	if err != nil {
		return Result{}, &Error{Provider: "deepgram", Message: "request build failed", Err: err}
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, &Error{Provider: "deepgram", Message: "upload failed", Err: err}
	}

	if resp.StatusCode != 200 {
		return Result{}, &Error{
			Provider: "deepgram",
			Message:  fmt.Sprintf("API error %d: %s", resp.StatusCode, string(resp.Body)),
		}
	}

	var dgResp deepgramResponse
	if err := json.Unmarshal(resp.Body, &dgResp); err != nil {
		return Result{}, &Error{Provider: "deepgram", Message: "response parse failed", Err: err}
	}

	var text string
	if len(dgResp.Results.Channels) > 0 && len(dgResp.Results.Channels[0].Alternatives) > 0 {
		text = dgResp.Results.Channels[0].Alternatives[0].Transcript
	}

	remaining := firstNonEmpty(resp.Header,
		"x-dg-ratelimit-remaining", "x-ratelimit-remaining", "ratelimit-remaining")
	limit := firstNonEmpty(resp.Header,
		"x-dg-ratelimit-limit", "x-ratelimit-limit", "ratelimit-limit")

	return Result{
		Text:      text,
		NoSpeech:  text == "",
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}, nil
}
