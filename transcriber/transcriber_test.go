package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func testPCM(n int) []byte {
	pcm := make([]byte, n)
	for i := 0; i < n; i += 2 {
		pcm[i] = byte(i)
		pcm[i+1] = byte(i >> 8)
	}
	return pcm
}

func TestTinyRecordingRejectedBeforeUpload(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	g := NewGroq("key")
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), testPCM(100))
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("sub-threshold recording reached the server (%d requests)", requests)
	}

	d := NewDeepgram("key")
	d.apiURL = srv.URL
	if _, err := d.Transcribe(context.Background(), nil); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio for empty buffer, got %v", err)
	}
}

func TestGroqTranscribe(t *testing.T) {
	pcm := testPCM(4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		defer file.Close()
		magic := make([]byte, 4)
		io.ReadFull(file, magic)
		if string(magic) != "fLaC" {
			t.Errorf("file part is not a flac container, starts with %q", magic)
		}
		w.Header().Set("x-ratelimit-remaining-requests", "19")
		w.Header().Set("x-ratelimit-limit-requests", "20")
		json.NewEncoder(w).Encode(map[string]any{"text": "hello world", "duration": 0.128})
	}))
	defer srv.Close()

	g := NewGroq("key")
	g.apiURL = srv.URL

	res, err := g.Transcribe(context.Background(), pcm)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("text = %q", res.Text)
	}
	if res.NoSpeech {
		t.Error("NoSpeech set for non-empty transcript")
	}
	if res.RateLimit != "19/20" {
		t.Errorf("rate limit = %q", res.RateLimit)
	}
	if res.Metrics == nil || res.Metrics.Total <= 0 {
		t.Error("missing network metrics")
	}
}

func TestGroqAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGroq("key")
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), testPCM(4096))
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if terr.Provider != "groq" {
		t.Errorf("provider = %q", terr.Provider)
	}
}

func TestGroqSpoolCleanup(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		json.NewEncoder(w).Encode(map[string]any{"text": "ok"})
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	for _, url := range []string{ok.URL, failing.URL} {
		g := NewGroq("key")
		g.apiURL = url
		g.Transcribe(context.Background(), testPCM(4096))

		leftovers, err := filepath.Glob(filepath.Join(tmp, "murmur-upload-*"))
		if err != nil {
			t.Fatal(err)
		}
		if len(leftovers) != 0 {
			t.Fatalf("spool files left behind after upload to %s: %v", url, leftovers)
		}
	}
}

func TestDeepgramTranscribe(t *testing.T) {
	pcm := testPCM(8192)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("encoding") != "linear16" || q.Get("sample_rate") != "16000" {
			t.Errorf("unexpected query: %v", q)
		}
		body, _ := io.ReadAll(r.Body)
		if !bytes.Equal(body, pcm) {
			t.Errorf("body is not the recorded PCM (%d bytes, want %d)", len(body), len(pcm))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"channels": []any{map[string]any{
					"alternatives": []any{map[string]any{
						"transcript": "raw pcm arrived intact",
						"confidence": 0.97,
					}},
				}},
			},
		})
	}))
	defer srv.Close()

	d := NewDeepgram("key")
	d.apiURL = srv.URL
	d.SetLanguage("en")

	res, err := d.Transcribe(context.Background(), pcm)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "raw pcm arrived intact" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestNewProviderSelection(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	if _, err := New(); err == nil {
		t.Fatal("expected error with no credentials in the environment")
	}

	t.Setenv("GROQ_API_KEY", "gk")
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "groq" {
		t.Errorf("provider = %q, want groq", tr.Name())
	}

	// Deepgram wins when both keys are present.
	t.Setenv("DEEPGRAM_API_KEY", "dk")
	tr, err = New()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "deepgram" {
		t.Errorf("provider = %q, want deepgram", tr.Name())
	}
}
