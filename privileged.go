package main

import (
	"context"
	"strings"
	"time"

	"murmur/audio"
	"murmur/control"
	"murmur/encoder"
	"murmur/log"
	"murmur/save"
	"murmur/transcriber"
)

// privilegedService implements the control.Handler surface. Everything that
// touches credentials, OS prompts or the network lives here, behind the
// control channel.
type privilegedService struct {
	trans    transcriber.Transcriber
	saver    *save.Service
	audioCtx audio.Context
	hideFn   func()
}

func (p *privilegedService) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	start := time.Now()
	res, err := p.trans.Transcribe(ctx, pcm)
	if err != nil {
		log.Errorf("transcription error: %v", err)
		return "", err
	}

	audioS := float64(len(pcm)) / float64(encoder.BytesPerSecond)
	if res.Metrics != nil {
		m := res.Metrics
		log.TranscriptionMetrics(log.Metrics{
			AudioLengthS: audioS,
			PayloadKB:    float64(len(pcm)) / 1024,
			DNSTimeMs:    float64(m.DNS.Milliseconds()),
			TLSTimeMs:    float64(m.TLS.Milliseconds()),
			UploadMs:     float64(m.ReqBody.Milliseconds()),
			TTFBMs:       float64(m.TTFB.Milliseconds()),
			TotalTimeMs:  float64(time.Since(start).Milliseconds()),
		}, p.trans.Name(), res.RateLimit, m.ConnReused, m.TLSProtocol)
	}

	if res.NoSpeech || strings.TrimSpace(res.Text) == "" {
		log.Info("no_speech")
		return "", nil
	}
	log.TranscriptionText(res.Text)
	return res.Text, nil
}

func (p *privilegedService) RequestMicAccess(ctx context.Context) (bool, error) {
	// Enumerating capture devices forces the OS permission prompt on
	// platforms that have one.
	devices, err := p.audioCtx.Devices()
	if err != nil {
		log.Errorf("mic access check: %v", err)
		return false, err
	}
	if len(devices) == 0 {
		log.Warn("mic access: no capture devices")
		return false, nil
	}
	return true, nil
}

func (p *privilegedService) SaveRecording(ctx context.Context, pcm []byte) (control.SaveStatus, error) {
	status, err := p.saver.Save(ctx, pcm)
	if err != nil {
		log.Errorf("save error: %v", err)
		return control.SaveCancelled, err
	}
	if status == save.Cancelled {
		log.Info("save_cancelled")
		return control.SaveCancelled, nil
	}
	log.Info("save_completed")
	return control.SaveCompleted, nil
}

func (p *privilegedService) HideWindow(ctx context.Context) error {
	if p.hideFn != nil {
		p.hideFn()
	}
	return nil
}
