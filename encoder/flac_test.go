package encoder

import (
	"encoding/binary"
	"math"
	"testing"
)

func sinePCM(seconds float64, freq float64) []byte {
	n := int(float64(SampleRate) * seconds)
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(SampleRate)
		s := int16(math.Sin(2*math.Pi*freq*t) * 12000)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

func TestFlacEncoder(t *testing.T) {
	pcm := sinePCM(1.0, 440)
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var totalFed uint64
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		block := samples[i:end]
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestEncodePCM(t *testing.T) {
	pcm := sinePCM(0.5, 330)
	data, err := EncodePCM(pcm)
	if err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestEncodePCMEmpty(t *testing.T) {
	data, err := EncodePCM(nil)
	if err != nil {
		t.Fatalf("EncodePCM(nil): %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("empty input should still produce a valid stream header")
	}
}
