package audio

import (
	"math"
	"testing"
)

func makeTone(freq float64, duration float64, sampleRate int, amplitude float64) []int16 {
	n := int(duration * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int16(amplitude * 32767 * math.Sin(2*math.Pi*freq*t))
	}
	return samples
}

func TestEncodeDecodeWAV(t *testing.T) {
	clip := &Clip{
		Samples:    makeTone(440, 0.5, 16000, 0.5),
		SampleRate: 16000,
		Channels:   1,
	}

	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if len(data) != 44+len(clip.Samples)*2 {
		t.Errorf("unexpected encoded size %d", len(data))
	}

	decoded, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if decoded.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", decoded.SampleRate)
	}
	if decoded.Channels != 1 {
		t.Errorf("expected 1 channel, got %d", decoded.Channels)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("expected %d samples, got %d", len(clip.Samples), len(decoded.Samples))
	}
	for i := range clip.Samples {
		if decoded.Samples[i] != clip.Samples[i] {
			t.Fatalf("sample %d mismatch: %d != %d", i, decoded.Samples[i], clip.Samples[i])
		}
	}
}

func TestEncodeWAVRejectsEmpty(t *testing.T) {
	if _, err := EncodeWAV(&Clip{SampleRate: 16000}); err == nil {
		t.Error("expected error for empty samples")
	}
	if _, err := EncodeWAV(&Clip{Samples: []int16{1}, SampleRate: 0}); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV([]byte("not a wav file")); err == nil {
		t.Error("expected error for short data")
	}

	data, _ := EncodeWAV(&Clip{Samples: makeTone(440, 0.1, 8000, 0.5), SampleRate: 8000, Channels: 1})
	data[0] = 'X'
	if _, err := DecodeWAV(data); err == nil {
		t.Error("expected error for corrupted RIFF header")
	}
}

func TestProbeDuration(t *testing.T) {
	clip := &Clip{
		Samples:    makeTone(440, 2.0, 16000, 0.5),
		SampleRate: 16000,
		Channels:   1,
	}
	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatal(err)
	}

	dur, err := ProbeDuration(data)
	if err != nil {
		t.Fatalf("ProbeDuration failed: %v", err)
	}
	if math.Abs(dur-2.0) > 0.001 {
		t.Errorf("expected duration 2.0, got %f", dur)
	}
}
