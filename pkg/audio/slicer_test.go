package audio

import (
	"math"
	"testing"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

func testSegmentationSettings() config.SegmentationSettings {
	return config.SegmentationSettings{
		SegmentLengthSeconds: 10.0,
		OverlapSeconds:       2.0,
		MinSegmentLength:     3.0,
		MaxSilenceLength:     2.0,
		FadeDuration:         0.01,
	}
}

func TestPlanSpans(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		expected []Span
	}{
		{
			name:     "short clip stays whole",
			total:    5.0,
			expected: []Span{{0, 5}},
		},
		{
			name:     "exact multiple",
			total:    20.0,
			expected: []Span{{0, 10}, {10, 20}},
		},
		{
			name:     "short tail merges into previous",
			total:    12.0,
			expected: []Span{{0, 12}},
		},
		{
			name:     "long tail keeps its own segment",
			total:    14.0,
			expected: []Span{{0, 10}, {10, 14}},
		},
		{
			name:     "three segments with merged tail",
			total:    22.0,
			expected: []Span{{0, 10}, {10, 22}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := PlanSpans(tt.total, 10.0, 3.0)
			if len(spans) != len(tt.expected) {
				t.Fatalf("expected %d spans, got %d: %+v", len(tt.expected), len(spans), spans)
			}
			for i, want := range tt.expected {
				if math.Abs(spans[i].Start-want.Start) > 0.001 || math.Abs(spans[i].End-want.End) > 0.001 {
					t.Errorf("span %d: expected %+v, got %+v", i, want, spans[i])
				}
			}
		})
	}
}

func TestDetectSilence(t *testing.T) {
	sampleRate := 16000
	// 1s tone, 1s silence, 1s tone
	samples := makeTone(440, 1.0, sampleRate, 0.5)
	samples = append(samples, make([]int16, sampleRate)...)
	samples = append(samples, makeTone(440, 1.0, sampleRate, 0.5)...)

	intervals := DetectSilence(samples, sampleRate, -40.0)
	if len(intervals) == 0 {
		t.Fatal("expected at least one silence interval")
	}

	found := false
	for _, iv := range intervals {
		if iv.Start > 0.9 && iv.End < 2.1 && iv.Duration() > 0.8 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a silence interval around 1.0-2.0s, got %+v", intervals)
	}
}

func TestSlicePrefersSilenceCut(t *testing.T) {
	sampleRate := 16000
	// 9.5s tone, 1s silence, 9.5s tone: the cut near the 10s ideal should
	// land inside the silence gap at ~10s.
	samples := makeTone(440, 9.5, sampleRate, 0.5)
	samples = append(samples, make([]int16, sampleRate)...)
	samples = append(samples, makeTone(440, 9.5, sampleRate, 0.5)...)
	clip := &Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}

	sl := NewSlicer(testSegmentationSettings(), -40.0, logrus.New())
	segments := sl.Slice(clip)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	cut := segments[0].End
	if cut < 9.5 || cut > 10.5 {
		t.Errorf("expected cut inside the silence gap, got %f", cut)
	}

	// overlap tail extends past the boundary
	if segments[0].ActualEnd <= segments[0].End {
		t.Error("expected overlap tail past the segment boundary")
	}
	if math.Abs(segments[0].ActualEnd-(cut+2.0)) > 0.01 {
		t.Errorf("expected 2s overlap, got %f", segments[0].ActualEnd-cut)
	}

	// second segment starts at the cut
	if math.Abs(segments[1].Start-cut) > 0.001 {
		t.Errorf("second segment should start at the cut, got %f", segments[1].Start)
	}
}

func TestSliceShortClipSingleSegment(t *testing.T) {
	sampleRate := 16000
	clip := &Clip{
		Samples:    makeTone(300, 4.0, sampleRate, 0.4),
		SampleRate: sampleRate,
		Channels:   1,
	}

	sl := NewSlicer(testSegmentationSettings(), -40.0, logrus.New())
	segments := sl.Slice(clip)
	if len(segments) != 1 {
		t.Fatalf("expected a single segment, got %d", len(segments))
	}
	if segments[0].Index != 0 {
		t.Errorf("expected index 0, got %d", segments[0].Index)
	}
	if math.Abs(segments[0].Duration()-4.0) > 0.01 {
		t.Errorf("expected 4s duration, got %f", segments[0].Duration())
	}
	if !segments[0].Quality.HasSpeech {
		t.Error("tone segment should count as speech")
	}
}

func TestAnalyzeQualitySilentSegment(t *testing.T) {
	report := AnalyzeQuality(make([]int16, 16000), 16000, -40.0)
	if report.HasSpeech {
		t.Error("silent segment should not count as speech")
	}
	if report.SilenceRatio < 0.9 {
		t.Errorf("expected silence ratio near 1.0, got %f", report.SilenceRatio)
	}
}

func TestMixdownStereo(t *testing.T) {
	clip := &Clip{
		Samples:    []int16{100, 200, 300, 400},
		SampleRate: 16000,
		Channels:   2,
	}
	mono := Mixdown(clip, 1)
	if mono.Channels != 1 {
		t.Fatalf("expected mono, got %d channels", mono.Channels)
	}
	if len(mono.Samples) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(mono.Samples))
	}
	if mono.Samples[0] != 150 || mono.Samples[1] != 350 {
		t.Errorf("unexpected mixdown values: %v", mono.Samples)
	}
}

func TestResampleStereoMixesDownFirst(t *testing.T) {
	// interleaved stereo with wildly different channels: interpolating
	// across the raw sample slice would blend left into right
	clip := &Clip{
		Samples:    []int16{1000, -1000, 1000, -1000, 1000, -1000, 1000, -1000},
		SampleRate: 32000,
		Channels:   2,
	}
	out := Resample(clip, 16000)
	if out.Channels != 1 {
		t.Fatalf("expected mono output, got %d channels", out.Channels)
	}
	if out.SampleRate != 16000 {
		t.Fatalf("expected rate 16000, got %d", out.SampleRate)
	}
	// both channels average to zero in every frame
	for i, s := range out.Samples {
		if s != 0 {
			t.Errorf("sample %d: expected 0 after mixdown, got %d", i, s)
		}
	}
}

func TestResampleHalvesRate(t *testing.T) {
	clip := &Clip{
		Samples:    makeTone(440, 1.0, 32000, 0.5),
		SampleRate: 32000,
		Channels:   1,
	}
	out := Resample(clip, 16000)
	if out.SampleRate != 16000 {
		t.Fatalf("expected rate 16000, got %d", out.SampleRate)
	}
	if math.Abs(float64(len(out.Samples))-16000) > 2 {
		t.Errorf("expected ~16000 samples, got %d", len(out.Samples))
	}
}
