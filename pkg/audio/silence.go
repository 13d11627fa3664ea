package audio

import "math"

const (
	frameLength = 0.025 // seconds
	hopLength   = 0.010 // seconds
)

// Interval marks a span of silence in seconds from the clip start.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Midpoint returns the center of the interval.
func (iv Interval) Midpoint() float64 {
	return (iv.Start + iv.End) / 2
}

// dbToLinear converts a dBFS threshold to a linear amplitude in the 0..1 range.
func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// frameRMS computes the normalized RMS of one frame of PCM-16 samples.
func frameRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// DetectSilence scans mono PCM-16 samples with a 25ms frame / 10ms hop and
// returns the intervals whose RMS stays below the dBFS threshold.
func DetectSilence(samples []int16, sampleRate int, thresholdDB float64) []Interval {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}

	frameSize := int(frameLength * float64(sampleRate))
	hopSize := int(hopLength * float64(sampleRate))
	if frameSize <= 0 || hopSize <= 0 {
		return nil
	}
	threshold := dbToLinear(thresholdDB)

	var intervals []Interval
	inSilence := false
	var silenceStart float64

	for pos := 0; pos < len(samples); pos += hopSize {
		end := pos + frameSize
		if end > len(samples) {
			end = len(samples)
		}
		t := float64(pos) / float64(sampleRate)
		quiet := frameRMS(samples[pos:end]) < threshold

		if quiet && !inSilence {
			inSilence = true
			silenceStart = t
		} else if !quiet && inSilence {
			inSilence = false
			intervals = append(intervals, Interval{Start: silenceStart, End: t})
		}
	}
	if inSilence {
		intervals = append(intervals, Interval{
			Start: silenceStart,
			End:   float64(len(samples)) / float64(sampleRate),
		})
	}

	return intervals
}

// QualityReport carries per segment quality metadata.
type QualityReport struct {
	RMS          float64 `json:"rms"`
	SilenceRatio float64 `json:"silence_ratio"`
	HasSpeech    bool    `json:"has_speech"`
	Score        float64 `json:"score"`
}

// AnalyzeQuality inspects mono PCM-16 samples and estimates whether the
// segment contains usable speech.
func AnalyzeQuality(samples []int16, sampleRate int, silenceThresholdDB float64) *QualityReport {
	report := &QualityReport{}
	if len(samples) == 0 || sampleRate <= 0 {
		report.SilenceRatio = 1.0
		return report
	}

	report.RMS = frameRMS(samples)

	total := float64(len(samples)) / float64(sampleRate)
	var silent float64
	for _, iv := range DetectSilence(samples, sampleRate, silenceThresholdDB) {
		silent += iv.Duration()
	}
	if total > 0 {
		report.SilenceRatio = silent / total
	}

	// Speech needs audible energy and at least some non silent content.
	report.HasSpeech = report.RMS > dbToLinear(silenceThresholdDB) && report.SilenceRatio < 0.95

	score := (1.0 - report.SilenceRatio)
	if report.HasSpeech {
		score += 0.5
	}
	if score > 1.0 {
		score = 1.0
	}
	report.Score = score

	return report
}
