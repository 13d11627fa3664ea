package audio

import (
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// Span is a planned segment boundary in seconds from the clip start.
type Span struct {
	Start float64
	End   float64
}

// Segment is one sliced piece of a clip, including the overlap tail.
type Segment struct {
	Index      int
	Start      float64 // boundary start in the source clip
	End        float64 // boundary end in the source clip, excluding overlap
	ActualEnd  float64 // end including the overlap tail
	Samples    []int16
	SampleRate int
	Quality    *QualityReport
}

// Duration returns the boundary duration, excluding the overlap tail.
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}

// Slicer cuts a preprocessed clip into overlapping segments, preferring
// cut points that fall inside detected silence.
type Slicer struct {
	cnf       config.SegmentationSettings
	silenceDB float64
	logger    *logrus.Entry
}

func NewSlicer(cnf config.SegmentationSettings, silenceThresholdDB float64, logger *logrus.Logger) *Slicer {
	return &Slicer{
		cnf:       cnf,
		silenceDB: silenceThresholdDB,
		logger:    logger.WithField("service", "slicer"),
	}
}

// PlanSpans computes segment boundaries for the given total duration.
// A trailing remainder shorter than the minimum segment length is merged
// into the previous segment.
func PlanSpans(totalDuration, segmentLength, minSegmentLength float64) []Span {
	if totalDuration <= 0 || segmentLength <= 0 {
		return nil
	}

	var spans []Span
	current := 0.0
	for current < totalDuration {
		end := current + segmentLength
		if end > totalDuration {
			end = totalDuration
		}
		if remaining := totalDuration - end; remaining > 0 && remaining < minSegmentLength {
			end = totalDuration
		}
		spans = append(spans, Span{Start: current, End: end})
		if end >= totalDuration {
			break
		}
		current = end
	}
	return spans
}

// Slice cuts the clip into segments. Boundaries follow PlanSpans but each
// cut is moved to the nearest silence midpoint when one exists close to
// the ideal position. The overlap tail is appended past each boundary and
// fades are applied at the segment edges.
func (sl *Slicer) Slice(clip *Clip) []*Segment {
	total := clip.Duration()
	if total <= 0 {
		return nil
	}

	silences := DetectSilence(clip.Samples, clip.SampleRate, sl.silenceDB)

	var segments []*Segment
	current := 0.0
	index := 0
	for current < total {
		ideal := current + sl.cnf.SegmentLengthSeconds
		end := ideal
		if end >= total || total-end < sl.cnf.MinSegmentLength {
			end = total
		} else {
			end = sl.bestCutPoint(silences, current, ideal)
		}

		actualEnd := end + sl.cnf.OverlapSeconds
		if actualEnd > total {
			actualEnd = total
		}

		startIdx := int(current * float64(clip.SampleRate))
		endIdx := int(actualEnd * float64(clip.SampleRate))
		if endIdx > len(clip.Samples) {
			endIdx = len(clip.Samples)
		}
		if startIdx >= endIdx {
			break
		}

		samples := append([]int16(nil), clip.Samples[startIdx:endIdx]...)
		applyFades(samples, clip.SampleRate, sl.cnf.FadeDuration)

		segments = append(segments, &Segment{
			Index:      index,
			Start:      current,
			End:        end,
			ActualEnd:  actualEnd,
			Samples:    samples,
			SampleRate: clip.SampleRate,
			Quality:    AnalyzeQuality(samples, clip.SampleRate, sl.silenceDB),
		})

		if end >= total {
			break
		}
		current = end
		index++
	}

	sl.logger.WithFields(logrus.Fields{
		"duration": total,
		"segments": len(segments),
	}).Debugln("clip sliced")

	return segments
}

// bestCutPoint picks the silence midpoint closest to the ideal cut. The
// candidate window runs from the earliest acceptable cut (the minimum
// segment length past the start) up to the ideal position plus the
// maximum silence length. Without a usable silence the ideal wins.
func (sl *Slicer) bestCutPoint(silences []Interval, start, ideal float64) float64 {
	earliest := start + sl.cnf.MinSegmentLength
	latest := ideal + sl.cnf.MaxSilenceLength

	best := ideal
	bestDist := -1.0
	for _, iv := range silences {
		mid := iv.Midpoint()
		if mid < earliest || mid > latest {
			continue
		}
		dist := mid - ideal
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = mid
		}
	}
	return best
}

// applyFades applies linear fade in/out ramps to avoid clicks at segment edges.
func applyFades(samples []int16, sampleRate int, fadeDuration float64) {
	fadeLen := int(fadeDuration * float64(sampleRate))
	if fadeLen <= 0 || len(samples) < fadeLen*2 {
		return
	}

	for i := 0; i < fadeLen; i++ {
		gain := float64(i) / float64(fadeLen)
		samples[i] = int16(float64(samples[i]) * gain)
		j := len(samples) - 1 - i
		samples[j] = int16(float64(samples[j]) * gain)
	}
}
