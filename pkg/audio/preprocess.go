package audio

import (
	"math"
	"sort"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// normalizeTargetDB is the peak level uploads are normalized to.
const normalizeTargetDB = -12.0

// Preprocessor converts uploaded audio into the canonical format the
// slicer and inference backends expect.
type Preprocessor struct {
	cnf    config.PreprocessingSettings
	logger *logrus.Entry
}

func NewPreprocessor(cnf config.PreprocessingSettings, logger *logrus.Logger) *Preprocessor {
	return &Preprocessor{
		cnf:    cnf,
		logger: logger.WithField("service", "preprocessor"),
	}
}

// Process applies channel mixdown, resampling and the optional cleanup
// passes. The input clip is not modified.
func (p *Preprocessor) Process(clip *Clip) *Clip {
	out := Mixdown(clip, p.cnf.TargetChannels)
	out = Resample(out, p.cnf.TargetSampleRate)

	if p.cnf.EnableNoiseReduction {
		out.Samples = reduceNoise(out.Samples, out.SampleRate)
	}
	if p.cnf.EnableNormalization {
		out.Samples = normalize(out.Samples, normalizeTargetDB)
	}

	p.logger.WithFields(logrus.Fields{
		"sampleRate": out.SampleRate,
		"channels":   out.Channels,
		"duration":   out.Duration(),
	}).Debugln("preprocessing finished")

	return out
}

// Mixdown converts a clip to the requested channel count. Only the
// many-to-one direction changes the data; mono stays mono.
func Mixdown(clip *Clip, targetChannels int) *Clip {
	if targetChannels <= 0 {
		targetChannels = 1
	}
	if clip.Channels == targetChannels || clip.Channels <= 1 {
		cp := *clip
		cp.Channels = max(clip.Channels, 1)
		return &cp
	}

	frames := len(clip.Samples) / clip.Channels
	mixed := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < clip.Channels; ch++ {
			sum += int(clip.Samples[i*clip.Channels+ch])
		}
		mixed[i] = int16(sum / clip.Channels)
	}

	return &Clip{Samples: mixed, SampleRate: clip.SampleRate, Channels: 1}
}

// Resample converts a clip to the target rate with linear interpolation.
// Interpolation only makes sense over a single stream of samples, so a
// multi-channel clip is mixed down to mono first.
func Resample(clip *Clip, targetRate int) *Clip {
	if clip.Channels > 1 {
		clip = Mixdown(clip, 1)
	}
	if targetRate <= 0 || clip.SampleRate == targetRate || len(clip.Samples) == 0 {
		cp := *clip
		return &cp
	}

	ratio := float64(clip.SampleRate) / float64(targetRate)
	outLen := int(float64(len(clip.Samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}
	out := make([]int16, outLen)

	for i := range out {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		if idx >= len(clip.Samples)-1 {
			out[i] = clip.Samples[len(clip.Samples)-1]
			continue
		}
		frac := srcPos - float64(idx)
		a := float64(clip.Samples[idx])
		b := float64(clip.Samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}

	return &Clip{Samples: out, SampleRate: targetRate, Channels: clip.Channels}
}

// reduceNoise applies a frame level noise gate. The floor is estimated
// from the quietest tenth of the frames, so constant background hiss is
// muted without touching speech.
func reduceNoise(samples []int16, sampleRate int) []int16 {
	frameSize := int(frameLength * float64(sampleRate))
	if frameSize <= 0 || len(samples) < frameSize {
		return samples
	}

	var levels []float64
	for pos := 0; pos+frameSize <= len(samples); pos += frameSize {
		levels = append(levels, frameRMS(samples[pos:pos+frameSize]))
	}
	if len(levels) == 0 {
		return samples
	}

	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)
	floor := sorted[len(sorted)/10]
	gate := floor * 1.5

	out := append([]int16(nil), samples...)
	for i, level := range levels {
		if level <= gate {
			start := i * frameSize
			for j := start; j < start+frameSize && j < len(out); j++ {
				out[j] = 0
			}
		}
	}
	return out
}

// normalize scales the samples so the peak sits at the target dBFS level.
func normalize(samples []int16, targetDB float64) []int16 {
	var peak float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return samples
	}

	target := dbToLinear(targetDB) * 32767.0
	gain := target / peak

	out := make([]int16, len(samples))
	for i, s := range samples {
		v := float64(s) * gain
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}
