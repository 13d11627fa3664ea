package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Clip holds decoded PCM-16 audio.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)/c.Channels) / float64(c.SampleRate)
}

// wavHeader is the canonical 44 byte PCM WAV header.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // number of bytes in the data
}

// EncodeWAV encodes a PCM-16 clip into WAV format.
func EncodeWAV(clip *Clip) ([]byte, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio samples")
	}
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", clip.SampleRate)
	}
	channels := clip.Channels
	if channels <= 0 {
		channels = 1
	}

	bitsPerSample := uint16(16)
	dataSize := uint32(len(clip.Samples) * 2)
	fileSize := 36 + dataSize

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     fileSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(clip.SampleRate),
		ByteRate:      uint32(clip.SampleRate) * uint32(channels) * uint32(bitsPerSample) / 8,
		BlockAlign:    uint16(channels) * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(clip.Samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, clip.Samples); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeWAV decodes PCM-16 WAV data. Mono and multi channel files are accepted.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("WAV data too short: need at least 44 bytes, got %d", len(data))
	}

	buf := bytes.NewReader(data)
	var header wavHeader
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV file: missing RIFF header")
	}
	if string(header.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV file: missing WAVE format")
	}
	if string(header.Subchunk1ID[:]) != "fmt " {
		return nil, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if string(header.Subchunk2ID[:]) != "data" {
		return nil, fmt.Errorf("invalid WAV file: missing data chunk")
	}
	if header.AudioFormat != 1 {
		return nil, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}
	if header.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", header.BitsPerSample)
	}
	if header.NumChannels == 0 {
		return nil, fmt.Errorf("invalid channel count: 0")
	}

	numSamples := int(header.Subchunk2Size) / 2
	if numSamples <= 0 {
		return nil, fmt.Errorf("no audio data found")
	}

	samples := make([]int16, numSamples)
	if err := binary.Read(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("failed to read audio samples: %w", err)
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(header.SampleRate),
		Channels:   int(header.NumChannels),
	}, nil
}

// ProbeDuration reads the duration of WAV data from the header only.
func ProbeDuration(data []byte) (float64, error) {
	if len(data) < 44 {
		return 0, fmt.Errorf("WAV data too short: need at least 44 bytes, got %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, fmt.Errorf("invalid WAV file header")
	}

	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	blockAlign := binary.LittleEndian.Uint16(data[32:34])
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if sampleRate == 0 || blockAlign == 0 {
		return 0, fmt.Errorf("invalid WAV format values")
	}

	frames := dataSize / uint32(blockAlign)
	return float64(frames) / float64(sampleRate), nil
}

// ReadWAVFile loads and decodes a WAV file from disk.
func ReadWAVFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeWAV(data)
}

// WriteWAVFile encodes a clip and writes it to disk.
func WriteWAVFile(path string, clip *Clip) error {
	data, err := EncodeWAV(clip)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
