package inference

import (
	"context"
	"fmt"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// Request carries one audio segment to a provider. AudioData is a
// complete WAV file, already preprocessed to the target format.
type Request struct {
	TaskId     string
	SegmentId  string
	AudioData  []byte
	SampleRate int
}

// Result is a single segment transcription.
type Result struct {
	Success        bool    `json:"success"`
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processing_time"`
	Error          string  `json:"error,omitempty"`
}

// Provider is implemented by every ASR backend.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, req *Request) (*Result, error)
}

// NewProvider selects the backend from the configuration. An empty model
// name always falls back to the mock provider so the whole pipeline stays
// runnable without a model behind it.
func NewProvider(app *config.AppConfig, logger *logrus.Logger) (Provider, error) {
	provider := app.Inference.Provider
	if app.Model.Name == "" {
		provider = "mock"
	}

	switch provider {
	case "mock":
		return NewMockProvider(logger), nil
	case "sensevoice", "":
		return NewSenseVoiceProvider(app, logger)
	case "openai":
		return NewOpenAIProvider(app, logger)
	case "azure":
		return NewAzureProvider(app, logger)
	default:
		return nil, fmt.Errorf("unknown inference provider: %s", provider)
	}
}
