package inference

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider transcribes segments with the OpenAI audio API, or any
// OpenAI-compatible endpoint configured via inference.base_url.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *logrus.Entry
}

func NewOpenAIProvider(app *config.AppConfig, logger *logrus.Logger) (*OpenAIProvider, error) {
	if app.Inference.ApiKey == "" {
		return nil, fmt.Errorf("openai provider requires inference.api_key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(app.Inference.ApiKey),
	}
	if app.Inference.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(app.Inference.BaseUrl))
	}

	model := app.Model.Name
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger.WithField("provider", "openai"),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	started := time.Now()

	transcription, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(p.model),
		File:  openai.File(bytes.NewReader(req.AudioData), req.SegmentId+".wav", "audio/wav"),
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription failed: %w", err)
	}

	return &Result{
		Success:        true,
		Text:           transcription.Text,
		Confidence:     0.95,
		ProcessingTime: time.Since(started).Seconds(),
	}, nil
}
