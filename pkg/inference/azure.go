package inference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/google/uuid"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// AzureProvider transcribes segments with the Azure Cognitive Services
// speech SDK. The SDK consumes WAV files, so each segment is staged in
// the temp directory for the duration of the call.
type AzureProvider struct {
	speechConfig *speech.SpeechConfig
	tempDir      string
	logger       *logrus.Entry
}

func NewAzureProvider(app *config.AppConfig, logger *logrus.Logger) (*AzureProvider, error) {
	creds := app.Inference.Azure
	if creds.SubscriptionKey == "" || creds.ServiceRegion == "" {
		return nil, fmt.Errorf("azure provider requires subscription_key and service_region")
	}

	cnf, err := speech.NewSpeechConfigFromSubscription(creds.SubscriptionKey, creds.ServiceRegion)
	if err != nil {
		return nil, err
	}

	return &AzureProvider{
		speechConfig: cnf,
		tempDir:      app.Audio.TempDir,
		logger:       logger.WithField("provider", "azure"),
	}, nil
}

func (p *AzureProvider) Name() string {
	return "azure"
}

func (p *AzureProvider) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	started := time.Now()

	wavPath := filepath.Join(p.tempDir, fmt.Sprintf("azure_%s.wav", uuid.NewString()))
	if err := os.WriteFile(wavPath, req.AudioData, 0644); err != nil {
		return nil, fmt.Errorf("failed to stage segment for azure: %w", err)
	}
	defer os.Remove(wavPath)

	audioConfig, err := audio.NewAudioConfigFromWavFileInput(wavPath)
	if err != nil {
		return nil, err
	}
	defer audioConfig.Close()

	recognizer, err := speech.NewSpeechRecognizerFromConfig(p.speechConfig, audioConfig)
	if err != nil {
		return nil, err
	}
	defer recognizer.Close()

	var outcome speech.SpeechRecognitionOutcome
	select {
	case outcome = <-recognizer.RecognizeOnceAsync():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer outcome.Close()

	if outcome.Error != nil {
		return nil, fmt.Errorf("azure recognition failed: %w", outcome.Error)
	}

	return &Result{
		Success:        true,
		Text:           outcome.Result.Text,
		Confidence:     0.95,
		ProcessingTime: time.Since(started).Seconds(),
	}, nil
}
