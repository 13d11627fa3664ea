package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

const maxRetryBackoff = 30 * time.Second

// SenseVoiceProvider talks to a SenseVoice model runner over HTTP. The
// runner exposes an OpenAI-compatible transcription endpoint that takes a
// multipart WAV upload and answers with JSON.
type SenseVoiceProvider struct {
	app        *config.AppConfig
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	semaphore  chan struct{}
	logger     *logrus.Entry
}

type senseVoiceResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

func NewSenseVoiceProvider(app *config.AppConfig, logger *logrus.Logger) (*SenseVoiceProvider, error) {
	if app.Inference.BaseUrl == "" {
		return nil, fmt.Errorf("sensevoice provider requires inference.base_url")
	}

	timeout := time.Duration(app.Inference.TimeoutSeconds) * time.Second
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	maxConcurrent := app.Streaming.BatchSize
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}

	return &SenseVoiceProvider{
		app:        app,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(app.Inference.BaseUrl, "/"),
		apiKey:     app.Inference.ApiKey,
		maxRetries: app.Inference.MaxRetries,
		semaphore:  make(chan struct{}, maxConcurrent),
		logger:     logger.WithField("provider", "sensevoice"),
	}, nil
}

func (p *SenseVoiceProvider) Name() string {
	return "sensevoice"
}

// Transcribe sends one segment to the model runner, retrying transient
// failures with exponential backoff capped at 30 seconds.
func (p *SenseVoiceProvider) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	started := time.Now()
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := p.doRequest(ctx, req)
		if err == nil {
			return &Result{
				Success:        true,
				Text:           res.Text,
				Confidence:     res.Confidence,
				ProcessingTime: time.Since(started).Seconds(),
			}, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
		p.logger.WithError(err).Warnf("transcription attempt %d failed for segment %s", attempt+1, req.SegmentId)
	}

	return nil, fmt.Errorf("transcription failed after %d attempts: %w", p.maxRetries+1, lastErr)
}

func (p *SenseVoiceProvider) doRequest(ctx context.Context, req *Request) (*senseVoiceResponse, error) {
	body, contentType, err := p.buildMultipart(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart request: %w", err)
	}

	endpoint := p.baseURL + "/v1/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{status: resp.StatusCode, body: string(respBody)}
	}

	out := new(senseVoiceResponse)
	if err := json.Unmarshal(respBody, out); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if out.Confidence == 0 {
		out.Confidence = 0.95
	}

	return out, nil
}

func (p *SenseVoiceProvider) buildMultipart(req *Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", req.SegmentId+".wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := fileWriter.Write(req.AudioData); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"model":       p.app.Model.Name,
		"segment_id":  req.SegmentId,
		"task_id":     req.TaskId,
		"sample_rate": fmt.Sprintf("%d", req.SampleRate),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.status, e.body)
}

// isRetryableError reports whether another attempt could succeed:
// connection failures, timeouts, 5xx answers and rate limiting.
func isRetryableError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500 || statusErr.status == http.StatusTooManyRequests
	}

	msg := err.Error()
	for _, pattern := range []string{"connection refused", "connection reset", "timeout", "EOF", "no such host"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
