package inference

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MockProvider produces deterministic transcriptions without a model
// behind it. It is selected automatically when no model name is
// configured, which keeps the whole pipeline runnable in development
// and in tests.
type MockProvider struct {
	counter atomic.Int64
	logger  *logrus.Entry
}

func NewMockProvider(logger *logrus.Logger) *MockProvider {
	return &MockProvider{
		logger: logger.WithField("provider", "mock"),
	}
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	// simulate a short inference latency
	select {
	case <-time.After(10 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	n := p.counter.Add(1)
	return &Result{
		Success:        true,
		Text:           fmt.Sprintf("mock transcription %d for segment %s", n, req.SegmentId),
		Confidence:     0.95,
		ProcessingTime: 0.01,
	}, nil
}
