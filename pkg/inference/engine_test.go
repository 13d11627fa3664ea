package inference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
)

type flakyProvider struct {
	failFor string
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Transcribe(_ context.Context, req *Request) (*Result, error) {
	if req.SegmentId == f.failFor {
		return nil, errors.New("backend unavailable")
	}
	return &Result{Success: true, Text: "text for " + req.SegmentId, Confidence: 0.9}, nil
}

func testEngineConfig() *config.AppConfig {
	return &config.AppConfig{
		Streaming: config.StreamingSettings{
			BatchSize:          4,
			GPUMemoryThreshold: 0.9,
		},
	}
}

func TestProcessBatchKeepsOrderAndErrors(t *testing.T) {
	engine := NewEngine(testEngineConfig(), &flakyProvider{failFor: "seg-1"}, logrus.New())

	requests := []*Request{
		{SegmentId: "seg-0"},
		{SegmentId: "seg-1"},
		{SegmentId: "seg-2"},
	}

	results := engine.ProcessBatch(context.Background(), requests)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if !results[0].Success || !strings.Contains(results[0].Text, "seg-0") {
		t.Errorf("unexpected result for seg-0: %+v", results[0])
	}
	if results[1].Success || results[1].Error == "" {
		t.Errorf("seg-1 should have failed with an error: %+v", results[1])
	}
	if !results[2].Success || !strings.Contains(results[2].Text, "seg-2") {
		t.Errorf("unexpected result for seg-2: %+v", results[2])
	}

	report := engine.Report()
	if report.BatchesProcessed != 1 {
		t.Errorf("expected 1 batch processed, got %d", report.BatchesProcessed)
	}
	if report.SegmentsProcessed != 3 {
		t.Errorf("expected 3 segments processed, got %d", report.SegmentsProcessed)
	}
	if report.SegmentsFailed != 1 {
		t.Errorf("expected 1 failed segment, got %d", report.SegmentsFailed)
	}
}

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider(logrus.New())

	res, err := p.Transcribe(context.Background(), &Request{SegmentId: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Error("mock result should succeed")
	}
	if res.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %f", res.Confidence)
	}
	if !strings.Contains(res.Text, "abc") {
		t.Errorf("mock text should mention the segment id: %q", res.Text)
	}
}

func TestNewProviderFallsBackToMock(t *testing.T) {
	app := &config.AppConfig{
		Inference: config.InferenceInfo{Provider: "sensevoice"},
	}
	// empty model name forces the mock backend
	p, err := NewProvider(app, logrus.New())
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "mock" {
		t.Errorf("expected mock provider, got %s", p.Name())
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{&httpStatusError{status: 503}, true},
		{&httpStatusError{status: 429}, true},
		{&httpStatusError{status: 400}, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("invalid request payload"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.retryable {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}
