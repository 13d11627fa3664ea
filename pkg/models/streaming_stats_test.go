package models

import (
	"testing"
	"time"

	"github.com/sensestream/sensestream-server/pkg/inference"
	"github.com/sirupsen/logrus"
)

func TestBuildPerformanceRes(t *testing.T) {
	report := &inference.PerformanceReport{
		Provider:          "mock",
		BatchesProcessed:  7,
		SegmentsProcessed: 21,
	}
	mirror := map[string]string{
		"running":        "1",
		"total_enqueued": "21",
	}

	res := buildPerformanceRes(report, mirror, 3)
	if res.Engine == nil || res.Engine.Provider != "mock" {
		t.Errorf("engine report not carried over: %+v", res.Engine)
	}
	if res.TrackedTasks != 3 {
		t.Errorf("expected 3 tracked tasks, got %d", res.TrackedTasks)
	}
	if res.Scheduler["total_enqueued"] != "21" {
		t.Errorf("scheduler counters not carried over: %+v", res.Scheduler)
	}
}

func TestBuildPerformanceResEmptyMirror(t *testing.T) {
	res := buildPerformanceRes(&inference.PerformanceReport{Provider: "mock"}, nil, 0)
	if res.Scheduler != nil {
		t.Errorf("empty mirror should leave the scheduler section out, got %+v", res.Scheduler)
	}
}

func TestRunStateSnapshot(t *testing.T) {
	logger := logrus.New()
	m := &StreamingModel{
		engine: inference.NewEngine(nil, inference.NewMockProvider(logger), logger),
	}

	if running, _ := m.runState(); running {
		t.Error("fresh model should not be running")
	}

	started := time.Now()
	m.mu.Lock()
	m.running = true
	m.startedAt = started
	m.mu.Unlock()

	running, startedAt := m.runState()
	if !running {
		t.Error("expected running state")
	}
	if !startedAt.Equal(started) {
		t.Errorf("expected start time %v, got %v", started, startedAt)
	}

	if m.ProviderName() != "mock" {
		t.Errorf("expected mock provider, got %s", m.ProviderName())
	}
}
