package models

import (
	"testing"
	"time"
)

func testDispatcher() *resultDispatcher {
	return &resultDispatcher{
		results:      make(map[string]*DispatchedResult),
		firstResults: make(map[string]*DispatchedResult),
	}
}

func TestDispatcherStoreKeepsFirstSegmentResult(t *testing.T) {
	d := testDispatcher()

	d.store(&DispatchedResult{
		SegmentId:    "task1_segment_1",
		TaskId:       "task1",
		SegmentIndex: 1,
		Success:      true,
		Text:         "second part",
		DispatchedAt: time.Now(),
	})
	if d.GetFirstSegmentResult("task1") != nil {
		t.Error("a non-zero segment index must not become the first result")
	}

	d.store(&DispatchedResult{
		SegmentId:    "task1_segment_0",
		TaskId:       "task1",
		SegmentIndex: 0,
		Success:      true,
		Text:         "first part",
		DispatchedAt: time.Now(),
	})

	first := d.GetFirstSegmentResult("task1")
	if first == nil {
		t.Fatal("expected a first segment result")
	}
	if first.Text != "first part" {
		t.Errorf("expected the index 0 result, got %q", first.Text)
	}

	if got := d.GetSegmentResult("task1_segment_1"); got == nil || got.Text != "second part" {
		t.Errorf("segment lookup returned %+v", got)
	}
	if d.GetSegmentResult("missing") != nil {
		t.Error("unknown segment id should return nil")
	}
}

func TestDispatcherGetTaskResultsFiltersByTask(t *testing.T) {
	d := testDispatcher()
	d.store(&DispatchedResult{SegmentId: "a_segment_0", TaskId: "a", DispatchedAt: time.Now()})
	d.store(&DispatchedResult{SegmentId: "a_segment_1", TaskId: "a", SegmentIndex: 1, DispatchedAt: time.Now()})
	d.store(&DispatchedResult{SegmentId: "b_segment_0", TaskId: "b", DispatchedAt: time.Now()})

	if got := d.GetTaskResults("a"); len(got) != 2 {
		t.Errorf("expected 2 results for task a, got %d", len(got))
	}
	if got := d.GetTaskResults("c"); len(got) != 0 {
		t.Errorf("expected no results for unknown task, got %d", len(got))
	}
}

func TestDispatcherCleanupDropsOldResults(t *testing.T) {
	d := testDispatcher()
	old := time.Now().Add(-2 * time.Hour)
	d.store(&DispatchedResult{SegmentId: "old_segment_0", TaskId: "old", DispatchedAt: old})
	d.store(&DispatchedResult{SegmentId: "new_segment_0", TaskId: "new", DispatchedAt: time.Now()})

	removed := d.Cleanup(time.Hour)
	if removed != 1 {
		t.Fatalf("expected 1 removed result, got %d", removed)
	}
	if d.GetSegmentResult("old_segment_0") != nil {
		t.Error("aged result should be gone")
	}
	if d.GetFirstSegmentResult("old") != nil {
		t.Error("aged first result should be gone")
	}
	if d.GetSegmentResult("new_segment_0") == nil {
		t.Error("recent result should survive cleanup")
	}

	results, dispatched := d.Counts()
	if results != 1 {
		t.Errorf("expected 1 retained result, got %d", results)
	}
	if dispatched != 3 {
		t.Errorf("dispatched total should not shrink on cleanup, got %d", dispatched)
	}
}
