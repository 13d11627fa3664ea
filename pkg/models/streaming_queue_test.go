package models

import (
	"testing"
	"time"
)

func TestSegmentQueuePriorityOrdering(t *testing.T) {
	q := newSegmentQueue(10)

	add := func(id string, priority int) {
		err := q.Add(&queuedSegment{SegmentId: id, Priority: priority}, 10)
		if err != nil {
			t.Fatalf("unexpected error adding %s: %v", id, err)
		}
	}

	add("normal-1", 1)
	add("normal-2", 1)
	add("first-1", 10)

	batch := q.PopBatch(3, 0)
	if len(batch) != 3 {
		t.Fatalf("expected 3 items, got %d", len(batch))
	}
	if batch[0].SegmentId != "first-1" {
		t.Errorf("expected first-1 first, got %s", batch[0].SegmentId)
	}
	if batch[1].SegmentId != "normal-1" || batch[2].SegmentId != "normal-2" {
		t.Errorf("normal segments out of order: %s, %s", batch[1].SegmentId, batch[2].SegmentId)
	}
}

func TestSegmentQueueRejectsWhenFull(t *testing.T) {
	q := newSegmentQueue(2)

	for i := 0; i < 2; i++ {
		if err := q.Add(&queuedSegment{SegmentId: "s"}, 10); err != nil {
			t.Fatal(err)
		}
	}

	if err := q.Add(&queuedSegment{SegmentId: "overflow"}, 10); err == nil {
		t.Error("expected rejection when queue is full")
	}

	stats := q.Stats()
	if stats.Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", stats.Rejected)
	}
}

func TestSegmentQueueWaitsForFullBatch(t *testing.T) {
	q := newSegmentQueue(10)
	if err := q.Add(&queuedSegment{SegmentId: "s1"}, 10); err != nil {
		t.Fatal(err)
	}

	if batch := q.PopBatch(4, time.Hour); batch != nil {
		t.Errorf("expected no batch while under size and within wait, got %d items", len(batch))
	}

	// once the oldest item has waited long enough a partial batch is cut
	time.Sleep(5 * time.Millisecond)
	batch := q.PopBatch(4, time.Millisecond)
	if len(batch) != 1 {
		t.Errorf("expected partial batch of 1, got %d", len(batch))
	}
}

func TestSegmentQueueClear(t *testing.T) {
	q := newSegmentQueue(10)
	_ = q.Add(&queuedSegment{SegmentId: "a", Priority: 10}, 10)
	_ = q.Add(&queuedSegment{SegmentId: "b", Priority: 1}, 10)

	q.Clear()
	first, normal := q.Sizes()
	if first != 0 || normal != 0 {
		t.Errorf("expected empty queue after clear, got %d/%d", first, normal)
	}
}
