package config

import "time"

const (
	TaskStatusUploading  = "uploading"
	TaskStatusUploaded   = "uploaded"
	TaskStatusSlicing    = "slicing"
	TaskStatusReady      = "ready"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"

	SegmentStatusCreated    = "created"
	SegmentStatusQueued     = "queued"
	SegmentStatusProcessing = "processing"
	SegmentStatusCompleted  = "completed"
	SegmentStatusFailed     = "failed"

	// completed tasks older than this are removed by the janitor
	TaskRetention = 24 * time.Hour

	// how long dispatched segment results stay available after completion
	DispatchedResultRetention = time.Hour
)
