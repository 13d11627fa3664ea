package config

const (
	RequestedTaskNotExist    = "requested task does not exist"
	RequestedSegmentNotExist = "requested segment does not exist"
	TaskNotCompleted         = "task hasn't completed yet"
	TaskNotReady             = "task isn't ready for streaming yet"
	StreamingNotRunning      = "streaming pipeline isn't running"
	QueueIsFull              = "segment queue is full"
	UnsupportedAudioFormat   = "unsupported audio format"
	FileTooLarge             = "file exceeds the maximum allowed size"
	AudioTooLong             = "audio exceeds the maximum allowed duration"
	VerificationFailed       = "verification failed"
)
