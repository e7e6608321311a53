// Package events defines what a running batch reports to its caller and the
// queue those reports travel through.
//
// Log events carry a key and typed arguments; turning them into text is left
// to the consumer.
package events

import "time"

// Log event keys.
const (
	KeyJobStarted    = "job.started"
	KeyCubeLoaded    = "cube.loaded"
	KeyCubeStretched = "cube.stretched"
	KeyFrameSaved    = "frame.saved"
	KeyPreviewSaved  = "preview.saved"
	KeyVideoSaved    = "video.saved"
	KeyFramesDeleted = "frames.deleted"
	KeyJobFailed     = "job.failed"
)

// Event is one of LogEvent, JobOutcome or BatchSummary.
type Event interface {
	isEvent()
}

// Args holds the structured arguments of a LogEvent.
type Args map[string]any

// LogEvent reports one step of one job.
type LogEvent struct {
	Key  string
	File string
	Args Args
	At   time.Time
}

// ErrorDetail describes why a job failed.
type ErrorDetail struct {
	Kind    string
	Step    string
	Message string
	Stack   string // set only for recovered panics
}

// JobOutcome is emitted exactly once per submitted input.
type JobOutcome struct {
	File     string
	Success  bool
	Error    *ErrorDetail
	Frames   int
	Video    string
	Duration time.Duration
}

// BatchSummary is the last event of a batch.
type BatchSummary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

func (LogEvent) isEvent()     {}
func (JobOutcome) isEvent()   {}
func (BatchSummary) isEvent() {}

// NewLog builds a LogEvent stamped with the current time.
func NewLog(key, file string, args Args) LogEvent {
	return LogEvent{Key: key, File: file, Args: args, At: time.Now()}
}
