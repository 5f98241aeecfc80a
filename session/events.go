package session

import (
	"time"

	"github.com/SaiNageswarS/heywrite/lifecycle"
)

type Stage string

const (
	StageStarted      Stage = "started"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
	StageRejected     Stage = "rejected"
	StageStateChanged Stage = "state_changed"
)

// Event is a progress notification for whatever presents the session.
type Event struct {
	Op        string
	Stage     Stage
	From      lifecycle.State
	To        lifecycle.State
	Message   string
	Timestamp int64
}

// Reporter receives session events. Send is called synchronously from the
// operation that produced the event and must not block on session calls.
type Reporter interface {
	Send(event *Event) error
}

// NoOpReporter implements Reporter with no-op operations
type NoOpReporter struct{}

func (r *NoOpReporter) Send(event *Event) error {
	return nil
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(event *Event) error

func (f ReporterFunc) Send(event *Event) error {
	return f(event)
}

func NewProgressUpdate(op string, stage Stage, message string) *Event {
	return &Event{
		Op:        op,
		Stage:     stage,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

func NewStateChange(from, to lifecycle.State) *Event {
	return &Event{
		Stage:     StageStateChanged,
		From:      from,
		To:        to,
		Message:   from.String() + " -> " + to.String(),
		Timestamp: time.Now().UnixMilli(),
	}
}

func NewFailure(op string, err error) *Event {
	return NewProgressUpdate(op, StageFailed, err.Error())
}
