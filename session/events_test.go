package session

import (
	"errors"
	"testing"
	"time"

	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestNoOpReporter(t *testing.T) {
	reporter := &NoOpReporter{}

	for i := 0; i < 10; i++ {
		assert.NoError(t, reporter.Send(&Event{}))
	}
}

func TestNewProgressUpdate(t *testing.T) {
	event := NewProgressUpdate("uploading", StageCompleted, "a.pdf: 3 chunks")

	assert.Equal(t, "uploading", event.Op)
	assert.Equal(t, StageCompleted, event.Stage)
	assert.Equal(t, "a.pdf: 3 chunks", event.Message)

	now := time.Now().UnixMilli()
	assert.True(t, event.Timestamp <= now)
	assert.True(t, event.Timestamp > now-60000)
}

func TestNewStateChange(t *testing.T) {
	event := NewStateChange(lifecycle.Idle, lifecycle.Summarizing)

	assert.Equal(t, StageStateChanged, event.Stage)
	assert.Equal(t, lifecycle.Idle, event.From)
	assert.Equal(t, lifecycle.Summarizing, event.To)
	assert.Equal(t, "idle -> summarizing", event.Message)
}

func TestNewFailure(t *testing.T) {
	event := NewFailure("generating", errors.New("Server returned 502: bad gateway"))

	assert.Equal(t, StageFailed, event.Stage)
	assert.Equal(t, "Server returned 502: bad gateway", event.Message)
}

func TestReporterFunc(t *testing.T) {
	var got *Event
	reporter := ReporterFunc(func(e *Event) error {
		got = e
		return nil
	})

	event := &Event{Op: "x"}
	assert.NoError(t, reporter.Send(event))
	assert.Same(t, event, got)
}
