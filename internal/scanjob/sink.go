package scanjob

import (
	"log/slog"
	"time"

	"romdex/internal/logging"
)

// Snapshot is a point-in-time copy of a job's observable state. Sinks
// receive snapshots, never the live job.
type Snapshot struct {
	ID           string
	DriveID      string
	Type         Type
	Status       Status
	Phase        string
	CurrentItem  string
	ErrorMessage string

	TotalItems     int64
	ProcessedItems int64
	SkippedItems   int64
	ErrorItems     int64
	TotalBytes     int64
	ProcessedBytes int64

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Terminal reports whether the snapshot captured a finished job.
func (s Snapshot) Terminal() bool { return s.Status.IsTerminal() }

// Sink observes job updates. Calls arrive in order for a given job and
// must return quickly; a slow sink stalls the pipeline.
type Sink interface {
	JobUpdated(snapshot Snapshot)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Snapshot)

// JobUpdated implements Sink.
func (f SinkFunc) JobUpdated(snapshot Snapshot) { f(snapshot) }

// LogSink writes coarse job transitions to the log. Progress ticks are
// suppressed; only phase changes and terminal states are logged.
type LogSink struct {
	logger *slog.Logger

	lastPhase  string
	lastStatus Status
}

// NewLogSink creates a sink that logs to the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.WithComponent(logger, "scanjob")}
}

// JobUpdated implements Sink.
func (s *LogSink) JobUpdated(snapshot Snapshot) {
	if snapshot.Status == s.lastStatus && snapshot.Phase == s.lastPhase {
		return
	}
	s.lastStatus = snapshot.Status
	s.lastPhase = snapshot.Phase

	attrs := []any{
		logging.String("job_id", snapshot.ID),
		logging.String("drive", snapshot.DriveID),
		logging.String("status", string(snapshot.Status)),
	}
	if snapshot.Phase != "" {
		attrs = append(attrs, logging.String("phase", snapshot.Phase))
	}
	if snapshot.Terminal() {
		attrs = append(attrs,
			logging.Int64("processed", snapshot.ProcessedItems),
			logging.Int64("skipped", snapshot.SkippedItems),
			logging.Int64("errors", snapshot.ErrorItems),
		)
		if snapshot.ErrorMessage != "" {
			attrs = append(attrs, logging.String("error", snapshot.ErrorMessage))
		}
	}
	s.logger.Info("job update", attrs...)
}
