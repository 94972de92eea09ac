package scanjob

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"romdex/internal/romstore"
)

// Type labels what a job does.
type Type string

const (
	// TypeScan discovers, hashes, and verifies files under the drive roots.
	TypeScan Type = "scan"
	// TypeVerify re-matches already hashed records against a catalog
	// without touching file content.
	TypeVerify Type = "verify"
)

// Status is the lifecycle state of a job. Terminal states are final.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no transition leaves the status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Job is the orchestration state of one scan: status, phase, counters, and
// timestamps. All mutation goes through its methods, which serialize
// updates and emit snapshots to the attached sinks in order.
type Job struct {
	mu sync.Mutex

	id      string
	driveID string
	jobType Type

	status       Status
	phase        string
	currentItem  string
	errorMessage string

	totalItems     int64
	processedItems int64
	skippedItems   int64
	errorItems     int64
	totalBytes     int64
	processedBytes int64

	createdAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time

	sinks []Sink
}

// New creates a queued job for a drive.
func New(driveID string, jobType Type, sinks ...Sink) *Job {
	return &Job{
		id:        uuid.NewString(),
		driveID:   driveID,
		jobType:   jobType,
		status:    StatusQueued,
		createdAt: time.Now().UTC(),
		sinks:     sinks,
	}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Start transitions Queued to Running and records the start timestamp.
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != StatusQueued {
		return fmt.Errorf("start: job is %s, not %s", j.status, StatusQueued)
	}
	now := time.Now().UTC()
	j.status = StatusRunning
	j.startedAt = &now
	j.emitLocked()
	return nil
}

// SetPhase updates the current phase name and its scope totals. Callable
// multiple times as the job moves between discovery, hashing, and
// verification. Totals only ever grow.
func (j *Job) SetPhase(name string, totalItems, totalBytes int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() {
		return
	}
	j.phase = name
	if totalItems > j.totalItems {
		j.totalItems = totalItems
	}
	if totalBytes > j.totalBytes {
		j.totalBytes = totalBytes
	}
	j.emitLocked()
}

// AddDiscovered grows the job scope as enumeration finds more work.
func (j *Job) AddDiscovered(items, bytes int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.IsTerminal() {
		return
	}
	j.totalItems += items
	j.totalBytes += bytes
}

// ReportProgress records absolute progress counters. Counters are
// monotonically non-decreasing: stale values are clamped, never applied.
func (j *Job) ReportProgress(currentItem string, processedItems, processedBytes int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != StatusRunning {
		return
	}
	j.currentItem = currentItem
	if processedItems > j.processedItems {
		j.processedItems = processedItems
	}
	if processedBytes > j.processedBytes {
		j.processedBytes = processedBytes
	}
	j.emitLocked()
}

// ReportSkipped counts one incrementally skipped item.
func (j *Job) ReportSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != StatusRunning {
		return
	}
	j.skippedItems++
}

// ReportError counts one per-item failure without altering job status.
func (j *Job) ReportError(item, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != StatusRunning {
		return
	}
	j.errorItems++
	j.currentItem = item
	j.errorMessage = message
	j.emitLocked()
}

// Complete transitions Running to Completed.
func (j *Job) Complete() error {
	return j.finish(StatusCompleted, "")
}

// Fail transitions Running to Failed with a captured message.
func (j *Job) Fail(message string) error {
	return j.finish(StatusFailed, message)
}

// Cancel transitions Running to Cancelled.
func (j *Job) Cancel() error {
	return j.finish(StatusCancelled, "")
}

func (j *Job) finish(status Status, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != StatusRunning {
		return fmt.Errorf("finish: job is %s, not %s", j.status, StatusRunning)
	}
	now := time.Now().UTC()
	j.status = status
	j.errorMessage = message
	j.finishedAt = &now
	j.currentItem = ""
	j.emitLocked()
	return nil
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Snapshot returns a copy of the observable job state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshotLocked()
}

func (j *Job) snapshotLocked() Snapshot {
	return Snapshot{
		ID:             j.id,
		DriveID:        j.driveID,
		Type:           j.jobType,
		Status:         j.status,
		Phase:          j.phase,
		CurrentItem:    j.currentItem,
		ErrorMessage:   j.errorMessage,
		TotalItems:     j.totalItems,
		ProcessedItems: j.processedItems,
		SkippedItems:   j.skippedItems,
		ErrorItems:     j.errorItems,
		TotalBytes:     j.totalBytes,
		ProcessedBytes: j.processedBytes,
		CreatedAt:      j.createdAt,
		StartedAt:      j.startedAt,
		FinishedAt:     j.finishedAt,
	}
}

func (j *Job) emitLocked() {
	if len(j.sinks) == 0 {
		return
	}
	snapshot := j.snapshotLocked()
	for _, sink := range j.sinks {
		sink.JobUpdated(snapshot)
	}
}

// Record converts the job into its persisted form.
func (j *Job) Record() *romstore.JobRecord {
	snapshot := j.Snapshot()
	return &romstore.JobRecord{
		ID:             snapshot.ID,
		DriveID:        snapshot.DriveID,
		Type:           string(snapshot.Type),
		Status:         string(snapshot.Status),
		Phase:          snapshot.Phase,
		TotalItems:     snapshot.TotalItems,
		ProcessedItems: snapshot.ProcessedItems,
		SkippedItems:   snapshot.SkippedItems,
		ErrorItems:     snapshot.ErrorItems,
		TotalBytes:     snapshot.TotalBytes,
		ProcessedBytes: snapshot.ProcessedBytes,
		ErrorMessage:   snapshot.ErrorMessage,
		CreatedAt:      snapshot.CreatedAt,
		StartedAt:      snapshot.StartedAt,
		FinishedAt:     snapshot.FinishedAt,
	}
}
