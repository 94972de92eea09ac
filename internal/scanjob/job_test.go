package scanjob

import (
	"testing"
)

func TestJobLifecycle(t *testing.T) {
	job := New("drive-a", TypeScan)

	if got := job.Status(); got != StatusQueued {
		t.Fatalf("new job status = %s, want %s", got, StatusQueued)
	}
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := job.Status(); got != StatusRunning {
		t.Fatalf("status after Start = %s, want %s", got, StatusRunning)
	}
	if err := job.Start(); err == nil {
		t.Fatal("second Start should fail")
	}
	if err := job.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := job.Complete(); err == nil {
		t.Fatal("Complete on terminal job should fail")
	}

	snapshot := job.Snapshot()
	if snapshot.StartedAt == nil || snapshot.FinishedAt == nil {
		t.Fatal("terminal snapshot missing timestamps")
	}
	if !snapshot.Terminal() {
		t.Fatal("completed snapshot should be terminal")
	}
}

func TestTerminalTransitionsRequireRunning(t *testing.T) {
	for _, finish := range []struct {
		name string
		call func(*Job) error
	}{
		{"cancel", (*Job).Cancel},
		{"complete", (*Job).Complete},
		{"fail", func(j *Job) error { return j.Fail("boom") }},
	} {
		t.Run(finish.name, func(t *testing.T) {
			job := New("drive-a", TypeScan)
			if err := finish.call(job); err == nil {
				t.Fatalf("%s on queued job should fail", finish.name)
			}
		})
	}
}

func TestCountersAreMonotonic(t *testing.T) {
	job := New("drive-a", TypeScan)
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job.ReportProgress("a", 5, 100)
	job.ReportProgress("b", 3, 40) // stale, must not regress

	snapshot := job.Snapshot()
	if snapshot.ProcessedItems != 5 || snapshot.ProcessedBytes != 100 {
		t.Fatalf("counters regressed: items=%d bytes=%d", snapshot.ProcessedItems, snapshot.ProcessedBytes)
	}
	if snapshot.CurrentItem != "b" {
		t.Fatalf("current item = %q, want %q", snapshot.CurrentItem, "b")
	}
}

func TestSetPhaseNeverShrinksTotals(t *testing.T) {
	job := New("drive-a", TypeScan)
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job.SetPhase("scanning", 10, 1000)
	job.SetPhase("deduplicating", 4, 200)

	snapshot := job.Snapshot()
	if snapshot.Phase != "deduplicating" {
		t.Fatalf("phase = %q, want deduplicating", snapshot.Phase)
	}
	if snapshot.TotalItems != 10 || snapshot.TotalBytes != 1000 {
		t.Fatalf("totals shrank: items=%d bytes=%d", snapshot.TotalItems, snapshot.TotalBytes)
	}
}

func TestReportsIgnoredAfterTerminal(t *testing.T) {
	job := New("drive-a", TypeScan)
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job.ReportProgress("a", 1, 10)
	if err := job.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	job.ReportProgress("b", 2, 20)
	job.ReportSkipped()
	job.ReportError("b", "late")

	snapshot := job.Snapshot()
	if snapshot.ProcessedItems != 1 || snapshot.SkippedItems != 0 || snapshot.ErrorItems != 0 {
		t.Fatalf("terminal job accepted updates: %+v", snapshot)
	}
}

func TestSinksReceiveOrderedSnapshots(t *testing.T) {
	var seen []Status
	sink := SinkFunc(func(s Snapshot) { seen = append(seen, s.Status) })

	job := New("drive-a", TypeScan, sink)
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job.ReportProgress("a", 1, 1)
	if err := job.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if len(seen) < 3 {
		t.Fatalf("expected at least 3 snapshots, got %d", len(seen))
	}
	if seen[0] != StatusRunning {
		t.Fatalf("first snapshot status = %s, want %s", seen[0], StatusRunning)
	}
	if last := seen[len(seen)-1]; last != StatusCompleted {
		t.Fatalf("last snapshot status = %s, want %s", last, StatusCompleted)
	}
}

func TestRecordMirrorsSnapshot(t *testing.T) {
	job := New("drive-a", TypeScan)
	if err := job.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job.SetPhase("scanning", 3, 30)
	job.ReportProgress("a", 2, 20)
	job.ReportSkipped()
	if err := job.Fail("volume vanished"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	record := job.Record()
	if record.ID != job.ID() || record.DriveID != "drive-a" {
		t.Fatalf("record identity mismatch: %+v", record)
	}
	if record.Status != string(StatusFailed) || record.ErrorMessage != "volume vanished" {
		t.Fatalf("record status = %s/%q", record.Status, record.ErrorMessage)
	}
	if record.TotalItems != 3 || record.ProcessedItems != 2 || record.SkippedItems != 1 {
		t.Fatalf("record counters mismatch: %+v", record)
	}
	if record.StartedAt == nil || record.FinishedAt == nil {
		t.Fatal("record missing timestamps")
	}
}
