package scanjob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"romdex/internal/catalog"
	"romdex/internal/config"
	"romdex/internal/dedupe"
	"romdex/internal/fingerprint"
	"romdex/internal/logging"
	"romdex/internal/romstore"
	"romdex/internal/scanner"
	"romdex/internal/verify"
)

// Persistence is the slice of the collection store the pipeline depends on.
// *romstore.Store satisfies it.
type Persistence interface {
	SaveBatch(ctx context.Context, records []*romstore.RomRecord) error
	LoadExisting(ctx context.Context, driveID string) ([]*romstore.RomRecord, error)
	DeleteMissing(ctx context.Context, driveID string, present map[string]struct{}) (int64, error)
	SaveJob(ctx context.Context, job *romstore.JobRecord) error
}

// Pipeline runs scan jobs: enumerate, hash, match, persist. One enumerator
// goroutine feeds a bounded channel; a fixed pool of workers drains it; a
// single flusher batches writes to the store.
type Pipeline struct {
	cfg    *config.Config
	store  Persistence
	index  *catalog.Index
	opener scanner.StreamOpener
	gate   *memoryGate
	logger *slog.Logger
}

// NewPipeline assembles a pipeline over the given store and catalog index.
// The index may be nil, in which case every hashed unit matches as
// not-in-dat.
func NewPipeline(cfg *config.Config, store Persistence, index *catalog.Index, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	var gate *memoryGate
	if cfg.Scan.MemoryHighWatermarkMiB > 0 {
		gate = newMemoryGate(cfg.Scan.MemoryHighWatermarkMiB, cfg.Scan.MemoryLowWatermarkMiB, logger)
	}
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		index:  index,
		opener: scanner.NewOpener(),
		gate:   gate,
		logger: logging.WithComponent(logger, "pipeline"),
	}
}

// RunOptions select what a single pipeline run covers.
type RunOptions struct {
	// DriveID identifies the collection volume owning the records.
	DriveID string
	// Scope restricts the scan to relative sub-paths of each root. Empty
	// means a full scan, which also retires records whose backing files
	// are gone.
	Scope []string
	// Sinks receive job progress snapshots.
	Sinks []Sink
}

// progress serializes the absolute counters reported to the job.
type progress struct {
	items atomic.Int64
	bytes atomic.Int64
}

func (pr *progress) advance(job *Job, currentItem string, size int64) {
	items := pr.items.Add(1)
	bytes := pr.bytes.Add(size)
	job.ReportProgress(currentItem, items, bytes)
}

// Run executes a scan job to a terminal state. Cancellation via ctx is a
// normal outcome: the job ends Cancelled with all completed results kept,
// and Run returns the job with a nil error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Job, error) {
	job := New(opts.DriveID, TypeScan, append([]Sink{NewLogSink(p.logger)}, opts.Sinks...)...)
	p.saveJob(ctx, job)

	if err := job.Start(); err != nil {
		return job, err
	}
	job.SetPhase("scanning", 0, 0)
	p.saveJob(ctx, job)

	existing, err := p.store.LoadExisting(ctx, opts.DriveID)
	if err != nil {
		return p.finish(ctx, job, fmt.Errorf("load existing records: %w", err))
	}
	byPath := make(map[string]*romstore.RomRecord, len(existing))
	for _, record := range existing {
		byPath[record.Path] = record
	}

	if p.gate.enabled() {
		gateCtx, stopGate := context.WithCancel(ctx)
		defer stopGate()
		go p.gate.run(gateCtx)
	}

	workers := max(p.cfg.Scan.Workers, 1)
	var (
		prog    progress
		seen    sync.Map
		errored []string
		units   = make(chan scanner.FileUnit, max(p.cfg.Scan.QueueDepth, 1))
		results = make(chan *romstore.RomRecord, max(p.cfg.Scan.BatchSize, 1))
	)

	// A flush failure must also stop the producers, or workers would block
	// forever on a channel nobody drains.
	runCtx, cancelRun := context.WithCancelCause(ctx)
	defer cancelRun(nil)
	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		defer close(units)
		scanOpts := scanner.Options{
			Scope:               opts.Scope,
			SkipHidden:          p.cfg.Scan.SkipHidden,
			IncludeArchiveFiles: p.cfg.Scan.IncludeArchiveFiles,
		}
		for item := range scanner.Enumerate(p.cfg.Paths.Roots, scanOpts) {
			if err := p.gate.wait(groupCtx); err != nil {
				return err
			}
			if item.Err != nil {
				job.AddDiscovered(1, 0)
				job.ReportError(item.Path, item.Err.Error())
				prog.advance(job, item.Path, 0)
				if item.Path != "" {
					errored = append(errored, item.Path)
				}
				p.logger.Warn("enumeration error", logging.Error(item.Err))
				if err := p.probeRoots(); err != nil {
					return err
				}
				continue
			}
			job.AddDiscovered(1, item.Unit.Size)
			seen.Store(item.Unit.Path, struct{}{})
			select {
			case units <- item.Unit:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}
		return nil
	})

	for range workers {
		group.Go(func() error {
			for unit := range units {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				record, err := p.processUnit(job, &prog, byPath, opts.DriveID, unit)
				if err != nil {
					return err
				}
				if record == nil {
					continue
				}
				// Plain send: the flusher reads until the channel closes,
				// so a completed hash is persisted even during shutdown.
				results <- record
			}
			return nil
		})
	}

	flushDone := make(chan error, 1)
	go func() {
		err := p.persistLoop(ctx, job, results)
		if err != nil {
			// Stop the producers, then keep draining so blocked workers
			// can exit. The discarded records are lost with the job.
			cancelRun(err)
			for range results {
			}
		}
		flushDone <- err
	}()

	runErr := group.Wait()
	close(results)
	if flushErr := <-flushDone; flushErr != nil {
		runErr = flushErr
	}

	if runErr == nil && len(opts.Scope) == 0 {
		runErr = p.retireMissing(ctx, opts.DriveID, &seen, errored, existing)
	}
	if runErr == nil {
		runErr = p.resolveDuplicates(ctx, job, opts.DriveID)
	}
	return p.finish(ctx, job, runErr)
}

// processUnit produces the record for one unit, or nil when nothing new
// needs persisting. A non-nil error is fatal to the whole job.
func (p *Pipeline) processUnit(job *Job, prog *progress, byPath map[string]*romstore.RomRecord, driveID string, unit scanner.FileUnit) (*romstore.RomRecord, error) {
	now := time.Now().UTC()

	if prior, ok := byPath[unit.Path]; ok && prior.Hashed() && prior.Unchanged(unit) {
		// Unchanged file: reuse the stored fingerprint, re-match only.
		p.applyMatch(prior, unit.DeclaredName())
		prior.ScannedAt = now
		job.ReportSkipped()
		prog.advance(job, unit.Path, unit.Size)
		return prior, nil
	}

	record := romstore.NewRecord(driveID, unit, now)

	stream, err := p.opener.Open(unit)
	if err != nil {
		return p.unitFailed(job, prog, record, err)
	}
	fp, err := fingerprint.Compute(stream)
	closeErr := stream.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return p.unitFailed(job, prog, record, fmt.Errorf("hash %s: %w", unit.Path, err))
	}

	hashedAt := time.Now().UTC()
	record.Fingerprint = &fp
	record.HashedAt = &hashedAt
	p.applyMatch(record, unit.DeclaredName())
	prog.advance(job, unit.Path, unit.Size)
	return record, nil
}

// unitFailed records a per-unit failure. The unhashed record is still
// persisted so reports show the unreadable file; the scan continues unless
// the whole volume has vanished.
func (p *Pipeline) unitFailed(job *Job, prog *progress, record *romstore.RomRecord, cause error) (*romstore.RomRecord, error) {
	job.ReportError(record.Path, cause.Error())
	prog.advance(job, record.Path, record.Size)
	p.logger.Warn("unit failed", logging.String("path", record.Path), logging.Error(cause))
	if err := p.probeRoots(); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Pipeline) applyMatch(record *romstore.RomRecord, declaredName string) {
	if record.Fingerprint == nil {
		record.Status = verify.StatusUnknown
		return
	}
	if p.index == nil {
		record.Status = verify.StatusNotInDat
		record.MatchedTitle = ""
		record.MatchedName = ""
		return
	}
	status, entry := verify.Match(p.index, *record.Fingerprint, declaredName)
	record.Status = status
	if entry != nil {
		record.MatchedTitle = entry.Title
		record.MatchedName = entry.Name
	} else {
		record.MatchedTitle = ""
		record.MatchedName = ""
	}
}

// persistLoop batches records and flushes on size or interval, whichever is
// crossed first. It drains the channel to completion even after ctx is
// cancelled so that finished work is never dropped.
func (p *Pipeline) persistLoop(ctx context.Context, job *Job, results <-chan *romstore.RomRecord) error {
	interval := time.Duration(p.cfg.Scan.BatchIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	batchSize := max(p.cfg.Scan.BatchSize, 1)
	flushCtx := context.WithoutCancel(ctx)
	batch := make([]*romstore.RomRecord, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.store.SaveBatch(flushCtx, batch); err != nil {
			if probeErr := romstore.CheckVolume(p.cfg.Paths.DataDir); probeErr != nil {
				return probeErr
			}
			return fmt.Errorf("persist batch: %w", err)
		}
		batch = batch[:0]
		p.saveJob(flushCtx, job)
		return nil
	}

	for {
		select {
		case record, ok := <-results:
			if !ok {
				return flush()
			}
			batch = append(batch, record)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// retireMissing deletes records for paths a full scan no longer found.
// Records behind a path the enumerator errored on count as present: an
// unreadable directory or a corrupt container is not evidence the files
// behind it are gone.
func (p *Pipeline) retireMissing(ctx context.Context, driveID string, seen *sync.Map, errored []string, existing []*romstore.RomRecord) error {
	present := make(map[string]struct{})
	seen.Range(func(key, _ any) bool {
		present[key.(string)] = struct{}{}
		return true
	})
	for _, record := range existing {
		if behindErroredPath(record, errored) {
			present[record.Path] = struct{}{}
		}
	}
	removed, err := p.store.DeleteMissing(ctx, driveID, present)
	if err != nil {
		return fmt.Errorf("retire missing records: %w", err)
	}
	if removed > 0 {
		p.logger.Info("retired missing records", logging.Int64("count", removed))
	}
	return nil
}

// behindErroredPath reports whether the record's backing file sits at or
// under one of the paths enumeration failed on, directly or via its
// container.
func behindErroredPath(record *romstore.RomRecord, errored []string) bool {
	for _, path := range errored {
		if record.Path == path || record.ArchivePath == path {
			return true
		}
		if strings.HasPrefix(record.Path, path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// resolveDuplicates re-groups the full collection by fingerprint and marks
// redundant copies.
func (p *Pipeline) resolveDuplicates(ctx context.Context, job *Job, driveID string) error {
	job.SetPhase("deduplicating", 0, 0)

	records, err := p.store.LoadExisting(ctx, driveID)
	if err != nil {
		return fmt.Errorf("load records for dedupe: %w", err)
	}
	groups := dedupe.Detect(records)

	changed := make([]*romstore.RomRecord, 0)
	for _, group := range groups {
		changed = append(changed, group.Copies...)
	}
	if len(changed) == 0 {
		return nil
	}
	if err := p.store.SaveBatch(ctx, changed); err != nil {
		return fmt.Errorf("persist duplicate marks: %w", err)
	}
	return nil
}

// Rematch re-runs catalog matching over already hashed records without
// touching file content. Useful after importing a new catalog.
func (p *Pipeline) Rematch(ctx context.Context, opts RunOptions) (*Job, error) {
	job := New(opts.DriveID, TypeVerify, append([]Sink{NewLogSink(p.logger)}, opts.Sinks...)...)
	p.saveJob(ctx, job)

	if err := job.Start(); err != nil {
		return job, err
	}

	records, err := p.store.LoadExisting(ctx, opts.DriveID)
	if err != nil {
		return p.finish(ctx, job, fmt.Errorf("load existing records: %w", err))
	}
	job.SetPhase("verifying", int64(len(records)), 0)

	var prog progress
	changed := make([]*romstore.RomRecord, 0, len(records))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, job, err)
		}
		if !record.Hashed() {
			job.ReportSkipped()
			prog.advance(job, record.Path, 0)
			continue
		}
		before := record.Status
		p.applyMatch(record, record.Unit().DeclaredName())
		if record.Status != before {
			changed = append(changed, record)
		}
		prog.advance(job, record.Path, 0)
	}

	if len(changed) > 0 {
		if err := p.store.SaveBatch(ctx, changed); err != nil {
			return p.finish(ctx, job, fmt.Errorf("persist re-matched records: %w", err))
		}
	}
	if err := p.resolveDuplicates(ctx, job, opts.DriveID); err != nil {
		return p.finish(ctx, job, err)
	}
	return p.finish(ctx, job, nil)
}

// finish drives the job to its terminal state and persists the final row.
// Context cancellation maps to Cancelled, everything else to Failed.
func (p *Pipeline) finish(ctx context.Context, job *Job, runErr error) (*Job, error) {
	switch {
	case runErr == nil:
		_ = job.Complete()
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		_ = job.Cancel()
		runErr = nil
	default:
		_ = job.Fail(runErr.Error())
	}
	p.saveJob(context.WithoutCancel(ctx), job)
	return job, runErr
}

// probeRoots checks whether the scanned volumes are still mounted. A read
// error on one file is tolerable; a vanished volume fails the job.
func (p *Pipeline) probeRoots() error {
	for _, root := range p.cfg.Paths.Roots {
		if err := romstore.CheckVolume(root); err != nil {
			return fmt.Errorf("root %s: %w", root, err)
		}
	}
	return nil
}

func (p *Pipeline) saveJob(ctx context.Context, job *Job) {
	if err := p.store.SaveJob(ctx, job.Record()); err != nil {
		p.logger.Warn("persist job state", logging.String("job_id", job.ID()), logging.Error(err))
	}
}
