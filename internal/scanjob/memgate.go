package scanjob

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"romdex/internal/logging"
)

// memoryGate pauses unit admission while heap usage sits above a high
// watermark and resumes once it falls back under the low watermark. The
// hysteresis band prevents flapping when usage hovers near one threshold.
type memoryGate struct {
	highBytes uint64
	lowBytes  uint64
	paused    atomic.Bool
	logger    *slog.Logger

	sample func() uint64
}

const (
	gateSampleInterval = 250 * time.Millisecond
	gatePollInterval   = 50 * time.Millisecond
)

func newMemoryGate(highMiB, lowMiB int, logger *slog.Logger) *memoryGate {
	return &memoryGate{
		highBytes: uint64(highMiB) << 20,
		lowBytes:  uint64(lowMiB) << 20,
		logger:    logging.WithComponent(logger, "memgate"),
		sample:    heapInUse,
	}
}

func heapInUse() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// enabled reports whether watermarks were configured.
func (g *memoryGate) enabled() bool {
	return g != nil && g.highBytes > 0
}

// run samples heap usage until the context ends.
func (g *memoryGate) run(ctx context.Context) {
	ticker := time.NewTicker(gateSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.observe(g.sample())
		}
	}
}

func (g *memoryGate) observe(used uint64) {
	if g.paused.Load() {
		if used <= g.lowBytes {
			g.paused.Store(false)
			g.logger.Info("resuming admission", logging.Uint64("heap_bytes", used))
		}
		return
	}
	if used >= g.highBytes {
		g.paused.Store(true)
		g.logger.Warn("pausing admission", logging.Uint64("heap_bytes", used))
	}
}

// wait blocks while the gate is paused. Returns the context error if the
// context ends first.
func (g *memoryGate) wait(ctx context.Context) error {
	if !g.enabled() || !g.paused.Load() {
		return ctx.Err()
	}
	ticker := time.NewTicker(gatePollInterval)
	defer ticker.Stop()

	for g.paused.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return ctx.Err()
}
