package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"romdex/internal/logging"
	"romdex/internal/testsupport"
)

type triggered struct {
	root string
	subs []string
}

func runWatcher(t *testing.T, root string) (<-chan triggered, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hits := make(chan triggered, 8)

	w := New([]string{root}, 50*time.Millisecond, logging.NewNop())
	go func() {
		_ = w.Run(ctx, func(_ context.Context, root string, subs []string) {
			hits <- triggered{root: root, subs: subs}
		})
	}()
	// Give the watch registrations a moment to land before mutating.
	time.Sleep(100 * time.Millisecond)
	return hits, cancel
}

func waitHit(t *testing.T, hits <-chan triggered) triggered {
	t.Helper()
	select {
	case hit := <-hits:
		return hit
	case <-time.After(5 * time.Second):
		t.Fatal("no trigger before timeout")
		return triggered{}
	}
}

func TestWatcherTriggersOnWrite(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "nes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	hits, cancel := runWatcher(t, root)
	defer cancel()

	testsupport.WriteFile(t, root, filepath.Join("nes", "game.bin"), []byte("abc"))

	hit := waitHit(t, hits)
	if hit.root != root {
		t.Fatalf("trigger root = %q, want %q", hit.root, root)
	}
	if len(hit.subs) == 0 || hit.subs[0] != "nes" {
		t.Fatalf("trigger subs = %v, want [nes]", hit.subs)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	root := t.TempDir()

	hits, cancel := runWatcher(t, root)
	defer cancel()

	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		testsupport.WriteFile(t, root, name, []byte("abc"))
	}

	hit := waitHit(t, hits)
	if hit.root != root {
		t.Fatalf("trigger root = %q, want %q", hit.root, root)
	}
	if len(hit.subs) != 1 || hit.subs[0] != "." {
		t.Fatalf("trigger subs = %v, want [.]", hit.subs)
	}

	select {
	case extra := <-hits:
		t.Fatalf("burst produced a second trigger: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()

	hits, cancel := runWatcher(t, root)
	defer cancel()

	if err := os.MkdirAll(filepath.Join(root, "snes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Drain the trigger for the directory creation itself.
	waitHit(t, hits)

	testsupport.WriteFile(t, root, filepath.Join("snes", "game.bin"), []byte("abc"))

	hit := waitHit(t, hits)
	found := false
	for _, sub := range hit.subs {
		if sub == "snes" {
			found = true
		}
	}
	if !found {
		t.Fatalf("trigger subs = %v, want to include snes", hit.subs)
	}
}
