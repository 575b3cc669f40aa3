package session

import (
	"testing"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
)

func TestWatcherDropsOldest(t *testing.T) {
	w := newWatcher("p", 2, nil)
	for score := 1; score <= 3; score++ {
		w.send(tetris.Snapshot{Score: score})
	}

	first := <-w.Snapshots()
	second := <-w.Snapshots()
	if first.Score != 2 || second.Score != 3 {
		t.Errorf("received scores %d, %d; expected 2, 3", first.Score, second.Score)
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	calls := 0
	w := newWatcher("p", 1, func(*Watcher) { calls++ })

	w.Close()
	w.Close()

	if calls != 1 {
		t.Errorf("onClose called %d times, expected 1", calls)
	}
	select {
	case <-w.Done():
	default:
		t.Error("Done should be closed")
	}

	w.send(tetris.Snapshot{Score: 1})
	if len(w.Snapshots()) != 0 {
		t.Error("closed watcher should not buffer snapshots")
	}
}

func TestWatchReceivesChanges(t *testing.T) {
	m := newTestManager(t, nil)

	w, err := m.Watch("p")
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer w.Close()
	if w.ID() != "p" {
		t.Errorf("ID() = %q, expected p", w.ID())
	}

	if initial := <-w.Snapshots(); initial.CurrentPiece == nil {
		t.Fatal("initial snapshot should carry the active piece")
	}

	m.Apply("p", core.ActionDrop, t0)
	if snap := <-w.Snapshots(); snap.Pieces != 1 {
		t.Errorf("snapshot after drop has pieces = %d, expected 1", snap.Pieces)
	}

	// Ignored actions do not notify.
	m.Apply("p", core.ActionStart, t0)
	if len(w.Snapshots()) != 0 {
		t.Error("ignored start should not notify watchers")
	}
}

func TestDestroyClosesWatchers(t *testing.T) {
	m := newTestManager(t, nil)
	w, _ := m.Watch("p")

	m.Destroy("p")

	select {
	case <-w.Done():
	default:
		t.Fatal("Destroy should close watchers")
	}
	w.Close() // no-op after Destroy
}
