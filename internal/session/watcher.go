package session

import (
	"sync"

	"github.com/vovakirdan/blockfall/internal/games/tetris"
)

// Watcher receives a snapshot after every change to one session.
// Slow readers lose the oldest snapshots, never block the game.
type Watcher struct {
	id        ID
	snapshots chan tetris.Snapshot
	done      chan struct{}
	doneOnce  sync.Once
	onClose   func(*Watcher)
}

func newWatcher(id ID, bufferSize int, onClose func(*Watcher)) *Watcher {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &Watcher{
		id:        id,
		snapshots: make(chan tetris.Snapshot, bufferSize),
		done:      make(chan struct{}),
		onClose:   onClose,
	}
}

// ID returns the watched session.
func (w *Watcher) ID() ID {
	return w.id
}

// send delivers a snapshot, dropping the oldest when the buffer is full.
func (w *Watcher) send(s tetris.Snapshot) {
	select {
	case <-w.done:
		return
	default:
	}

	select {
	case w.snapshots <- s:
	default:
		select {
		case <-w.snapshots:
		default:
		}
		select {
		case w.snapshots <- s:
		default:
		}
	}
}

// Snapshots returns the channel to receive snapshots from.
func (w *Watcher) Snapshots() <-chan tetris.Snapshot {
	return w.snapshots
}

// Done returns a channel that closes when the watcher is closed or its
// session is destroyed.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close stops delivery. Safe to call multiple times.
func (w *Watcher) Close() {
	if w.shutdown() && w.onClose != nil {
		w.onClose(w)
	}
}

// shutdown closes done and reports whether this call did it.
func (w *Watcher) shutdown() bool {
	closed := false
	w.doneOnce.Do(func() {
		close(w.done)
		closed = true
	})
	return closed
}
