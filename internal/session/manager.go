package session

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
)

type entry struct {
	mu       sync.Mutex
	id       ID
	game     *tetris.Game
	lastSeen time.Time
	recorded bool // Result of the current game already handed to the saver
	watchers map[*Watcher]struct{}
}

// Manager maps session IDs to games. All reads and mutations of one game
// happen under that session's lock.
type Manager struct {
	cfg         Config
	logger      *log.Logger
	resultSaver ResultSaver // Optional, can be nil
	clock       func() time.Time
	seq         atomic.Int64

	mu       sync.RWMutex
	sessions map[ID]*entry

	done     chan struct{}
	stopOnce sync.Once
	loops    sync.WaitGroup
	saves    sync.WaitGroup
}

// NewManager creates a manager. A nil logger discards output.
func NewManager(cfg Config, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		clock:    time.Now,
		sessions: make(map[ID]*entry),
		done:     make(chan struct{}),
	}
}

// SetResultSaver sets the optional saver for finished games.
func (m *Manager) SetResultSaver(saver ResultSaver) {
	m.resultSaver = saver
}

// Config returns the manager settings.
func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) nextSeed() int64 {
	n := m.seq.Add(1)
	if m.cfg.Seed != 0 {
		return m.cfg.Seed + n
	}
	return time.Now().UnixNano() + n
}

func (m *Manager) lookup(id ID) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	return e, ok
}

// getOrCreate returns the session, creating and initializing it at now if
// needed. created reports whether this call made it.
func (m *Manager) getOrCreate(id ID, now time.Time) (e *entry, created bool, err error) {
	if e, ok := m.lookup(id); ok {
		return e, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		return e, false, nil
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, false, ErrTooManySessions
	}

	game := tetris.New(m.cfg.Gameplay, m.nextSeed())
	game.Init(now)
	e = &entry{
		id:       id,
		game:     game,
		lastSeen: now,
		watchers: make(map[*Watcher]struct{}),
	}
	m.sessions[id] = e
	m.logger.Debug("session created", "session", id, "sessions", len(m.sessions))
	return e, true, nil
}

// Create starts a new game under id.
func (m *Manager) Create(id ID) error {
	if _, ok := m.lookup(id); ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	_, created, err := m.getOrCreate(id, m.clock())
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	return nil
}

// GetOrCreate ensures a game exists under id. Reports whether it was created.
func (m *Manager) GetOrCreate(id ID) (bool, error) {
	_, created, err := m.getOrCreate(id, m.clock())
	return created, err
}

// Get returns the snapshot of an existing session without applying gravity.
func (m *Manager) Get(id ID) (tetris.Snapshot, error) {
	e, ok := m.lookup(id)
	if !ok {
		return tetris.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Snapshot(), nil
}

// Destroy removes a session and closes its watchers. Reports whether it existed.
func (m *Manager) Destroy(id ID) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}

	e.mu.Lock()
	watchers := make([]*Watcher, 0, len(e.watchers))
	for w := range e.watchers {
		watchers = append(watchers, w)
	}
	clear(e.watchers)
	e.mu.Unlock()

	for _, w := range watchers {
		w.shutdown()
	}
	m.logger.Debug("session destroyed", "session", id, "sessions", remaining)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the live session IDs in sorted order.
func (m *Manager) IDs() []ID {
	m.mu.RLock()
	ids := make([]ID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Snapshot returns the state of the session, creating it if needed.
// In poll mode gravity is applied first.
func (m *Manager) Snapshot(id ID, now time.Time) (tetris.Snapshot, error) {
	e, _, err := m.getOrCreate(id, now)
	if err != nil {
		return tetris.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = now
	if m.cfg.Gravity != config.GravityScheduler && e.game.Tick(now) {
		m.afterChange(e, now)
	}
	return e.game.Snapshot(), nil
}

// Poll is Snapshot for an existing session: a missing id returns
// ErrNotFound instead of creating a game. In poll mode gravity is applied.
func (m *Manager) Poll(id ID, now time.Time) (tetris.Snapshot, error) {
	e, ok := m.lookup(id)
	if !ok {
		return tetris.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = now
	if m.cfg.Gravity != config.GravityScheduler && e.game.Tick(now) {
		m.afterChange(e, now)
	}
	return e.game.Snapshot(), nil
}

// Apply dispatches a player action. A missing session is created only by
// start; other actions on a missing, uninitialized or finished game return
// ErrNotPlayable.
func (m *Manager) Apply(id ID, action core.Action, now time.Time) (tetris.Outcome, error) {
	e, ok := m.lookup(id)
	if !ok {
		if action != core.ActionStart {
			return tetris.OutcomeRejected, ErrNotPlayable
		}
		var created bool
		var err error
		e, created, err = m.getOrCreate(id, now)
		if err != nil {
			return tetris.OutcomeRejected, err
		}
		if created {
			e.mu.Lock()
			m.afterChange(e, now)
			e.mu.Unlock()
			return tetris.OutcomeStarted, nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = now

	out := e.game.Apply(action, now)
	switch out {
	case tetris.OutcomeRejected:
		return out, ErrNotPlayable
	case tetris.OutcomeStarted, tetris.OutcomeInitialized:
		e.recorded = false
		m.logger.Debug("game started", "session", id)
	case tetris.OutcomeIgnored:
		return out, nil
	}
	m.afterChange(e, now)
	return out, nil
}

// Restart unconditionally reinitializes the session's game.
func (m *Manager) Restart(id ID, now time.Time) error {
	e, created, err := m.getOrCreate(id, now)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = now
	if !created {
		e.game.Init(now)
		e.recorded = false
	}
	m.logger.Debug("game restarted", "session", id)
	m.afterChange(e, now)
	return nil
}

// Render draws the session's game onto dst.
func (m *Manager) Render(id ID, dst *core.Screen) error {
	e, ok := m.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.game.Render(dst)
	return nil
}

// Watch subscribes to snapshots of a session, creating it if needed. The
// current snapshot is delivered immediately.
func (m *Manager) Watch(id ID) (*Watcher, error) {
	now := m.clock()
	e, _, err := m.getOrCreate(id, now)
	if err != nil {
		return nil, err
	}

	w := newWatcher(id, m.cfg.WatchBuffer, func(w *Watcher) {
		e.mu.Lock()
		delete(e.watchers, w)
		e.mu.Unlock()
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = now
	e.watchers[w] = struct{}{}
	w.send(e.game.Snapshot())
	return w, nil
}

// TickAll applies gravity to every session and returns how many moved.
func (m *Manager) TickAll(now time.Time) int {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	fired := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.game.Tick(now) {
			fired++
			m.afterChange(e, now)
		}
		e.mu.Unlock()
	}
	return fired
}

// Cleanup destroys sessions idle for longer than IdleTimeout. Sessions with
// watchers are kept. Returns how many were destroyed.
func (m *Manager) Cleanup(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}

	m.mu.RLock()
	var expired []ID
	for id, e := range m.sessions {
		e.mu.Lock()
		if len(e.watchers) == 0 && now.Sub(e.lastSeen) > m.cfg.IdleTimeout {
			expired = append(expired, id)
		}
		e.mu.Unlock()
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Destroy(id)
	}
	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", "count", len(expired), "sessions", m.Count())
	}
	return len(expired)
}

// afterChange notifies watchers and records a newly finished game.
// Caller holds e.mu.
func (m *Manager) afterChange(e *entry, now time.Time) {
	if len(e.watchers) > 0 {
		snap := e.game.Snapshot()
		for w := range e.watchers {
			w.send(snap)
		}
	}

	if !e.game.IsOver() || e.recorded {
		return
	}
	e.recorded = true

	g := e.game
	result := Result{
		SessionID: e.id,
		Score:     g.Score(),
		Level:     g.Level(),
		Lines:     g.Lines(),
		Pieces:    g.Pieces(),
		Duration:  now.Sub(g.StartedAt()),
	}
	m.logger.Info("game over", "session", e.id, "score", result.Score, "level", result.Level, "lines", result.Lines)
	m.saveResult(result)
}

// saveResult hands the result to the saver in the background. Errors are
// logged, never returned to the player.
func (m *Manager) saveResult(r Result) {
	if m.resultSaver == nil {
		return
	}
	m.saves.Add(1)
	go func() {
		defer m.saves.Done()
		if err := m.resultSaver.SaveResult(r); err != nil {
			m.logger.Warn("could not save result", "session", r.SessionID, "error", err)
		}
	}()
}

// Start begins gravity scheduling (in scheduler mode) and idle cleanup.
// Both stop when ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	if m.cfg.Gravity == config.GravityScheduler && m.cfg.GravityPeriod > 0 {
		m.loops.Add(1)
		go m.runEvery(ctx, m.cfg.GravityPeriod, func(now time.Time) { m.TickAll(now) })
	}
	if m.cfg.IdleTimeout > 0 && m.cfg.CleanupPeriod > 0 {
		m.loops.Add(1)
		go m.runEvery(ctx, m.cfg.CleanupPeriod, func(now time.Time) { m.Cleanup(now) })
	}
	m.logger.Info("session manager started",
		"gravity", m.cfg.Gravity,
		"idle_timeout", m.cfg.IdleTimeout,
		"max_sessions", m.cfg.MaxSessions,
	)
}

func (m *Manager) runEvery(ctx context.Context, period time.Duration, fn func(time.Time)) {
	defer m.loops.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(m.clock())
		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

// Stop ends the background loops and waits for pending saves.
// Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.loops.Wait()
	m.saves.Wait()
}
