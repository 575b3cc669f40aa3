package tetris

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := New(config.DefaultGameplay(), 1)
	g.Init(t0)
	return g
}

// place replaces the active piece.
func place(g *Game, pt PieceType, rotation, x, y int) {
	g.current = &Piece{
		Type:     pt,
		Rotation: rotation,
		Shape:    RotationStates(pt)[rotation],
		X:        x,
		Y:        y,
	}
}

func TestInitSpawnsPiece(t *testing.T) {
	g := newTestGame(t)

	if !g.HasPiece() || g.IsOver() {
		t.Fatal("Init should leave a playable game")
	}
	if g.Score() != 0 || g.Level() != 1 {
		t.Errorf("score/level = %d/%d, expected 0/1", g.Score(), g.Level())
	}
	if g.FallInterval() != 800*time.Millisecond {
		t.Errorf("FallInterval() = %v, expected 800ms", g.FallInterval())
	}
	if g.Next() == PieceNone {
		t.Error("next piece should be drawn")
	}

	p := g.Current()
	if p.Rotation != 0 || p.Y != 0 {
		t.Errorf("spawned piece rotation/y = %d/%d, expected 0/0", p.Rotation, p.Y)
	}
	if want := Width/2 - p.Shape.Width()/2; p.X != want {
		t.Errorf("spawned piece x = %d, expected %d", p.X, want)
	}
}

func TestSameSeedSamePieces(t *testing.T) {
	a := New(config.DefaultGameplay(), 99)
	b := New(config.DefaultGameplay(), 99)
	a.Init(t0)
	b.Init(t0)

	for i := range 50 {
		if a.Current().Type != b.Current().Type || a.Next() != b.Next() {
			t.Fatalf("sequences diverged at piece %d", i)
		}
		a.Apply(core.ActionDrop, t0)
		b.Apply(core.ActionDrop, t0)
		if a.IsOver() {
			break
		}
	}
}

func TestLockClearsLinesAndScores(t *testing.T) {
	tests := []struct {
		k             int
		expectedLevel int
		expectedFall  time.Duration
	}{
		{1, 1, 800 * time.Millisecond},
		{2, 1, 800 * time.Millisecond},
		{3, 2, 750 * time.Millisecond},
		{4, 4, 650 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(strings.Repeat("#", tc.k), func(t *testing.T) {
			g := newTestGame(t)
			// Vertical I in column 0 spanning the bottom four rows; the
			// bottom k rows are complete apart from that column.
			place(g, PieceI, 1, 0, Height-4)
			for r := Height - tc.k; r < Height; r++ {
				for c := 1; c < Width; c++ {
					g.board.Set(r, c, ColorTag(PieceJ))
				}
			}

			g.lockActivePiece()

			if want := 100 * tc.k * tc.k; g.Score() != want {
				t.Errorf("score = %d, expected %d", g.Score(), want)
			}
			if g.Lines() != tc.k || g.Pieces() != 1 {
				t.Errorf("lines/pieces = %d/%d, expected %d/1", g.Lines(), g.Pieces(), tc.k)
			}
			if g.Level() != tc.expectedLevel || g.FallInterval() != tc.expectedFall {
				t.Errorf("level/interval = %d/%v, expected %d/%v",
					g.Level(), g.FallInterval(), tc.expectedLevel, tc.expectedFall)
			}

			// Leftover I cells fall to the floor.
			for r := range Height {
				wantI := r >= Height-(4-tc.k)
				if got := g.Cell(r, 0) == ColorTag(PieceI); got != wantI {
					t.Errorf("column 0 row %d holds I = %v, expected %v", r, got, wantI)
				}
				if !g.Cell(r, 1).IsEmpty() {
					t.Errorf("row %d column 1 should be cleared", r)
				}
			}
			if !g.HasPiece() || g.IsOver() {
				t.Error("a new piece should spawn after the lock")
			}
		})
	}
}

func lockOneLine(g *Game) {
	place(g, PieceI, 1, 0, Height-4)
	for c := 1; c < Width; c++ {
		g.board.Set(Height-1, c, ColorTag(PieceL))
	}
	g.lockActivePiece()
}

func TestLevelUpAtFiveHundred(t *testing.T) {
	g := newTestGame(t)
	g.score = 399
	lockOneLine(g)
	if g.Score() != 499 || g.Level() != 1 {
		t.Fatalf("score/level = %d/%d, expected 499/1", g.Score(), g.Level())
	}
	if g.FallInterval() != 800*time.Millisecond {
		t.Errorf("interval should not change below 500, got %v", g.FallInterval())
	}

	g = newTestGame(t)
	g.score = 400
	lockOneLine(g)
	if g.Score() != 500 || g.Level() != 2 {
		t.Fatalf("score/level = %d/%d, expected 500/2", g.Score(), g.Level())
	}
	if g.FallInterval() != 750*time.Millisecond {
		t.Errorf("FallInterval() = %v, expected 750ms", g.FallInterval())
	}
}

func TestIntervalOnlyChangesOnLevelUp(t *testing.T) {
	g := newTestGame(t)
	g.level = 5
	g.fallInterval = 123 * time.Millisecond
	lockOneLine(g)

	if g.Level() != 5 || g.FallInterval() != 123*time.Millisecond {
		t.Errorf("level/interval = %d/%v, expected 5/123ms", g.Level(), g.FallInterval())
	}
}

func TestSpawnCollisionEndsGame(t *testing.T) {
	g := newTestGame(t)
	fillRow(&g.board, 0, ColorTag(PieceZ))
	fillRow(&g.board, 1, ColorTag(PieceZ))
	before := g.board.Rows()
	next := g.Next()

	g.spawn()

	if !g.IsOver() {
		t.Fatal("spawn into occupied rows should end the game")
	}
	if p := g.Current(); p == nil || p.Type != next {
		t.Error("colliding piece should stay assigned for display")
	}
	after := g.board.Rows()
	for r := range before {
		for c := range before[r] {
			if before[r][c] != after[r][c] {
				t.Fatalf("board changed at (%d, %d) on game over", r, c)
			}
		}
	}

	if g.Apply(core.ActionLeft, t0) != OutcomeRejected {
		t.Error("movement after game over should be rejected")
	}
	if g.Tick(t0.Add(time.Hour)) {
		t.Error("tick after game over should not fire")
	}
}

func TestHardDropFromEmptyBoard(t *testing.T) {
	for _, pt := range Types() {
		t.Run(pt.String(), func(t *testing.T) {
			g := newTestGame(t)
			shape := RotationStates(pt)[0]
			x := Width/2 - shape.Width()/2
			place(g, pt, 0, x, 0)
			later := t0.Add(time.Second)

			if out := g.Apply(core.ActionDrop, later); out != OutcomeOK {
				t.Fatalf("Apply(drop) = %v, expected ok", out)
			}

			landed := Height - shape.Height()
			if g.Score() != 2*landed {
				t.Errorf("score = %d, expected %d", g.Score(), 2*landed)
			}
			for _, rc := range shape.Cells() {
				if g.Cell(landed+rc[0], x+rc[1]) != ColorTag(pt) {
					t.Errorf("cell (%d, %d) not locked", landed+rc[0], x+rc[1])
				}
			}
			if g.Pieces() != 1 || !g.lastFall.Equal(later) {
				t.Error("hard drop should lock and reset the fall timer")
			}
		})
	}
}

func TestRotateAgainstWall(t *testing.T) {
	g := newTestGame(t)
	place(g, PieceI, 1, Width-1, 5)

	g.Apply(core.ActionRotate, t0)

	p := g.Current()
	if p.Rotation != 1 || p.Shape.Height() != 4 {
		t.Errorf("rotation = %d height = %d, expected unchanged vertical I", p.Rotation, p.Shape.Height())
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name     string
		pt       PieceType
		expected int
	}{
		{"T advances", PieceT, 1},
		{"S advances", PieceS, 1},
		{"O stays", PieceO, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t)
			place(g, tc.pt, 0, 4, 5)
			g.Apply(core.ActionRotate, t0)
			if p := g.Current(); p.Rotation != tc.expected {
				t.Errorf("rotation = %d, expected %d", p.Rotation, tc.expected)
			}
		})
	}

	g := newTestGame(t)
	place(g, PieceT, 0, 4, 5)
	g.board.Set(7, 4, ColorTag(PieceO)) // state 1 needs (7, 4)
	g.Apply(core.ActionRotate, t0)
	if g.Current().Rotation != 0 {
		t.Error("rotation into an occupied cell should be refused")
	}
}

func TestMoveHorizontal(t *testing.T) {
	tests := []struct {
		name      string
		startX    int
		action    core.Action
		expectedX int
	}{
		{"left", 4, core.ActionLeft, 3},
		{"right", 4, core.ActionRight, 5},
		{"left wall", 0, core.ActionLeft, 0},
		{"right wall", Width - 2, core.ActionRight, Width - 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t)
			place(g, PieceO, 0, tc.startX, 3)
			if out := g.Apply(tc.action, t0); out != OutcomeOK {
				t.Errorf("Apply = %v, expected ok even when blocked", out)
			}
			if x := g.Current().X; x != tc.expectedX {
				t.Errorf("x = %d, expected %d", x, tc.expectedX)
			}
		})
	}
}

func TestSoftDrop(t *testing.T) {
	g := newTestGame(t)
	place(g, PieceO, 0, 4, 3)
	later := t0.Add(300 * time.Millisecond)

	g.Apply(core.ActionDown, later)
	if p := g.Current(); p.Y != 4 {
		t.Errorf("y = %d, expected 4", p.Y)
	}
	if g.Score() != 1 || !g.lastFall.Equal(later) {
		t.Error("soft drop should award a point and reset the fall timer")
	}

	place(g, PieceO, 0, 4, Height-2)
	g.Apply(core.ActionDown, later)
	if g.Pieces() != 1 || g.Score() != 1 {
		t.Errorf("blocked soft drop should lock without scoring, pieces=%d score=%d", g.Pieces(), g.Score())
	}
	if g.Cell(Height-1, 4) != ColorTag(PieceO) {
		t.Error("piece should be locked at the floor")
	}
}

func TestTickThreshold(t *testing.T) {
	g := newTestGame(t)
	place(g, PieceO, 0, 4, 0)

	if g.Tick(t0.Add(800 * time.Millisecond)) {
		t.Fatal("tick at exactly the interval should not fire")
	}

	at := t0.Add(801 * time.Millisecond)
	if !g.Tick(at) {
		t.Fatal("tick past the interval should fire")
	}
	if g.Current().Y != 1 || !g.lastFall.Equal(at) {
		t.Errorf("after tick y = %d, expected 1 with timer reset", g.Current().Y)
	}

	// Many elapsed intervals still move one row.
	g.Tick(at.Add(10 * time.Second))
	if g.Current().Y != 2 {
		t.Errorf("y = %d, expected a single step to 2", g.Current().Y)
	}
}

func TestTickLocksAtFloor(t *testing.T) {
	g := newTestGame(t)
	place(g, PieceO, 0, 0, Height-2)

	if !g.Tick(t0.Add(time.Second)) {
		t.Fatal("tick should fire")
	}
	if g.Pieces() != 1 || g.Cell(Height-1, 0) != ColorTag(PieceO) {
		t.Error("tick on a grounded piece should lock it")
	}
}

func TestStartSemantics(t *testing.T) {
	g := New(config.DefaultGameplay(), 7)

	if g.Tick(t0.Add(time.Hour)) {
		t.Error("tick without a piece should not fire")
	}
	if out := g.Apply(core.ActionLeft, t0); out != OutcomeRejected {
		t.Errorf("left before init = %v, expected rejected", out)
	}
	if out := g.Apply(core.ActionStart, t0); out != OutcomeInitialized {
		t.Errorf("first start = %v, expected initialized", out)
	}
	if out := g.Apply(core.ActionStart, t0); out != OutcomeIgnored {
		t.Errorf("start during play = %v, expected ignored", out)
	}
	if out := g.Apply(core.ActionNone, t0); out != OutcomeIgnored {
		t.Errorf("unknown action = %v, expected ignored", out)
	}

	g.gameOver = true
	if out := g.Apply(core.ActionStart, t0); out != OutcomeStarted {
		t.Errorf("start after game over = %v, expected started", out)
	}
	if !g.Playable() {
		t.Error("start should revive the game")
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t)
	place(g, PieceT, 0, 3, 2)
	g.board.Set(Height-1, 0, ColorTag(PieceZ))

	snap := g.Snapshot()
	if *snap.PieceX != 3 || *snap.PieceY != 2 || snap.CurrentPiece.Color != ColorTag(PieceT) {
		t.Errorf("unexpected piece in snapshot: %+v", snap.CurrentPiece)
	}

	snap.Board[Height-1][0] = Empty
	snap.CurrentPiece.Shape[0][0] = 9
	if g.Cell(Height-1, 0) != ColorTag(PieceZ) || RotationStates(PieceT)[0][0][0] != 0 {
		t.Fatal("snapshot must not alias game state")
	}

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}

	board := wire["board"].([]any)
	if board[0].([]any)[0] != float64(0) {
		t.Errorf("empty cell should encode as 0, got %v", board[0].([]any)[0])
	}
	if board[Height-1].([]any)[0] != "Z" {
		t.Errorf("locked cell should encode as its tag, got %v", board[Height-1].([]any)[0])
	}
	current := wire["current_piece"].(map[string]any)
	if current["color"] != "T" {
		t.Errorf("current_piece.color = %v, expected T", current["color"])
	}
	for _, key := range []string{"score", "level", "game_over", "piece_x", "piece_y", "next_piece"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("snapshot JSON missing %q", key)
		}
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("snapshot should decode: %v", err)
	}
	if back.Board[Height-1][0] != ColorTag(PieceZ) || !back.Board[0][0].IsEmpty() {
		t.Error("decoded board does not match")
	}
}

func TestSnapshotWithoutPiece(t *testing.T) {
	g := New(config.DefaultGameplay(), 1)
	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"current_piece":null`) {
		t.Errorf("uninitialized snapshot should have null current_piece: %s", data)
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t)
	screen := core.NewScreen(MinScreenW, MinScreenH)
	g.Render(screen)

	out := screen.String()
	for _, want := range []string{"NEXT", "Score", "Level", "Lines", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}

	g.gameOver = true
	g.Render(screen)
	if !strings.Contains(screen.String(), "GAME OVER") {
		t.Error("game over overlay missing")
	}

	small := core.NewScreen(20, 5)
	g.Render(small)
	if !strings.Contains(small.String(), "too small") {
		t.Error("small screen should show a resize hint")
	}
}
