package tetris

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/blockfall/internal/config"
)

// Piece is the falling piece. X, Y locate the top-left corner of Shape.
type Piece struct {
	Type     PieceType
	Rotation int
	Shape    Shape
	X, Y     int
}

// Game is one play session. It is not safe for concurrent use; callers
// serialize Apply, Tick and Init.
type Game struct {
	rng   *rand.Rand
	curve *config.SpeedCurve

	board        Board
	score        int
	level        int
	lines        int // Rows cleared this game
	pieces       int // Pieces locked this game
	fallInterval time.Duration
	lastFall     time.Time
	startedAt    time.Time

	current  *Piece
	next     PieceType
	gameOver bool
}

// New creates a game with no active piece. Call Init (or apply start) to play.
func New(cfg config.GameplayConfig, seed int64) *Game {
	curve := config.NewSpeedCurve(cfg)
	return &Game{
		rng:          rand.New(rand.NewSource(seed)),
		curve:        curve,
		level:        1,
		fallInterval: curve.FallInterval(1),
	}
}

// Init resets the game and spawns the first piece.
func (g *Game) Init(now time.Time) {
	g.board.Reset()
	g.score = 0
	g.level = 1
	g.lines = 0
	g.pieces = 0
	g.fallInterval = g.curve.FallInterval(1)
	g.lastFall = now
	g.startedAt = now
	g.current = nil
	g.gameOver = false
	g.next = g.randomType()
	g.spawn()
}

func (g *Game) randomType() PieceType {
	return allTypes[g.rng.Intn(len(allTypes))]
}

// spawn promotes the next piece to the top of the board. A spawn that
// collides ends the game and leaves the piece in place for display.
func (g *Game) spawn() {
	if g.gameOver {
		return
	}

	t := g.next
	g.next = g.randomType()

	shape := RotationStates(t)[0]
	p := &Piece{
		Type:  t,
		Shape: shape,
		X:     Width/2 - shape.Width()/2,
		Y:     0,
	}
	g.current = p

	if !g.board.CanPlace(p.X, p.Y, p.Shape) {
		g.gameOver = true
	}
}

// lockActivePiece commits the active piece, scores cleared rows and spawns
// the next piece.
func (g *Game) lockActivePiece() {
	p := g.current
	g.board.Lock(p.X, p.Y, p.Shape, ColorTag(p.Type))
	g.pieces++

	if n := g.board.ClearFullLines(); n > 0 {
		g.lines += n
		g.score += g.curve.LineClearPoints(n)
		if level := g.curve.Level(g.score); level > g.level {
			g.level = level
			g.fallInterval = g.curve.FallInterval(level)
		}
	}

	g.spawn()
}

// Tick applies gravity. When more than the fall interval has passed since
// the last fall, the piece moves down one row or locks. At most one step
// is taken per call. Returns whether the interval fired.
func (g *Game) Tick(now time.Time) bool {
	if g.gameOver || g.current == nil {
		return false
	}
	if now.Sub(g.lastFall) <= g.fallInterval {
		return false
	}

	p := g.current
	if g.board.CanPlace(p.X, p.Y+1, p.Shape) {
		p.Y++
	} else {
		g.lockActivePiece()
	}
	g.lastFall = now
	return true
}

// Score returns the current score.
func (g *Game) Score() int { return g.score }

// Level returns the current level.
func (g *Game) Level() int { return g.level }

// Lines returns the number of rows cleared.
func (g *Game) Lines() int { return g.lines }

// Pieces returns the number of pieces locked.
func (g *Game) Pieces() int { return g.pieces }

// FallInterval returns the current gravity interval.
func (g *Game) FallInterval() time.Duration { return g.fallInterval }

// StartedAt returns the time of the last Init.
func (g *Game) StartedAt() time.Time { return g.startedAt }

// IsOver reports whether the game has ended.
func (g *Game) IsOver() bool { return g.gameOver }

// HasPiece reports whether a piece is active.
func (g *Game) HasPiece() bool { return g.current != nil }

// Next returns the preview piece type.
func (g *Game) Next() PieceType { return g.next }

// Current returns a copy of the active piece, or nil.
func (g *Game) Current() *Piece {
	if g.current == nil {
		return nil
	}
	p := *g.current
	p.Shape = p.Shape.Clone()
	return &p
}

// Cell returns the locked cell at (row, col).
func (g *Game) Cell(row, col int) Cell {
	return g.board.Get(row, col)
}
