package tetris

import (
	"time"

	"github.com/vovakirdan/blockfall/internal/core"
)

// Outcome classifies the result of applying an action.
type Outcome int

const (
	// OutcomeOK means the action was dispatched. Invalid moves are still OK.
	OutcomeOK Outcome = iota
	// OutcomeStarted means start revived a finished game.
	OutcomeStarted
	// OutcomeInitialized means start brought up a game that had no piece yet.
	OutcomeInitialized
	// OutcomeIgnored means the action had no effect: start during play, or
	// an unknown action.
	OutcomeIgnored
	// OutcomeRejected means the game is over or not initialized and the
	// action was not start.
	OutcomeRejected
)

var outcomeNames = map[Outcome]string{
	OutcomeOK:          "ok",
	OutcomeStarted:     "started",
	OutcomeInitialized: "initialized",
	OutcomeIgnored:     "ignored",
	OutcomeRejected:    "rejected",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Playable reports whether the game accepts movement actions.
func (g *Game) Playable() bool {
	return !g.gameOver && g.current != nil
}

// Apply dispatches one player action at time now.
func (g *Game) Apply(action core.Action, now time.Time) Outcome {
	if action == core.ActionStart {
		switch {
		case g.gameOver:
			g.Init(now)
			return OutcomeStarted
		case g.current == nil:
			g.Init(now)
			return OutcomeInitialized
		default:
			return OutcomeIgnored
		}
	}

	if !g.Playable() {
		return OutcomeRejected
	}

	p := g.current
	switch action {
	case core.ActionLeft:
		if g.board.CanPlace(p.X-1, p.Y, p.Shape) {
			p.X--
		}
	case core.ActionRight:
		if g.board.CanPlace(p.X+1, p.Y, p.Shape) {
			p.X++
		}
	case core.ActionDown:
		g.softDrop(now)
	case core.ActionRotate:
		g.rotate()
	case core.ActionDrop:
		g.hardDrop(now)
	default:
		// Unrecognized actions are accepted and change nothing.
		return OutcomeIgnored
	}
	return OutcomeOK
}

func (g *Game) softDrop(now time.Time) {
	p := g.current
	if !g.board.CanPlace(p.X, p.Y+1, p.Shape) {
		g.lockActivePiece()
		return
	}
	p.Y++
	g.score += g.curve.SoftDropPoints()
	g.lastFall = now
}

// rotate advances to the next rotation state only if it fits at the current
// offset. There is no wall kick.
func (g *Game) rotate() {
	p := g.current
	next := NextRotation(p.Type, p.Rotation)
	shape := RotationStates(p.Type)[next]
	if g.board.CanPlace(p.X, p.Y, shape) {
		p.Rotation = next
		p.Shape = shape
	}
}

func (g *Game) hardDrop(now time.Time) {
	p := g.current
	rows := 0
	for g.board.CanPlace(p.X, p.Y+1, p.Shape) {
		p.Y++
		rows++
	}
	g.score += g.curve.HardDropPoints(rows)
	g.lockActivePiece()
	g.lastFall = now
}
