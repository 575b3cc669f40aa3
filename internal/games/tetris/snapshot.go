package tetris

// PieceView is the wire form of a piece: its current shape and color tag.
type PieceView struct {
	Shape Shape `json:"shape"`
	Color Cell  `json:"color"`
}

// Snapshot is a deep copy of the observable game state.
type Snapshot struct {
	Board          [][]Cell   `json:"board"`
	Score          int        `json:"score"`
	Level          int        `json:"level"`
	GameOver       bool       `json:"game_over"`
	CurrentPiece   *PieceView `json:"current_piece"`
	PieceX         *int       `json:"piece_x"`
	PieceY         *int       `json:"piece_y"`
	NextPiece      *PieceView `json:"next_piece"`
	Lines          int        `json:"lines"`
	Pieces         int        `json:"pieces"`
	FallIntervalMS int64      `json:"fall_interval_ms"`
}

// Snapshot captures the current state. Nothing in it aliases game memory.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Board:          g.board.Rows(),
		Score:          g.score,
		Level:          g.level,
		GameOver:       g.gameOver,
		Lines:          g.lines,
		Pieces:         g.pieces,
		FallIntervalMS: g.fallInterval.Milliseconds(),
	}

	if p := g.current; p != nil {
		x, y := p.X, p.Y
		s.CurrentPiece = &PieceView{Shape: p.Shape.Clone(), Color: ColorTag(p.Type)}
		s.PieceX = &x
		s.PieceY = &y
	}
	if g.next != PieceNone {
		s.NextPiece = &PieceView{Shape: RotationStates(g.next)[0].Clone(), Color: ColorTag(g.next)}
	}
	return s
}
