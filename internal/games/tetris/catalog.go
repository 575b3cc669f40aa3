// Package tetris implements the falling-block simulation: the piece
// catalog, the board and its collision rules, and the game state machine
// driven by player actions and gravity ticks.
package tetris

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/core"
)

// PieceType identifies one of the seven tetrominoes.
type PieceType uint8

const (
	PieceNone PieceType = iota
	PieceI
	PieceJ
	PieceL
	PieceS
	PieceT
	PieceZ
	PieceO
)

// Shape is a row-major 0/1 occupancy matrix anchored at its top-left corner.
type Shape [][]int

// Width returns the number of columns in the bounding box.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the number of rows in the bounding box.
func (s Shape) Height() int {
	return len(s)
}

// Cells returns the occupied (row, col) offsets in row-major order.
func (s Shape) Cells() [][2]int {
	var cells [][2]int
	for r, row := range s {
		for c, v := range row {
			if v != 0 {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// Clone returns a deep copy safe to hand outside the package.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for i, row := range s {
		out[i] = append([]int(nil), row...)
	}
	return out
}

type pieceDef struct {
	name   string
	color  core.Color
	states []Shape
}

var catalog = map[PieceType]pieceDef{
	PieceI: {"I", core.ColorCyan, []Shape{
		{{1, 1, 1, 1}},
		{{1}, {1}, {1}, {1}},
	}},
	PieceJ: {"J", core.ColorBlue, []Shape{
		{{1, 0, 0}, {1, 1, 1}},
		{{1, 1}, {1, 0}, {1, 0}},
		{{1, 1, 1}, {0, 0, 1}},
		{{0, 1}, {0, 1}, {1, 1}},
	}},
	PieceL: {"L", core.ColorOrange, []Shape{
		{{0, 0, 1}, {1, 1, 1}},
		{{1, 0}, {1, 0}, {1, 1}},
		{{1, 1, 1}, {1, 0, 0}},
		{{1, 1}, {0, 1}, {0, 1}},
	}},
	PieceS: {"S", core.ColorGreen, []Shape{
		{{0, 1, 1}, {1, 1, 0}},
		{{1, 0}, {1, 1}, {0, 1}},
	}},
	PieceT: {"T", core.ColorMagenta, []Shape{
		{{0, 1, 0}, {1, 1, 1}},
		{{1, 0}, {1, 1}, {1, 0}},
		{{1, 1, 1}, {0, 1, 0}},
		{{0, 1}, {1, 1}, {0, 1}},
	}},
	PieceZ: {"Z", core.ColorRed, []Shape{
		{{1, 1, 0}, {0, 1, 1}},
		{{0, 1}, {1, 1}, {1, 0}},
	}},
	PieceO: {"O", core.ColorYellow, []Shape{
		{{1, 1}, {1, 1}},
	}},
}

var allTypes = []PieceType{PieceI, PieceJ, PieceL, PieceS, PieceT, PieceZ, PieceO}

// Types returns the seven piece types in catalog order.
func Types() []PieceType {
	return append([]PieceType(nil), allTypes...)
}

func lookup(t PieceType) pieceDef {
	def, ok := catalog[t]
	if !ok {
		panic(fmt.Sprintf("tetris: unknown piece type %d", t))
	}
	return def
}

// RotationStates returns the ordered rotation states of a piece type.
// The returned shapes are shared and must not be modified.
func RotationStates(t PieceType) []Shape {
	return lookup(t).states
}

// NextRotation returns the rotation index that follows i.
func NextRotation(t PieceType, i int) int {
	return (i + 1) % len(lookup(t).states)
}

// ColorTag returns the cell value locked into the board for a piece type.
func ColorTag(t PieceType) Cell {
	return Cell(lookup(t).name)
}

// String returns the type letter, or "none".
func (t PieceType) String() string {
	if def, ok := catalog[t]; ok {
		return def.name
	}
	return "none"
}

// Color returns the terminal color of the piece type.
func (t PieceType) Color() core.Color {
	if def, ok := catalog[t]; ok {
		return def.color
	}
	return core.ColorDefault
}

// ParsePieceType resolves a type letter.
func ParsePieceType(name string) (PieceType, bool) {
	for _, t := range allTypes {
		if catalog[t].name == name {
			return t, true
		}
	}
	return PieceNone, false
}
