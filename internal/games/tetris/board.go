package tetris

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Board dimensions.
const (
	Width  = 10
	Height = 20
)

// Cell is a board position: empty, or the color tag of the piece locked there.
type Cell string

// Empty is the value of an unoccupied cell.
const Empty Cell = ""

// IsEmpty reports whether nothing is locked in the cell.
func (c Cell) IsEmpty() bool {
	return c == Empty
}

// Type returns the piece type that produced the tag.
func (c Cell) Type() PieceType {
	t, _ := ParsePieceType(string(c))
	return t
}

// MarshalJSON encodes an empty cell as 0 and a locked cell as its tag.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsEmpty() {
		return []byte("0"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("0")) || bytes.Equal(data, []byte("null")) {
		*c = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tetris: invalid cell %s", data)
	}
	*c = Cell(s)
	return nil
}

// Board is the fixed-size grid of locked cells. Row 0 is the top.
type Board struct {
	cells [Height][Width]Cell
}

// IsEmptyAndInBounds reports whether (row, col) lies on the board and is empty.
func (b *Board) IsEmptyAndInBounds(row, col int) bool {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return false
	}
	return b.cells[row][col].IsEmpty()
}

// CanPlace reports whether every occupied cell of shape, anchored at (x, y),
// maps to an empty in-bounds board cell.
func (b *Board) CanPlace(x, y int, shape Shape) bool {
	for r, row := range shape {
		for c, v := range row {
			if v != 0 && !b.IsEmptyAndInBounds(y+r, x+c) {
				return false
			}
		}
	}
	return true
}

// Lock writes tag into every in-bounds cell covered by shape at (x, y).
func (b *Board) Lock(x, y int, shape Shape, tag Cell) {
	for r, row := range shape {
		for c, v := range row {
			if v == 0 {
				continue
			}
			br, bc := y+r, x+c
			if br < 0 || br >= Height || bc < 0 || bc >= Width {
				continue
			}
			b.cells[br][bc] = tag
		}
	}
}

// ClearFullLines removes every full row, shifts the remaining rows down in
// order, and fills the top with empty rows. Returns the number removed.
func (b *Board) ClearFullLines() int {
	write := Height - 1
	for read := Height - 1; read >= 0; read-- {
		if b.rowFull(read) {
			continue
		}
		b.cells[write] = b.cells[read]
		write--
	}

	cleared := write + 1
	for r := 0; r <= write; r++ {
		b.cells[r] = [Width]Cell{}
	}
	return cleared
}

func (b *Board) rowFull(row int) bool {
	for _, c := range b.cells[row] {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}

// Get returns the cell at (row, col), or Empty when out of bounds.
func (b *Board) Get(row, col int) Cell {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return Empty
	}
	return b.cells[row][col]
}

// Set stores c at (row, col). Returns false when out of bounds.
func (b *Board) Set(row, col int, c Cell) bool {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return false
	}
	b.cells[row][col] = c
	return true
}

// Rows returns a deep copy of the grid.
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, Height)
	for r := range Height {
		rows[r] = append([]Cell(nil), b.cells[r][:]...)
	}
	return rows
}

// Reset empties the board.
func (b *Board) Reset() {
	b.cells = [Height][Width]Cell{}
}
