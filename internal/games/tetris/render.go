package tetris

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/core"
)

const (
	cellWidth  = 2 // Terminal columns per board cell
	panelWidth = 14
	panelGap   = 2

	// MinScreenW and MinScreenH are the smallest screen Render can lay out.
	MinScreenW = Width*cellWidth + 2 + panelGap + panelWidth
	MinScreenH = Height + 2
)

// Render draws the board, active piece, preview and HUD to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() < MinScreenW || dst.Height() < MinScreenH {
		renderTooSmall(dst)
		return
	}

	boardW := Width*cellWidth + 2
	boardX := (dst.Width() - MinScreenW) / 2
	boardY := (dst.Height() - MinScreenH) / 2

	g.renderBoard(dst, boardX, boardY)
	g.renderPanel(dst, boardX+boardW+panelGap, boardY)

	if g.gameOver {
		drawOverlay(dst, boardX+boardW/2, boardY+MinScreenH/2,
			"GAME OVER", fmt.Sprintf("Score: %d", g.score), "Enter to play again")
	} else if g.current == nil {
		drawOverlay(dst, boardX+boardW/2, boardY+MinScreenH/2, "BLOCKFALL", "Press Enter")
	}
}

func renderTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need %dx%d", MinScreenW, MinScreenH))
}

func drawCell(dst *core.Screen, x, y int, c core.Color) {
	dst.SetColored(x, y, '█', c)
	dst.SetColored(x+1, y, '█', c)
}

func (g *Game) renderBoard(dst *core.Screen, boardX, boardY int) {
	dst.DrawBox(core.NewRect(boardX, boardY, Width*cellWidth+2, Height+2), core.ColorGray)

	originX, originY := boardX+1, boardY+1
	for r := range Height {
		for c := range Width {
			x := originX + c*cellWidth
			if cell := g.board.Get(r, c); !cell.IsEmpty() {
				drawCell(dst, x, originY+r, cell.Type().Color())
			} else {
				dst.SetColored(x, originY+r, '·', core.ColorGray)
			}
		}
	}

	if p := g.current; p != nil {
		color := p.Type.Color()
		for _, rc := range p.Shape.Cells() {
			row, col := p.Y+rc[0], p.X+rc[1]
			if row < 0 || row >= Height || col < 0 || col >= Width {
				continue
			}
			drawCell(dst, originX+col*cellWidth, originY+row, color)
		}
	}
}

func (g *Game) renderPanel(dst *core.Screen, x, y int) {
	dst.DrawBox(core.NewRect(x, y, panelWidth, 6), core.ColorGray)
	dst.DrawText(x+2, y, " NEXT ")
	if g.next != PieceNone {
		shape := RotationStates(g.next)[0]
		px := x + (panelWidth-shape.Width()*cellWidth)/2
		py := y + 2
		for _, rc := range shape.Cells() {
			drawCell(dst, px+rc[1]*cellWidth, py+rc[0], g.next.Color())
		}
	}

	hudY := y + 7
	dst.DrawTextColored(x, hudY, fmt.Sprintf("Score  %d", g.score), core.ColorBrightWhite)
	dst.DrawText(x, hudY+1, fmt.Sprintf("Level  %d", g.level))
	dst.DrawText(x, hudY+2, fmt.Sprintf("Lines  %d", g.lines))
	dst.DrawText(x, hudY+3, fmt.Sprintf("Pieces %d", g.pieces))
	dst.DrawText(x, hudY+4, fmt.Sprintf("Speed  %dms", g.fallInterval.Milliseconds()))
}

func drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	boxW := maxLen + 4
	boxH := len(lines) + 2
	boxX := centerX - boxW/2
	boxY := centerY - boxH/2

	for y := boxY; y < boxY+boxH; y++ {
		for x := boxX; x < boxX+boxW; x++ {
			dst.Set(x, y, ' ')
		}
	}
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorBrightWhite)

	for i, line := range lines {
		dst.DrawText(centerX-len(line)/2, boxY+1+i, line)
	}
}
