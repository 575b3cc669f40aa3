package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
)

var piecesCmd = &cobra.Command{
	Use:   "pieces [type]",
	Short: "Show the piece catalog",
	Long: `Print every piece type with all of its rotation states, in the order
the rotate action cycles through them.

Examples:
  blockfall pieces
  blockfall pieces T`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPieces,
}

func runPieces(_ *cobra.Command, args []string) {
	types := tetris.Types()
	if len(args) == 1 {
		t, ok := tetris.ParsePieceType(strings.ToUpper(args[0]))
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown piece type %q\n", args[0])
			fmt.Fprintln(os.Stderr, "Run 'blockfall pieces' to see all types.")
			os.Exit(1)
		}
		types = []tetris.PieceType{t}
	}

	for _, t := range types {
		states := tetris.RotationStates(t)
		fmt.Printf("%s  (%d rotation states)\n", t, len(states))
		fmt.Println(tui.RenderScreen(drawRotations(t, states)))
		fmt.Println()
	}
}

// drawRotations lays the rotation states out side by side, two columns per cell.
func drawRotations(t tetris.PieceType, states []tetris.Shape) *core.Screen {
	const gap = 3

	width, height := 0, 0
	for _, s := range states {
		width += s.Width()*2 + gap
		height = max(height, s.Height())
	}

	screen := core.NewScreen(width, height)
	x := 0
	for _, s := range states {
		for r := range s.Height() {
			for c := range s.Width() {
				screen.DrawText(x+c*2, r, "··")
			}
		}
		for _, cell := range s.Cells() {
			screen.DrawTextColored(x+cell[1]*2, cell[0], "██", t.Color())
		}
		x += s.Width()*2 + gap
	}
	return screen
}
