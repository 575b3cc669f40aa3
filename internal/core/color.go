package core

// Color represents a foreground color for a screen cell.
// Platforms map it to concrete terminal colors.
type Color uint8

const (
	ColorDefault Color = iota
	ColorCyan
	ColorBlue
	ColorOrange
	ColorGreen
	ColorMagenta
	ColorRed
	ColorYellow
	ColorGray
	ColorBrightWhite
)
