package util

import (
	"fmt"
)

// Terminal control sequences
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorRed    = "\033[31m"
	ColorBold   = "\033[1m"
	ColorItalic = "\033[3m"

	ClearScreen    = "\033[2J" // Clear entire screen
	ClearLine      = "\033[2K" // Clear entire line
	MoveCursorHome = "\033[H"  // Move cursor to home position
	HideCursor     = "\033[?25l"
	ShowCursor     = "\033[?25h"
)

// MoveCursor returns ANSI sequence to move cursor to a 1-based row and column
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}

// MoveTo is MoveCursor for 0-based screen coordinates
func MoveTo(col, row int) string {
	return MoveCursor(row+1, col+1)
}

// Emphasize wraps text in bold and/or italic, restoring the given color
// afterwards so the rest of the line keeps it.
func Emphasize(text string, bold, italic bool, color string) string {
	if !bold && !italic {
		return text
	}
	prefix := ""
	if bold {
		prefix += ColorBold
	}
	if italic {
		prefix += ColorItalic
	}
	return prefix + text + ColorReset + color
}
