package layout

import (
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-datimer/internal/core/constants"
	"github.com/penwyp/go-datimer/internal/util"
	"golang.org/x/term"
)

// Sizer answers layout questions for a terminal of fixed dimensions. The size
// is captured once at startup; resizes are not tracked.
type Sizer struct {
	Width  int
	Height int
}

// NewSizer creates a sizer for the given dimensions.
func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// DetectSizer reads the size of the terminal behind f, falling back to
// 80x24 when f is not a terminal.
func DetectSizer(f *os.File) *Sizer {
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil || height <= 0 {
		util.LogDebugf("Terminal size unavailable (%v), using fallback height %d", err, constants.DefaultTerminalHeight)
		return NewSizer(80, constants.DefaultTerminalHeight)
	}
	util.LogDebugf("Terminal size %dx%d", width, height)
	return NewSizer(width, height)
}

// Capacity returns how many history rows fit between origin and the rows
// reserved below the viewport. It is never below one.
func (s *Sizer) Capacity(origin int) int {
	available := s.Height - origin - constants.FooterRows
	if available < constants.MinCapacity {
		return constants.MinCapacity
	}
	return available
}

// FitLabel truncates label so at least one blank cell separates it from a
// value drawn at column width.
func (s *Sizer) FitLabel(label string, width int) string {
	if width <= 1 {
		return ""
	}
	if runewidth.StringWidth(label) < width {
		return label
	}
	return runewidth.Truncate(label, width-1, "")
}
