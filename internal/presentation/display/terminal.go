package display

import (
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-datimer/internal/core/constants"
	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/presentation/layout"
	"github.com/penwyp/go-datimer/internal/util"
)

const (
	title    = "DATIMER"
	helpLine = "Press 'p' or space to pause/resume, 'q' to quit"
)

// DisplayConfig controls where things land on screen.
type DisplayConfig struct {
	TimeColumn   int
	StartTimeRow int
}

// Terminal is an immediate-mode renderer writing ANSI sequences. Every
// operation is a single write addressed by absolute row and column.
type Terminal struct {
	out    io.Writer
	config DisplayConfig
	sizer  *layout.Sizer
}

// NewTerminal creates a renderer writing to out.
func NewTerminal(out io.Writer, sizer *layout.Sizer, config *DisplayConfig) *Terminal {
	cfg := DisplayConfig{
		TimeColumn:   constants.TimeColumn,
		StartTimeRow: constants.StartTimeRow,
	}
	if config != nil {
		if config.TimeColumn > 0 {
			cfg.TimeColumn = config.TimeColumn
		}
		if config.StartTimeRow > 0 {
			cfg.StartTimeRow = config.StartTimeRow
		}
	}
	if sizer == nil {
		sizer = layout.NewSizer(80, constants.DefaultTerminalHeight)
	}
	return &Terminal{out: out, config: cfg, sizer: sizer}
}

func (t *Terminal) write(s string) error {
	_, err := io.WriteString(t.out, s)
	return err
}

// Prepare hides the cursor and clears the screen.
func (t *Terminal) Prepare() error {
	return t.write(util.HideCursor + util.ClearScreen + util.MoveCursorHome)
}

// DrawHeader writes the title, the help line and the start time row.
func (t *Terminal) DrawHeader(start time.Time) error {
	var b strings.Builder
	b.WriteString(util.MoveTo(0, 0))
	b.WriteString(util.ColorBold + title + util.ColorReset)
	b.WriteString(util.MoveTo(0, 1))
	b.WriteString(helpLine)
	if err := t.write(b.String()); err != nil {
		return err
	}

	entry := model.NewEntry(model.LabelStartTime, model.ClockFromTime(start), model.Style{Color: model.ColorCyan})
	return t.RenderEntry(entry, t.config.StartTimeRow)
}

// RenderEntry draws entry on row: the label from column 0 and the clock from
// the time column, so timestamps line up regardless of label length.
func (t *Terminal) RenderEntry(entry model.Entry, row int) error {
	style := entry.Style()
	color := colorCode(style.Color)

	var b strings.Builder
	b.WriteString(util.MoveTo(0, row))
	b.WriteString(util.ClearLine)
	b.WriteString(color)
	b.WriteString(t.sizer.FitLabel(entry.Label(), t.config.TimeColumn))
	b.WriteString(util.MoveTo(t.config.TimeColumn, row))
	b.WriteString(util.Emphasize(entry.Clock().String(), style.Bold, style.Italic, color))
	b.WriteString(util.ColorReset)
	return t.write(b.String())
}

// ClearRows blanks rows from..to inclusive.
func (t *Terminal) ClearRows(from, to int) error {
	var b strings.Builder
	for row := from; row <= to; row++ {
		b.WriteString(util.MoveTo(0, row))
		b.WriteString(util.ClearLine)
	}
	return t.write(b.String())
}

// Restore resets colors, parks the cursor at the start of row and shows it.
func (t *Terminal) Restore(row int) error {
	return t.write(util.ColorReset + util.MoveTo(0, row) + util.ShowCursor)
}

func colorCode(c model.Color) string {
	switch c {
	case model.ColorCyan:
		return util.ColorCyan
	case model.ColorGreen:
		return util.ColorGreen
	case model.ColorRed:
		return util.ColorRed
	default:
		return util.ColorReset
	}
}
