package flags

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vinser/bounce/internal/grid"
)

var ErrInvalid = errors.New("invalid flag value")

// Flags stores the parsed command-line options
type Flags struct {
	DelayMs  int
	Width    int
	Height   int
	Col      int
	Row      int
	Sprite   string
	Theme    string
	Mute     bool
	Reset    bool
	Headless bool
	Steps    int
	LogFile  string

	fsv *FlagSetWithVisit
}

// Parse parses args (without the program name). Usage is printed to out
// when a value is rejected.
func Parse(name string, args []string, out io.Writer) (*Flags, error) {
	f := &Flags{}
	fsv := NewFlagSetWithVisit(name, out)
	f.fsv = fsv

	fsv.IntVar(&f.DelayMs, "delay", "d", 600, "Milliseconds between marker moves")
	fsv.IntVar(&f.Width, "width", "W", 21, "Grid width in tiles, at least 3")
	fsv.IntVar(&f.Height, "height", "H", 15, "Grid height in tiles, at least 3")
	fsv.IntVar(&f.Col, "col", "c", 7, "Start column")
	fsv.IntVar(&f.Row, "row", "r", 7, "Start row")
	fsv.StringVar(&f.Sprite, "sprite-size", "s", "medium", "Sprite size: small, medium, or large")
	fsv.StringVar(&f.Theme, "theme", "t", "day", "Board light: day, night or real")
	fsv.BoolVar(&f.Mute, "mute", "m", false, "Mute all sounds")
	fsv.BoolVar(&f.Reset, "reset", "", false, "Reset saved snapshot and settings")
	fsv.BoolVar(&f.Headless, "headless", "", false, "Run without the terminal UI and log every move")
	fsv.IntVar(&f.Steps, "steps", "", 0, "Stop the headless run after this many moves, 0 runs until interrupted")
	fsv.StringVar(&f.LogFile, "log", "", "", "Write debug log to this file")

	if err := fsv.Parse(args); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		fmt.Fprintln(out, err)
		fsv.Usage()
		return nil, err
	}
	return f, nil
}

// IsSet reports whether the flag was given on the command line.
func (f *Flags) IsSet(name string) bool {
	return f.fsv != nil && f.fsv.IsCustom(name)
}

func (f *Flags) validate() error {
	f.Sprite = strings.ToLower(f.Sprite)
	f.Theme = strings.ToLower(f.Theme)

	switch {
	case f.DelayMs <= 0 || int64(f.DelayMs) > grid.MaxMoveDelayMs:
		return fmt.Errorf("%w: delay must be between 1 and %d, got %d", ErrInvalid, grid.MaxMoveDelayMs, f.DelayMs)
	case f.Width < 3 || f.Height < 3:
		return fmt.Errorf("%w: grid must be at least 3x3, got %dx%d", ErrInvalid, f.Width, f.Height)
	case f.Steps < 0:
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalid, f.Steps)
	}
	if f.Col < 0 || f.Row < 0 {
		return fmt.Errorf("%w: start tile %d,%d is negative", ErrInvalid, f.Col, f.Row)
	}
	// Stored settings may supply the other half of the pair.
	if f.IsSet("width") && f.IsSet("col") && f.Col >= f.Width {
		return fmt.Errorf("%w: start column %d outside width %d", ErrInvalid, f.Col, f.Width)
	}
	if f.IsSet("height") && f.IsSet("row") && f.Row >= f.Height {
		return fmt.Errorf("%w: start row %d outside height %d", ErrInvalid, f.Row, f.Height)
	}
	if f.Sprite != "small" && f.Sprite != "medium" && f.Sprite != "large" {
		return fmt.Errorf("%w: sprite size %q, use 'small', 'medium' or 'large'", ErrInvalid, f.Sprite)
	}
	if f.Theme != "day" && f.Theme != "night" && f.Theme != "real" {
		return fmt.Errorf("%w: theme %q, use 'day', 'night' or 'real'", ErrInvalid, f.Theme)
	}
	return nil
}
