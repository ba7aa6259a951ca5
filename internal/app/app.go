package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/daylight"
	"github.com/vinser/bounce/internal/flags"
	"github.com/vinser/bounce/internal/geoip"
	"github.com/vinser/bounce/internal/grid"
	"github.com/vinser/bounce/internal/sound"
	"github.com/vinser/bounce/internal/state"
)

const (
	appName       = "bounce"
	locateTimeout = 3 * time.Second
	headerRows    = 3 // rule, header and help lines around the board
)

// Config is what main hands over after parsing the command line.
type Config struct {
	Flags     *flags.Flags
	StatePath string
	Stderr    io.Writer
	Version   string
}

// Run prepares settings and runs either the terminal UI or the headless loop.
func Run(ctx context.Context, cfg Config) error {
	fl := cfg.Flags
	logger, closer, err := newLogger(fl, cfg.Stderr)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger.Info("starting", "app", appName, "version", cfg.Version, "headless", fl.Headless)

	st := getState(fl, cfg.StatePath, logger)
	if err := st.Save(); err != nil {
		logger.Warn("settings not saved", "path", st.Path(), "err", err)
	}

	if fl.Headless {
		_, err := RunHeadless(ctx, st, fl.Steps, logger)
		return err
	}
	return runTUI(ctx, st, logger)
}

// newLogger picks the log sink. The terminal UI owns the screen, so it only
// logs when a file was asked for.
func newLogger(fl *flags.Flags, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if fl.LogFile != "" {
		f, err := tea.LogToFile(fl.LogFile, appName)
		if err != nil {
			return nil, nil, err
		}
		return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), f, nil
	}
	if fl.Headless {
		return slog.New(slog.NewTextHandler(stderr, nil)), nil, nil
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
}

// getState loads saved settings and lays explicitly given flags over them.
func getState(fl *flags.Flags, path string, logger *slog.Logger) *state.State {
	st, err := state.Load(path)
	if err != nil {
		logger.Warn("saved state unreadable, using defaults", "path", path, "err", err)
	}
	if fl.Reset {
		st = state.New(path)
	}

	if fl.IsSet("delay") {
		st.MoveDelayMs = int64(fl.DelayMs)
		if st.Snapshot != nil {
			st.Snapshot[grid.KeyMoveDelay] = st.MoveDelayMs
		}
	}
	// A new board or start tile makes the saved position meaningless.
	for _, name := range []string{"width", "height", "col", "row"} {
		if fl.IsSet(name) {
			st.Snapshot = nil
		}
	}
	if fl.IsSet("width") {
		st.Width = fl.Width
	}
	if fl.IsSet("height") {
		st.Height = fl.Height
	}
	if fl.IsSet("col") {
		st.StartCol = fl.Col
	}
	if fl.IsSet("row") {
		st.StartRow = fl.Row
	}
	if fl.IsSet("sprite-size") {
		st.SpriteSize = fl.Sprite
	}
	if fl.IsSet("theme") {
		st.Theme = fl.Theme
	}
	if fl.IsSet("mute") {
		st.Mute = fl.Mute
	}
	st.Normalize()
	return st
}

type locator interface {
	Locate(ctx context.Context) (daylight.Location, error)
}

// ambientLight returns the board light for the chosen theme. The real theme
// refreshes the stored location and keeps the old one if the lookup fails.
func ambientLight(ctx context.Context, st *state.State, loc locator, now time.Time, logger *slog.Logger) float64 {
	if st.Theme != daylight.ThemeReal {
		return daylight.Light(st.Theme, now, st.Location)
	}
	lctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()
	l, err := loc.Locate(lctx)
	if err != nil {
		logger.Warn("location lookup failed", "err", err)
	} else {
		st.Location = l
	}
	if st.Location.Timezone == "" {
		return daylight.Light(daylight.ThemeDay, now, st.Location)
	}
	return daylight.Light(daylight.ThemeReal, now, st.Location)
}

func runTUI(ctx context.Context, st *state.State, logger *slog.Logger) error {
	light := ambientLight(ctx, st, geoip.New(), time.Now(), logger)

	sm, err := sound.NewManager(sound.CommonSampleRate)
	if err != nil {
		logger.Warn("sound disabled", "err", err)
		sm = nil
	}
	defer sm.Close()
	sm.SetMute(st.Mute)

	b := board.New(st.Width, st.Height, st.SpriteSize, light)
	m, err := New(st, sm, b, logger)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	fm, ok := final.(Model)
	if errors.Is(err, tea.ErrProgramKilled) {
		if ok {
			fm.play.Save()
		}
		return nil
	}
	if err != nil {
		return err
	}
	if ok {
		return fm.Err()
	}
	return nil
}
