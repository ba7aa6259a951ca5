package engine

import (
	"time"

	"github.com/vinser/bounce/internal/grid"
)

// paintWalls paints every boundary tile exactly once.
func (e *Engine) paintWalls() {
	for x := 0; x < e.width; x++ {
		e.renderer.PaintTile(grid.Wall, x, 0)
		e.renderer.PaintTile(grid.Wall, x, e.height-1)
	}
	for y := 1; y < e.height-1; y++ {
		e.renderer.PaintTile(grid.Wall, 0, y)
		e.renderer.PaintTile(grid.Wall, e.width-1, y)
	}
}

// advance commits one move and paints the marker on its new tile.
func (e *Engine) advance(now time.Time) {
	from := e.state.Position
	flipped := bounce(e.state, e.height)
	to := e.state.Position

	e.renderer.PaintTile(grid.Marker, to.Col, to.Row)
	e.state.LastMove = now

	e.log.Debug("advance", "row", to.Row, "direction", e.state.Direction, "flipped", flipped)
	if e.onAdvance != nil {
		e.onAdvance(Advance{
			From:      from,
			To:        to,
			Direction: e.state.Direction,
			Flipped:   flipped,
			At:        now,
		})
	}
}

// bounce moves s one row along its facing and reports whether the facing flipped.
// The facing only turns when the marker is already on row 1 going up, or on
// row height-1 going down, so it reverses one tick after reaching either.
func bounce(s *grid.State, height int) bool {
	switch s.Direction {
	case grid.Ascending:
		if s.Position.Row > 1 {
			s.Position.Row--
			return false
		}
		s.Position.Row++
		s.Direction = grid.Descending
		return true
	default:
		if s.Position.Row < height-1 {
			s.Position.Row++
			return false
		}
		s.Position.Row--
		s.Direction = grid.Ascending
		return true
	}
}
