package grid

// Position represents a tile coordinate on the grid.
type Position struct {
	Col, Row int
}

// Direction represents the vertical facing of the marker.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unknown"
	}
}

// TileKind is what a grid cell shows.
type TileKind int

const (
	Empty TileKind = iota
	Wall
	Marker
)

func (k TileKind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Marker:
		return "marker"
	default:
		return "empty"
	}
}
