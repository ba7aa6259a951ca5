// Package board is a terminal tile grid: the engine paints walls and the
// marker into it and the play screen renders it with lipgloss.
package board

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinser/bounce/internal/grid"
	"github.com/vinser/bounce/internal/style"
)

// Sprite sizes
const (
	SpriteSmall   = "small"
	SpriteMedium  = "medium"
	SpriteLarge   = "large"
	SpriteDefault = SpriteMedium
)

var ErrOutOfBounds = errors.New("out of bounds")

type Board struct {
	mu     sync.RWMutex
	width  int
	height int
	tiles  [][]grid.TileKind

	sprites      map[grid.TileKind][]string
	dimMarker    []string
	spriteWidth  int
	spriteHeight int
}

// New returns an empty width x height board. light in [0, 1] shades the sprites.
func New(width, height int, spriteSize string, light float64) *Board {
	tiles := make([][]grid.TileKind, height)
	for y := range tiles {
		tiles[y] = make([]grid.TileKind, width)
	}
	b := &Board{
		width:  width,
		height: height,
		tiles:  tiles,
	}
	b.SetSprites(spriteSize, light)
	return b
}

// Size returns the board dimensions in tiles.
func (b *Board) Size() (int, int) {
	return b.width, b.height
}

// ClearAllTiles empties every tile.
func (b *Board) ClearAllTiles() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, row := range b.tiles {
		for x := range row {
			row[x] = grid.Empty
		}
	}
}

// PaintTile sets the tile at col, row. Tiles outside the board are ignored.
func (b *Board) PaintTile(kind grid.TileKind, col, row int) {
	if !b.inside(col, row) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tiles[row][col] = kind
}

// TileAt returns the tile at col, row.
func (b *Board) TileAt(col, row int) (grid.TileKind, error) {
	if !b.inside(col, row) {
		return grid.Empty, ErrOutOfBounds
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tiles[row][col], nil
}

// SpriteDims returns the characters per tile horizontally and the lines per tile.
func (b *Board) SpriteDims() (int, int) {
	return b.spriteWidth, b.spriteHeight
}

// SetSprites rebuilds the sprites for the given size and light.
func (b *Board) SetSprites(spriteSize string, light float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sprites = make(map[grid.TileKind][]string)
	for _, kind := range []grid.TileKind{grid.Empty, grid.Wall, grid.Marker} {
		brightStyle, dimStyle := style.Styles(tileColor(kind), light)
		var sprite, dim []string
		for _, s := range getSprite(spriteSize, kind) {
			sprite = append(sprite, brightStyle.Render(s))
			dim = append(dim, dimStyle.Render(s))
		}
		b.sprites[kind] = sprite
		if kind == grid.Marker {
			b.dimMarker = dim
		}
	}
	b.spriteWidth, b.spriteHeight = spriteDims(spriteSize)
}

// View renders the board. The marker blinks between bright and dim every 500ms of now.
func (b *Board) View(now time.Time) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	isBright := (now.UnixNano()/int64(time.Millisecond)/500)%2 == 0
	lines := make([]string, 0, b.height*b.spriteHeight)
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		for line := 0; line < b.spriteHeight; line++ {
			sb.Reset()
			for x := 0; x < b.width; x++ {
				sprite := b.sprites[b.tiles[y][x]]
				if b.tiles[y][x] == grid.Marker && !isBright {
					sprite = b.dimMarker
				}
				sb.WriteString(sprite[line])
			}
			lines = append(lines, sb.String())
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (b *Board) inside(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}

func tileColor(kind grid.TileKind) style.RGB {
	switch kind {
	case grid.Wall:
		return style.RGBColor["green"]
	case grid.Marker:
		return style.RGBColor["red"]
	default:
		return style.RGBColor["grey"]
	}
}

func spriteDims(size string) (int, int) {
	switch size {
	case SpriteSmall:
		return 1, 1
	case SpriteLarge:
		return 4, 2
	default:
		return 2, 1
	}
}

func getSprite(size string, kind grid.TileKind) []string {
	switch size {
	case SpriteSmall:
		switch kind {
		case grid.Wall:
			return []string{"✦"}
		case grid.Marker:
			return []string{"★"}
		default:
			return []string{" "}
		}
	case SpriteLarge:
		switch kind {
		case grid.Wall:
			return []string{"▗▆▆▖", "▝▀▀▘"}
		case grid.Marker:
			return []string{" ▟▙ ", " ▜▛ "}
		default:
			return []string{"    ", "    "}
		}
	default:
		switch kind {
		case grid.Wall:
			return []string{"✦✦"}
		case grid.Marker:
			return []string{"◀▶"}
		default:
			return []string{"  "}
		}
	}
}
