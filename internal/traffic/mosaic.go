// Package traffic assembles the independently received 3×3 traffic
// tiles into a single mosaic image.
package traffic

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"regexp"
	"sync"
)

const (
	// MosaicSize is the edge length of the assembled mosaic canvas.
	MosaicSize = 600
	// TileSize is the edge length of one tile slot.
	TileSize = 200

	gridSize  = 3
	slotCount = gridSize * gridSize
)

// ErrMalformedTileName indicates a tile filename the slot coordinates
// cannot be parsed from. The file is skipped and deleted; the rest of
// the batch continues.
var ErrMalformedTileName = errors.New("malformed traffic tile name")

// Tile filenames carry the 1-indexed row and column between
// underscores, e.g. TMT_foo_2_3_bar.png is row 2, column 3.
var tileNameRe = regexp.MustCompile(`_([123])_([123])_`)

// Tile is one positionally addressed piece of the traffic mosaic. X and
// Y are zero-indexed column and row.
type Tile struct {
	X, Y  int
	Image image.Image
}

// NewTile builds a tile from its filename and decoded image.
func NewTile(filename string, img image.Image) (Tile, error) {
	x, y, err := ParseSlot(filename)
	if err != nil {
		return Tile{}, err
	}
	return Tile{X: x, Y: y, Image: img}, nil
}

// ParseSlot derives the zero-indexed slot coordinate (x=col-1, y=row-1)
// from a tile filename.
func ParseSlot(filename string) (x, y int, err error) {
	match := tileNameRe.FindStringSubmatch(filename)
	if match == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTileName, filename)
	}
	// Digits are constrained to 1-3 by the pattern.
	row := int(match[1][0] - '0')
	col := int(match[2][0] - '0')
	return col - 1, row - 1, nil
}

// Mosaic accumulates tiles onto a 600×600 canvas, tracking which of the
// nine slots have been filled in the current cycle. The canvas is never
// cleared: after a cycle completes, new tiles overwrite old ones in
// place, so every slot always shows the most recently received tile.
type Mosaic struct {
	mu      sync.Mutex
	canvas  *image.RGBA
	filled  [slotCount]bool
	version uint64
}

// NewMosaic creates an empty, fully transparent mosaic.
func NewMosaic() *Mosaic {
	return &Mosaic{
		canvas: image.NewRGBA(image.Rect(0, 0, MosaicSize, MosaicSize)),
	}
}

// AddTile pastes a tile at its slot and marks the slot filled. When
// this fills the ninth distinct slot the cycle completes: the tracking
// table resets and AddTile reports true. Duplicate slots within a cycle
// are last-write-wins.
func (m *Mosaic) AddTile(tile Tile) (cycleComplete bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := image.Rect(
		tile.X*TileSize,
		tile.Y*TileSize,
		(tile.X+1)*TileSize,
		(tile.Y+1)*TileSize,
	)
	draw.Draw(m.canvas, slot, tile.Image, tile.Image.Bounds().Min, draw.Src)
	m.filled[tile.X+tile.Y*gridSize] = true
	m.version++

	for _, f := range m.filled {
		if !f {
			return false
		}
	}
	m.filled = [slotCount]bool{}
	return true
}

// Snapshot returns a copy of the current canvas, safe to hand to the
// display layer while ingest keeps pasting.
func (m *Mosaic) Snapshot() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := image.NewRGBA(m.canvas.Bounds())
	copy(copied.Pix, m.canvas.Pix)
	return copied
}

// FilledSlots reports which slots have been filled in the current
// cycle, indexed x + y*3.
func (m *Mosaic) FilledSlots() [slotCount]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filled
}

// Version increments on every paste; the display layer uses it to
// decide when to refetch.
func (m *Mosaic) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
