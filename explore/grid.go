package explore

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// neighborOffsets enumerates the 8-connected neighborhood (N, NE, E, SE, S,
// SW, W, NW) as (dx, dy) pairs.
var neighborOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Validate checks the grid's dimensions against its data length.
func (g *OccupancyGrid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return ErrEmptyGrid
	}
	if len(g.Data) != g.Width*g.Height {
		return fmt.Errorf("explore: grid data length %d does not match %dx%d", len(g.Data), g.Width, g.Height)
	}
	return nil
}

// NumCells returns the total cell count.
func (g *OccupancyGrid) NumCells() int {
	return g.Width * g.Height
}

// InBounds reports whether c is a valid cell index.
func (g *OccupancyGrid) InBounds(c int) bool {
	return c >= 0 && c < len(g.Data)
}

// CheckCell returns ErrCellOutOfRange if c is not a valid cell index.
// Callers of the classification predicates must validate indices first;
// the predicates themselves index the grid directly.
func (g *OccupancyGrid) CheckCell(c int) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %d (grid %dx%d)", ErrCellOutOfRange, c, g.Width, g.Height)
	}
	return nil
}

func (g *OccupancyGrid) freeThreshold() int8 {
	if g.FreeThreshold > 0 {
		return g.FreeThreshold
	}
	return DefaultFreeThreshold
}

func (g *OccupancyGrid) occupiedThreshold() int8 {
	if g.OccupiedThreshold > 0 {
		return g.OccupiedThreshold
	}
	return DefaultOccupiedThreshold
}

// IsUnknown reports whether cell c is unobserved space.
func (g *OccupancyGrid) IsUnknown(c int) bool {
	return g.Data[c] < 0
}

// IsFree reports whether cell c is explored free space.
func (g *OccupancyGrid) IsFree(c int) bool {
	v := g.Data[c]
	return v >= 0 && v < g.freeThreshold()
}

// IsOccupied reports whether cell c is explored occupied space.
func (g *OccupancyGrid) IsOccupied(c int) bool {
	return g.Data[c] >= g.occupiedThreshold()
}

// Neighbors appends the in-bounds 8-connected neighbors of c to buf and
// returns the extended slice. Passing a reused buffer avoids per-call
// allocations in the extraction scan.
func (g *OccupancyGrid) Neighbors(c int, buf []int) []int {
	x := c % g.Width
	y := c / g.Width
	for _, off := range neighborOffsets {
		nx := x + off[0]
		ny := y + off[1]
		if nx < 0 || nx >= g.Width || ny < 0 || ny >= g.Height {
			continue
		}
		buf = append(buf, ny*g.Width+nx)
	}
	return buf
}

// CellIndex converts (x, y) grid coordinates to a cell index.
func (g *OccupancyGrid) CellIndex(x, y int) int {
	return y*g.Width + x
}

// CellPoint returns the world coordinates of cell c's center.
func (g *OccupancyGrid) CellPoint(c int) orb.Point {
	x := c % g.Width
	y := c / g.Width
	return orb.Point{
		g.Origin.X + (float64(x)+0.5)*g.Resolution,
		g.Origin.Y + (float64(y)+0.5)*g.Resolution,
	}
}

// WorldCell converts a world coordinate to the containing cell index.
// Returns ErrCellOutOfRange for points outside the grid. Floor rather than
// truncate: points just left of or below the origin must not land in cell 0.
func (g *OccupancyGrid) WorldCell(p Point) (int, error) {
	x := math.Floor((p.X - g.Origin.X) / g.Resolution)
	y := math.Floor((p.Y - g.Origin.Y) / g.Resolution)
	if x < 0 || x >= float64(g.Width) || y < 0 || y >= float64(g.Height) {
		return 0, fmt.Errorf("%w: world point (%.2f, %.2f)", ErrCellOutOfRange, p.X, p.Y)
	}
	return g.CellIndex(int(x), int(y)), nil
}
