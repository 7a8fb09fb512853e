package explore

import (
	"github.com/paulmach/orb"
)

// Frontier is one connected boundary region between explored free space and
// unknown space. It is a per-cycle value: extraction produces a fresh set
// every map update and the previous cycle's frontiers are discarded.
type Frontier struct {
	Cells    []int     // grid cell indices in discovery order
	Centroid orb.Point // world-coordinate centroid of the region
}

// Size returns the cell count of the frontier.
func (f *Frontier) Size() int {
	return len(f.Cells)
}

// NewFrontier builds a frontier from cells of g, computing the centroid.
// Cell indices must be in range (caller contract).
func NewFrontier(g *OccupancyGrid, cells []int) *Frontier {
	f := &Frontier{Cells: cells}
	if len(cells) == 0 {
		return f
	}
	var sumX, sumY float64
	for _, c := range cells {
		p := g.CellPoint(c)
		sumX += p[0]
		sumY += p[1]
	}
	n := float64(len(cells))
	f.Centroid = orb.Point{sumX / n, sumY / n}
	return f
}

// IsFrontierCell reports whether cell c is part of a frontier boundary:
// explored free space with at least one unknown 8-connected neighbor.
// c must be a valid cell index (see OccupancyGrid.CheckCell).
func IsFrontierCell(g *OccupancyGrid, c int) bool {
	if !g.IsFree(c) {
		return false
	}
	var buf [8]int
	for _, n := range g.Neighbors(c, buf[:0]) {
		if g.IsUnknown(n) {
			return true
		}
	}
	return false
}

// ExtractFrontiers scans the grid and groups frontier cells into connected
// regions via breadth-first search over the 8-connected neighborhood, so a
// diagonal run of boundary cells forms a single region. Regions are returned
// in scan order (top-left first); no size filtering is applied here.
func ExtractFrontiers(g *OccupancyGrid) []*Frontier {
	var frontiers []*Frontier
	visited := make([]bool, len(g.Data))
	var queue []int
	var buf [8]int

	for c := range g.Data {
		if visited[c] || !IsFrontierCell(g, c) {
			continue
		}

		// Flood the connected region starting at c.
		var cells []int
		visited[c] = true
		queue = append(queue[:0], c)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cells = append(cells, cur)

			for _, n := range g.Neighbors(cur, buf[:0]) {
				if visited[n] || !IsFrontierCell(g, n) {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}

		frontiers = append(frontiers, NewFrontier(g, cells))
	}

	return frontiers
}
