package explore

import (
	"testing"
)

// gridFromRows builds a grid from a character map, row 0 at y=0.
// 'U' unknown, '.' free, '#' occupied, '~' mid-probability (neither).
func gridFromRows(rows []string) *OccupancyGrid {
	height := len(rows)
	width := len(rows[0])
	data := make([]int8, 0, width*height)
	for _, row := range rows {
		for _, ch := range row {
			switch ch {
			case 'U':
				data = append(data, CellUnknown)
			case '.':
				data = append(data, 0)
			case '#':
				data = append(data, 100)
			case '~':
				data = append(data, 50)
			default:
				panic("unknown grid cell character")
			}
		}
	}
	return &OccupancyGrid{
		Width:      width,
		Height:     height,
		Resolution: 1.0,
		Data:       data,
	}
}

// ---------------------------------------------------------------------------
// Frontier cell predicate
// ---------------------------------------------------------------------------

func TestIsFrontierCell(t *testing.T) {
	g := gridFromRows([]string{
		"UUU..",
		".....",
		"##~..",
	})

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"free under unknown", 0, 1, true},
		{"free diagonal to unknown", 3, 1, true},
		{"free with no unknown neighbor", 4, 1, false},
		{"unknown cell itself", 1, 0, false},
		{"occupied next to unknown", 0, 2, false},
		{"mid-probability cell", 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsFrontierCell(g, g.CellIndex(tt.x, tt.y))
			if got != tt.want {
				t.Errorf("IsFrontierCell(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestIsFrontierCellAtGridEdge(t *testing.T) {
	// The map border is not a frontier: only explored/unknown boundaries count.
	g := gridFromRows([]string{
		"...",
		"...",
	})
	for c := range g.Data {
		if IsFrontierCell(g, c) {
			t.Errorf("cell %d at map border must not be a frontier cell", c)
		}
	}
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

func TestExtractFrontiersSingleRegion(t *testing.T) {
	g := gridFromRows([]string{
		"UUUUU",
		".....",
		".....",
	})

	frontiers := ExtractFrontiers(g)
	if len(frontiers) != 1 {
		t.Fatalf("expected 1 frontier, got %d", len(frontiers))
	}
	if frontiers[0].Size() != 5 {
		t.Errorf("expected frontier of 5 cells, got %d", frontiers[0].Size())
	}
}

func TestExtractFrontiersSeparateRegions(t *testing.T) {
	g := gridFromRows([]string{
		"U...U",
		".....",
		".....",
	})

	frontiers := ExtractFrontiers(g)
	if len(frontiers) != 2 {
		t.Fatalf("expected 2 frontiers, got %d", len(frontiers))
	}
	for i, f := range frontiers {
		if f.Size() != 3 {
			t.Errorf("frontier %d: expected 3 cells, got %d", i, f.Size())
		}
	}
}

func TestExtractFrontiersDiagonalConnectivity(t *testing.T) {
	// The two frontier cells touch only diagonally; 8-connectivity must
	// merge them into a single region.
	g := gridFromRows([]string{
		"U.#",
		"##.",
		"##U",
	})

	frontiers := ExtractFrontiers(g)
	if len(frontiers) != 1 {
		t.Fatalf("expected diagonal cells to form 1 frontier, got %d", len(frontiers))
	}
}

func TestExtractFrontiersNone(t *testing.T) {
	t.Run("fully explored", func(t *testing.T) {
		g := gridFromRows([]string{
			"..#",
			".##",
		})
		if got := ExtractFrontiers(g); len(got) != 0 {
			t.Errorf("expected no frontiers, got %d", len(got))
		}
	})

	t.Run("fully unknown", func(t *testing.T) {
		g := gridFromRows([]string{
			"UUU",
			"UUU",
		})
		if got := ExtractFrontiers(g); len(got) != 0 {
			t.Errorf("expected no frontiers, got %d", len(got))
		}
	})

	t.Run("unknown behind wall", func(t *testing.T) {
		// Occupied cells separate free space from unknown space; the free
		// cells never touch the unknown region.
		g := gridFromRows([]string{
			"..##UU",
			"..##UU",
		})
		if got := ExtractFrontiers(g); len(got) != 0 {
			t.Errorf("expected no frontiers, got %d", len(got))
		}
	})
}

func TestExtractFrontiersScanOrder(t *testing.T) {
	g := gridFromRows([]string{
		".....",
		"U...U",
		".....",
	})

	frontiers := ExtractFrontiers(g)
	if len(frontiers) != 2 {
		t.Fatalf("expected 2 frontiers, got %d", len(frontiers))
	}
	// The region around the left unknown cell is discovered first.
	if frontiers[0].Centroid[0] >= frontiers[1].Centroid[0] {
		t.Errorf("expected scan order left-to-right, centroids %v, %v",
			frontiers[0].Centroid, frontiers[1].Centroid)
	}
}

// ---------------------------------------------------------------------------
// Centroid
// ---------------------------------------------------------------------------

func TestNewFrontierCentroid(t *testing.T) {
	g := &OccupancyGrid{
		Width:      4,
		Height:     4,
		Resolution: 0.5,
		Origin:     Point{X: 10, Y: 20},
		Data:       make([]int8, 16),
	}

	t.Run("single cell", func(t *testing.T) {
		f := NewFrontier(g, []int{g.CellIndex(1, 2)})
		if f.Centroid[0] != 10.75 || f.Centroid[1] != 21.25 {
			t.Errorf("expected centroid (10.75, 21.25), got %v", f.Centroid)
		}
	})

	t.Run("pair of cells", func(t *testing.T) {
		f := NewFrontier(g, []int{g.CellIndex(0, 0), g.CellIndex(2, 0)})
		if f.Centroid[0] != 10.75 || f.Centroid[1] != 20.25 {
			t.Errorf("expected centroid (10.75, 20.25), got %v", f.Centroid)
		}
	})

	t.Run("empty", func(t *testing.T) {
		f := NewFrontier(g, nil)
		if f.Size() != 0 {
			t.Errorf("expected size 0, got %d", f.Size())
		}
	})
}
