package explore

import (
	"fmt"
	"io"
	"sort"
)

// FrontiersMap owns the current cycle's frontier collection and the
// registered evaluation strategies, and selects the most valuable frontier.
//
// It is not safe for concurrent use: one control loop drives
// configure → populate → select per cycle. Strategies are held by reference
// and must outlive the map.
type FrontiersMap struct {
	ctx        Context
	frontiers  []*Frontier
	strategies []Strategy

	minSize    int
	verbosity  int
	configured bool
}

// NewFrontiersMap creates an unconfigured map bound to the given grid.
// The grid may be nil until SetGrid is called; selection with strategies
// that consult the grid requires it.
func NewFrontiersMap(grid *OccupancyGrid) *FrontiersMap {
	return &FrontiersMap{ctx: Context{Grid: grid}}
}

// SetGrid rebinds the occupancy grid used by the frontier-cell predicate
// and passed to strategies.
func (m *FrontiersMap) SetGrid(g *OccupancyGrid) { m.ctx.Grid = g }

// SetRobotPose updates the robot pose passed to strategies.
func (m *FrontiersMap) SetRobotPose(p Pose) { m.ctx.Robot = p }

// Grid returns the currently bound occupancy grid.
func (m *FrontiersMap) Grid() *OccupancyGrid { return m.ctx.Grid }

// Configured reports whether Configure has succeeded at least once.
func (m *FrontiersMap) Configured() bool { return m.configured }

// MinimumSize returns the configured frontier size threshold.
func (m *FrontiersMap) MinimumSize() int { return m.minSize }

// Verbosity returns the configured verbosity level.
func (m *FrontiersMap) Verbosity() int { return m.verbosity }

// Len returns the number of stored frontiers.
func (m *FrontiersMap) Len() int { return len(m.frontiers) }

// Strategies returns the registered strategies in registration order.
func (m *FrontiersMap) Strategies() []Strategy {
	out := make([]Strategy, len(m.strategies))
	copy(out, m.strategies)
	return out
}

// Configure establishes the size threshold, verbosity, and strategy set
// from cfg, replacing any previous configuration. The apply is atomic: on
// any error (negative threshold, unknown strategy name, malformed strategy
// parameter) the map keeps its prior configuration unchanged.
func (m *FrontiersMap) Configure(cfg ExplorationConfig) error {
	if cfg.MinFrontierSize < 0 {
		return fmt.Errorf("minFrontierSize must be >= 0, got %d", cfg.MinFrontierSize)
	}

	// Stage the full strategy set before touching any state.
	staged := make([]Strategy, 0, len(cfg.Strategies))
	for i, sc := range cfg.Strategies {
		s, err := NewStrategy(sc.Name, sc.Params)
		if err != nil {
			return fmt.Errorf("strategies[%d]: %w", i, err)
		}
		staged = append(staged, s)
	}

	m.minSize = cfg.MinFrontierSize
	m.verbosity = cfg.Verbosity
	m.strategies = staged
	m.configured = true
	return nil
}

// Add appends one frontier without filtering. Callers wanting the size
// filter applied to single additions must check Size themselves.
func (m *FrontiersMap) Add(f *Frontier) {
	m.frontiers = append(m.frontiers, f)
}

// SetFrontiers replaces the stored collection with the candidates meeting
// the minimum size, preserving input order. This is the per-cycle entry
// point; the previous cycle's frontiers are discarded.
func (m *FrontiersMap) SetFrontiers(candidates []*Frontier) {
	kept := make([]*Frontier, 0, len(candidates))
	for _, f := range candidates {
		if f.Size() >= m.minSize {
			kept = append(kept, f)
		}
	}
	m.frontiers = kept
}

// AddStrategy registers a strategy at the end of the strategy list. List
// order defines tie-break priority of equal-total frontiers only through
// insertion order of the frontiers; summation itself is commutative.
func (m *FrontiersMap) AddStrategy(s Strategy) {
	m.strategies = append(m.strategies, s)
}

// AddFrontierValue resolves name against the strategy registry, constructs
// the strategy with params (which may be nil), and registers it.
func (m *FrontiersMap) AddFrontierValue(name string, params map[string]string) error {
	s, err := NewStrategy(name, params)
	if err != nil {
		return err
	}
	m.AddStrategy(s)
	return nil
}

// IsFrontierCell reports whether cell c of the bound grid is a frontier
// boundary cell. c must be in range (see OccupancyGrid.CheckCell).
func (m *FrontiersMap) IsFrontierCell(c int) bool {
	return IsFrontierCell(m.ctx.Grid, c)
}

// scoreTable holds one evaluation pass over the stored frontiers:
// perStrategy[s][i] is strategy s's score for frontier i, totals[i] the
// aggregate. Strategies are evaluated exactly once per frontier so that
// sorting never re-runs a (potentially expensive) strategy.
type scoreTable struct {
	perStrategy [][]float64
	totals      []float64
}

func (m *FrontiersMap) evaluate() scoreTable {
	t := scoreTable{
		perStrategy: make([][]float64, len(m.strategies)),
		totals:      make([]float64, len(m.frontiers)),
	}
	for si, s := range m.strategies {
		row := make([]float64, len(m.frontiers))
		for fi, f := range m.frontiers {
			v := s.Score(f, &m.ctx)
			row[fi] = v
			t.totals[fi] += v
		}
		t.perStrategy[si] = row
	}
	return t
}

// order returns frontier indices from most to least valuable. Equal totals
// keep insertion order, so repeated rankings of identical state are
// identical.
func (t scoreTable) order() []int {
	idx := make([]int, len(t.totals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.totals[idx[a]] > t.totals[idx[b]]
	})
	return idx
}

// Best returns the most valuable frontier under the registered strategies,
// together with its aggregate score. Returns ErrNoFrontiers when the
// collection is empty; it never fabricates a default frontier.
func (m *FrontiersMap) Best() (*Frontier, float64, error) {
	if len(m.frontiers) == 0 {
		return nil, 0, ErrNoFrontiers
	}
	t := m.evaluate()
	best := 0
	for i := 1; i < len(t.totals); i++ {
		// Strict > keeps the earliest-inserted frontier on ties.
		if t.totals[i] > t.totals[best] {
			best = i
		}
	}
	return m.frontiers[best], t.totals[best], nil
}

// OrderedView returns a fresh snapshot of the stored frontiers sorted from
// most to least valuable. Each call re-evaluates and re-sorts, reflecting
// any frontier or strategy changes since the previous call.
func (m *FrontiersMap) OrderedView() []*Frontier {
	t := m.evaluate()
	out := make([]*Frontier, 0, len(m.frontiers))
	for _, i := range t.order() {
		out = append(out, m.frontiers[i])
	}
	return out
}

// RankedSnapshot evaluates and ranks the stored frontiers, returning one
// snapshot entry per frontier with its rank, centroid, and aggregate score.
// This is the capture point for the HTTP surface and goal publishing.
func (m *FrontiersMap) RankedSnapshot() []FrontierSnapshot {
	t := m.evaluate()
	out := make([]FrontierSnapshot, 0, len(m.frontiers))
	for rank, i := range t.order() {
		f := m.frontiers[i]
		out = append(out, FrontierSnapshot{
			Rank:     rank + 1,
			Size:     f.Size(),
			Centroid: Point{X: f.Centroid[0], Y: f.Centroid[1]},
			Score:    t.totals[i],
			Frontier: f,
		})
	}
	return out
}

// Describe writes a per-frontier breakdown of each strategy's score and the
// aggregate total to w, ranked best first. Diagnostic output only; no state
// is mutated.
func (m *FrontiersMap) Describe(w io.Writer) {
	if len(m.frontiers) == 0 {
		fmt.Fprintln(w, "no frontiers")
		return
	}
	t := m.evaluate()
	for rank, i := range t.order() {
		f := m.frontiers[i]
		fmt.Fprintf(w, "#%d frontier size=%d centroid=(%.2f, %.2f)\n",
			rank+1, f.Size(), f.Centroid[0], f.Centroid[1])
		for si, s := range m.strategies {
			fmt.Fprintf(w, "    %-12s %10.4f\n", s.Name(), t.perStrategy[si][i])
		}
		fmt.Fprintf(w, "    %-12s %10.4f\n", "total", t.totals[i])
	}
}
