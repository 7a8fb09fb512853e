package explore

import (
	"fmt"
	"math"
	"strconv"
)

// Context bundles the ambient exploration state a strategy may consult when
// scoring a frontier. All fields are supplied by the caller; strategies must
// not retain them across cycles.
type Context struct {
	Grid  *OccupancyGrid
	Robot Pose
}

// Strategy scores a frontier's desirability under one criterion. Higher is
// better. Implementations must be pure functions of the frontier and context
// within a cycle.
type Strategy interface {
	Name() string
	Score(f *Frontier, ctx *Context) float64
}

// StrategyFactory constructs a strategy from string-keyed parameters.
type StrategyFactory func(params map[string]string) (Strategy, error)

// Built-in strategy names.
const (
	StrategyMaxSize  = "max_size"
	StrategyClosest  = "closest"
	StrategyInfoGain = "info_gain"
)

var strategyRegistry = map[string]StrategyFactory{
	StrategyMaxSize:  newMaxSizeStrategy,
	StrategyClosest:  newClosestStrategy,
	StrategyInfoGain: newInfoGainStrategy,
}

// RegisterStrategy adds a named strategy factory to the registry,
// replacing any existing factory of the same name.
func RegisterStrategy(name string, factory StrategyFactory) {
	strategyRegistry[name] = factory
}

// NewStrategy constructs the named strategy with the given parameters.
// Returns ErrUnknownStrategy if the name is not registered.
func NewStrategy(name string, params map[string]string) (Strategy, error) {
	factory, ok := strategyRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return factory(params)
}

// paramFloat reads a float parameter, falling back to def when the key is
// absent. A present but malformed value is a configuration error.
func paramFloat(params map[string]string, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: invalid value %q", key, raw)
	}
	return v, nil
}

func paramInt(params map[string]string, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: invalid value %q", key, raw)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// max_size: reward larger frontiers
// ---------------------------------------------------------------------------

type maxSizeStrategy struct {
	weight float64
}

func newMaxSizeStrategy(params map[string]string) (Strategy, error) {
	w, err := paramFloat(params, "weight", 1.0)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", StrategyMaxSize, err)
	}
	return &maxSizeStrategy{weight: w}, nil
}

func (s *maxSizeStrategy) Name() string { return StrategyMaxSize }

func (s *maxSizeStrategy) Score(f *Frontier, ctx *Context) float64 {
	return s.weight * float64(f.Size())
}

// ---------------------------------------------------------------------------
// closest: reward frontiers near the robot (inverse distance)
// ---------------------------------------------------------------------------

type closestStrategy struct {
	weight float64
}

func newClosestStrategy(params map[string]string) (Strategy, error) {
	w, err := paramFloat(params, "weight", 1.0)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", StrategyClosest, err)
	}
	return &closestStrategy{weight: w}, nil
}

func (s *closestStrategy) Name() string { return StrategyClosest }

func (s *closestStrategy) Score(f *Frontier, ctx *Context) float64 {
	d := math.Hypot(f.Centroid[0]-ctx.Robot.X, f.Centroid[1]-ctx.Robot.Y)
	return s.weight / (1.0 + d)
}

// ---------------------------------------------------------------------------
// info_gain: reward frontiers expected to reveal more unknown area,
// estimated as the unknown-cell count in a square window around the centroid
// ---------------------------------------------------------------------------

type infoGainStrategy struct {
	weight float64
	radius int // window half-width in cells
}

func newInfoGainStrategy(params map[string]string) (Strategy, error) {
	w, err := paramFloat(params, "weight", 1.0)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", StrategyInfoGain, err)
	}
	r, err := paramInt(params, "radius", 10)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", StrategyInfoGain, err)
	}
	if r < 1 {
		return nil, fmt.Errorf("strategy %s: parameter %q must be >= 1, got %d", StrategyInfoGain, "radius", r)
	}
	return &infoGainStrategy{weight: w, radius: r}, nil
}

func (s *infoGainStrategy) Name() string { return StrategyInfoGain }

func (s *infoGainStrategy) Score(f *Frontier, ctx *Context) float64 {
	g := ctx.Grid
	if g == nil || f.Size() == 0 {
		return 0
	}

	center, err := g.WorldCell(Point{X: f.Centroid[0], Y: f.Centroid[1]})
	if err != nil {
		// Centroid of a concave region can fall outside the grid; anchor
		// the window on the first frontier cell instead.
		center = f.Cells[0]
	}
	cx := center % g.Width
	cy := center / g.Width

	unknown := 0
	for y := cy - s.radius; y <= cy+s.radius; y++ {
		if y < 0 || y >= g.Height {
			continue
		}
		for x := cx - s.radius; x <= cx+s.radius; x++ {
			if x < 0 || x >= g.Width {
				continue
			}
			if g.IsUnknown(g.CellIndex(x, y)) {
				unknown++
			}
		}
	}
	return s.weight * float64(unknown)
}
