package explore

import "errors"

var (
	// ErrNoFrontiers indicates a selection was requested with no stored frontiers.
	ErrNoFrontiers = errors.New("explore: no candidate frontiers")
	// ErrUnknownStrategy indicates a strategy name not present in the registry.
	ErrUnknownStrategy = errors.New("explore: unknown strategy")
	// ErrCellOutOfRange indicates a cell index outside the grid bounds.
	ErrCellOutOfRange = errors.New("explore: cell index out of grid range")
	// ErrEmptyGrid indicates a grid with no cells or inconsistent dimensions.
	ErrEmptyGrid = errors.New("explore: grid must have at least one row and one column")
)
