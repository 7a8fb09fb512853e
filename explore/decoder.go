package explore

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeGridData decodes an occupancy-grid payload from either raw JSON or
// zlib-compressed JSON (robots on constrained links compress the grid).
func DecodeGridData(data []byte) (*OccupancyGrid, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	jsonBytes := data
	if data[0] != '{' {
		inflated, err := inflateZlib(data)
		if err != nil {
			return nil, fmt.Errorf("unknown format: not JSON or zlib-compressed")
		}
		jsonBytes = inflated
	}

	return ParseGridJSON(jsonBytes)
}

// ParseGridJSON parses and validates an occupancy grid from JSON bytes.
func ParseGridJSON(data []byte) (*OccupancyGrid, error) {
	var g OccupancyGrid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing grid JSON: %w", err)
	}
	if g.Resolution <= 0 {
		return nil, fmt.Errorf("grid resolution must be positive, got %g", g.Resolution)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ParseGridFile loads an occupancy grid from a JSON export on disk.
func ParseGridFile(path string) (*OccupancyGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grid file: %w", err)
	}
	return DecodeGridData(data)
}

// inflateZlib decompresses zlib-compressed data.
func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating zlib reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflating data: %w", err)
	}
	return out, nil
}
