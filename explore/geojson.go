package explore

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryMultiPoint GeometryType = "MultiPoint"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// PointGeometry converts an orb.Point to a GeoJSON Point geometry.
func PointGeometry(p orb.Point) *Geometry {
	coordsJSON, _ := json.Marshal([2]float64{p[0], p[1]})
	return &Geometry{
		Type:        GeometryPoint,
		Coordinates: coordsJSON,
	}
}

// LineStringGeometry converts an orb.LineString to a GeoJSON LineString.
func LineStringGeometry(ls orb.LineString) *Geometry {
	coords := make([][2]float64, len(ls))
	for i, p := range ls {
		coords[i] = [2]float64{p[0], p[1]}
	}
	coordsJSON, _ := json.Marshal(coords)
	return &Geometry{
		Type:        GeometryLineString,
		Coordinates: coordsJSON,
	}
}

// frontierOutline traces a frontier region as a line string: cells ordered
// by angle around the centroid, then Douglas-Peucker simplified with one
// cell of tolerance. Frontiers are thin boundary bands, so the angular
// sweep approximates the boundary trace well enough for display.
func frontierOutline(g *OccupancyGrid, f *Frontier) orb.LineString {
	pts := make(orb.LineString, 0, f.Size())
	for _, c := range f.Cells {
		pts = append(pts, g.CellPoint(c))
	}
	sort.SliceStable(pts, func(a, b int) bool {
		angA := math.Atan2(pts[a][1]-f.Centroid[1], pts[a][0]-f.Centroid[0])
		angB := math.Atan2(pts[b][1]-f.Centroid[1], pts[b][0]-f.Centroid[0])
		return angA < angB
	})

	if len(pts) <= 2 {
		return pts
	}
	return simplify.DouglasPeucker(g.Resolution).Simplify(pts.Clone()).(orb.LineString)
}

// FrontiersToFeatureCollection converts a ranked frontier snapshot into a
// GeoJSON FeatureCollection: one centroid Point feature and one outline
// LineString feature per frontier, with rank/size/score properties.
func FrontiersToFeatureCollection(g *OccupancyGrid, snapshot []FrontierSnapshot) *FeatureCollection {
	fc := NewFeatureCollection()

	for _, fs := range snapshot {
		props := map[string]interface{}{
			"rank":  fs.Rank,
			"size":  fs.Size,
			"score": fs.Score,
		}

		centroid := NewFeature(PointGeometry(orb.Point{fs.Centroid.X, fs.Centroid.Y}), props)
		centroid.Properties["kind"] = "centroid"
		fc.AddFeature(centroid)

		if g != nil && fs.Frontier != nil && fs.Frontier.Size() > 1 {
			outline := NewFeature(LineStringGeometry(frontierOutline(g, fs.Frontier)), map[string]interface{}{
				"rank":  fs.Rank,
				"size":  fs.Size,
				"score": fs.Score,
				"kind":  "outline",
			})
			fc.AddFeature(outline)
		}
	}

	return fc
}

// GoalToFeature converts a goal to a GeoJSON Point feature.
func GoalToFeature(goal *Goal) *Feature {
	return NewFeature(PointGeometry(orb.Point{goal.X, goal.Y}), map[string]interface{}{
		"kind":      "goal",
		"robotId":   goal.RobotID,
		"size":      goal.Size,
		"score":     goal.Score,
		"timestamp": goal.Timestamp,
	})
}
