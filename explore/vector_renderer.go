package explore

import (
	"image/color"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders one robot's map and frontiers as vector graphics.
// World coordinates (meters) are scaled to canvas millimeters.
type VectorRenderer struct {
	Grid      *OccupancyGrid
	Frontiers []FrontierSnapshot
	Robot     *Pose
	Goal      *Goal
	Scale     float64 // canvas mm per world meter
	Padding   float64 // padding in canvas mm
}

// NewVectorRenderer creates a vector renderer with default settings.
func NewVectorRenderer(g *OccupancyGrid) *VectorRenderer {
	return &VectorRenderer{
		Grid:    g,
		Scale:   100.0,
		Padding: 10.0,
	}
}

// RenderToSVG writes the map as an SVG to the provided writer.
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	g := r.Grid

	width := float64(g.Width)*g.Resolution*r.Scale + 2*r.Padding
	height := float64(g.Height)*g.Resolution*r.Scale + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, width, height)

	return svgRenderer.Close()
}

// canvasRenderer is the subset of the canvas renderer interface we draw to.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, width, height float64) {
	g := r.Grid

	// White background.
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(wx, wy float64) (float64, float64) {
		cx := (wx-g.Origin.X)*r.Scale + r.Padding
		cy := (wy-g.Origin.Y)*r.Scale + r.Padding
		return cx, cy
	}

	cell := g.Resolution * r.Scale

	// Unknown and occupied cells; free space stays background white.
	unknownStyle := canvas.DefaultStyle
	unknownStyle.Fill = canvas.Paint{Color: color.RGBA{160, 160, 160, 255}}
	unknownStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

	occupiedStyle := canvas.DefaultStyle
	occupiedStyle.Fill = canvas.Paint{Color: canvas.Black}
	occupiedStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

	for c := range g.Data {
		var style canvas.Style
		switch {
		case g.IsUnknown(c):
			style = unknownStyle
		case g.IsOccupied(c):
			style = occupiedStyle
		default:
			continue
		}
		p := g.CellPoint(c)
		cx, cy := toCanvas(p[0]-g.Resolution/2, p[1]-g.Resolution/2)
		rect := canvas.Rectangle(cell, cell).Translate(cx, cy)
		renderer.RenderPath(rect, style, canvas.Identity)
	}

	// Frontier outlines, stroked by rank color.
	for _, fs := range r.Frontiers {
		if fs.Frontier == nil || fs.Frontier.Size() < 2 {
			continue
		}

		rc := rankColor(fs.Rank)
		outlineStyle := canvas.DefaultStyle
		outlineStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		outlineStyle.Stroke = canvas.Paint{Color: color.RGBA{rc.R, rc.G, rc.B, 255}}
		outlineStyle.StrokeWidth = cell / 2

		outline := frontierOutline(g, fs.Frontier)
		cp := &canvas.Path{}
		for i, pt := range outline {
			cx, cy := toCanvas(pt[0], pt[1])
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(cp, outlineStyle, canvas.Identity)
	}

	// Robot marker.
	if r.Robot != nil {
		robotStyle := canvas.DefaultStyle
		robotStyle.Fill = canvas.Paint{Color: color.RGBA{0, 90, 220, 255}}
		robotStyle.Stroke = canvas.Paint{Color: canvas.Black}
		robotStyle.StrokeWidth = cell / 4

		cx, cy := toCanvas(r.Robot.X, r.Robot.Y)
		marker := canvas.Circle(cell).Translate(cx, cy)
		renderer.RenderPath(marker, robotStyle, canvas.Identity)
	}

	// Goal marker.
	if r.Goal != nil {
		goalStyle := canvas.DefaultStyle
		goalStyle.Fill = canvas.Paint{Color: color.RGBA{200, 0, 120, 255}}
		goalStyle.Stroke = canvas.Paint{Color: canvas.Black}
		goalStyle.StrokeWidth = cell / 4

		cx, cy := toCanvas(r.Goal.X, r.Goal.Y)
		marker := canvas.Circle(cell * 1.5).Translate(cx, cy)
		renderer.RenderPath(marker, goalStyle, canvas.Identity)
	}
}
