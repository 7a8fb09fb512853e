package explore

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Grid cell colors for the raster map render.
var (
	colorFree     = color.RGBA{255, 255, 255, 255}
	colorUnknown  = color.RGBA{160, 160, 160, 255}
	colorOccupied = color.RGBA{30, 30, 30, 255}
	colorGradient = color.RGBA{210, 210, 210, 255} // mid-probability cells
)

// frontierPalette colors frontiers by rank: best first.
var frontierPalette = []color.RGBA{
	{220, 30, 30, 255},   // rank 1 - red
	{240, 140, 0, 255},   // rank 2 - orange
	{230, 200, 0, 255},   // rank 3 - yellow
	{60, 160, 60, 255},   // rank 4 - green
	{70, 110, 220, 255},  // rank 5 - blue
	{150, 80, 200, 255},  // rank 6+ - purple
}

// MapRenderer renders one robot's occupancy grid with its ranked frontiers,
// robot pose, and selected goal as a raster image.
type MapRenderer struct {
	Grid      *OccupancyGrid
	Frontiers []FrontierSnapshot
	Robot     *Pose
	Goal      *Goal
	Scale     int // pixels per grid cell
}

// NewMapRenderer creates a renderer with default settings.
func NewMapRenderer(g *OccupancyGrid) *MapRenderer {
	return &MapRenderer{
		Grid:  g,
		Scale: 4,
	}
}

// Render draws the grid to an RGBA image. The Y axis is flipped so that
// world +Y points up in the output.
func (r *MapRenderer) Render() *image.RGBA {
	g := r.Grid
	scale := r.Scale
	if scale < 1 {
		scale = 1
	}

	width := g.Width * scale
	height := g.Height * scale
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Base layer: cell classification.
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.CellIndex(x, y)
			var cellColor color.RGBA
			switch {
			case g.IsUnknown(c):
				cellColor = colorUnknown
			case g.IsFree(c):
				cellColor = colorFree
			case g.IsOccupied(c):
				cellColor = colorOccupied
			default:
				cellColor = colorGradient
			}
			fillCell(img, x, g.Height-1-y, scale, cellColor)
		}
	}

	// Frontier layer, painted worst-to-best so the best rank stays on top
	// where regions touch.
	for i := len(r.Frontiers) - 1; i >= 0; i-- {
		fs := r.Frontiers[i]
		if fs.Frontier == nil {
			continue
		}
		fc := rankColor(fs.Rank)
		for _, c := range fs.Frontier.Cells {
			x := c % g.Width
			y := c / g.Width
			fillCell(img, x, g.Height-1-y, scale, fc)
		}
	}

	// Rank labels at frontier centroids.
	for _, fs := range r.Frontiers {
		px, py, ok := r.worldToPixel(fs.Centroid.X, fs.Centroid.Y)
		if !ok {
			continue
		}
		drawText(img, px+scale, py-scale, fmt.Sprintf("%d", fs.Rank), color.RGBA{0, 0, 0, 255})
	}

	// Robot marker with heading tick.
	if r.Robot != nil {
		if px, py, ok := r.worldToPixel(r.Robot.X, r.Robot.Y); ok {
			drawCircle(img, px, py, scale+2, color.RGBA{0, 90, 220, 255})
			rad := r.Robot.Theta * math.Pi / 180
			hx := px + int(float64(2*scale+4)*math.Cos(rad))
			hy := py - int(float64(2*scale+4)*math.Sin(rad))
			drawLine(img, px, py, hx, hy, color.RGBA{0, 90, 220, 255})
		}
	}

	// Goal marker.
	if r.Goal != nil {
		if px, py, ok := r.worldToPixel(r.Goal.X, r.Goal.Y); ok {
			drawCross(img, px, py, 2*scale, color.RGBA{200, 0, 120, 255})
		}
	}

	return img
}

// SavePNG renders the map and writes it to path.
func (r *MapRenderer) SavePNG(path string) error {
	img := r.Render()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// worldToPixel maps a world coordinate to image pixel coordinates.
func (r *MapRenderer) worldToPixel(wx, wy float64) (int, int, bool) {
	g := r.Grid
	scale := r.Scale
	if scale < 1 {
		scale = 1
	}
	x := (wx - g.Origin.X) / g.Resolution
	y := (wy - g.Origin.Y) / g.Resolution
	if x < 0 || x >= float64(g.Width) || y < 0 || y >= float64(g.Height) {
		return 0, 0, false
	}
	return int(x * float64(scale)), (g.Height*scale - 1) - int(y*float64(scale)), true
}

func rankColor(rank int) color.RGBA {
	if rank < 1 {
		rank = 1
	}
	if rank > len(frontierPalette) {
		rank = len(frontierPalette)
	}
	return frontierPalette[rank-1]
}

func fillCell(img *image.RGBA, cx, cy, scale int, c color.RGBA) {
	for dy := 0; dy < scale; dy++ {
		for dx := 0; dx < scale; dx++ {
			img.Set(cx*scale+dx, cy*scale+dy, c)
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	for d := -size; d <= size; d++ {
		img.Set(cx+d, cy+d, c)
		img.Set(cx+d, cy-d, c)
	}
}

// drawLine draws a line using simple linear interpolation.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(t*float64(x1-x0))
		y := y0 + int(t*float64(y1-y0))
		img.Set(x, y, c)
	}
}

// drawText draws text using the basic 7x13 font.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
