package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"path/filepath"

	"github.com/eligwz/spectrogram"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/utils"
)

// Plot layout in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
	margin        = 32
)

// Pad runs are stacked slightly above the expected row so they stay readable.
const padRunOffset = 0.01

var (
	background = spectrogram.ParseColor("ffffff")
	axisColor  = spectrogram.ParseColor("404040")
	expColor   = spectrogram.ParseColor("2ca02c")
	failColor  = spectrogram.ParseColor("d62728")

	// per-run palette, cycled by run index
	runPalette = []string{"ff7f0e", "1f77b4", "9467bd", "8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf"}
)

// PNGRenderer draws one PNG per report into Dir.
type PNGRenderer struct {
	Dir    string
	Width  int
	Height int
}

func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir, Width: DefaultWidth, Height: DefaultHeight}
}

// Path returns the file the report will be written to.
func (p *PNGRenderer) Path(r *models.Report) string {
	return filepath.Join(p.Dir, FileStem(r)+"_eval.png")
}

func (p *PNGRenderer) Render(r *models.Report) error {
	w, h := p.Width, p.Height
	if w <= 2*margin || h <= 2*margin {
		w, h = DefaultWidth, DefaultHeight
	}
	if err := utils.MakeDir(p.Dir); err != nil {
		return fmt.Errorf("creating plot dir: %w", err)
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	c := newCanvas(img, plotBounds(r))
	c.axes()

	switch r.Signal {
	case models.SignalPad:
		drawPad(c, r)
	default:
		drawFader(c, r)
	}

	if err := spectrogram.SavePng(img, p.Path(r)); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}

func drawFader(c *canvas, r *models.Report) {
	for _, run := range r.Runs {
		col := runColor(run)
		obs := run.Observed
		for i := 1; i < obs.Len(); i++ {
			c.line(obs.TimestampsMs[i-1], obs.Values[i-1], obs.TimestampsMs[i], obs.Values[i], col)
		}
		if obs.Len() == 1 {
			c.dot(obs.TimestampsMs[0], obs.Values[0], 1, col)
		}
	}

	// expected curve on top, thicker
	exp := r.Expected
	for i := 1; i < exp.Len(); i++ {
		for d := -1; d <= 1; d++ {
			c.lineOffset(exp.TimestampsMs[i-1], exp.Values[i-1], exp.TimestampsMs[i], exp.Values[i], d, expColor)
		}
	}
}

func drawPad(c *canvas, r *models.Report) {
	for _, run := range r.Runs {
		col := runColor(run)
		y := 1 + padRunOffset*float64(run.RunIndex+1)
		for _, t := range run.Observed.TimestampsMs {
			c.dot(t, y, 2, col)
		}
	}
	for _, t := range r.Expected.TimestampsMs {
		c.square(t, 1, 3, expColor)
	}
}

func runColor(run models.RunSeries) color.Color {
	if run.Failed {
		return failColor
	}
	return spectrogram.ParseColor(runPalette[run.RunIndex%len(runPalette)])
}

// bounds is the data range mapped onto the plot area.
type bounds struct {
	minX, maxX, minY, maxY float64
}

func plotBounds(r *models.Report) bounds {
	b := bounds{minX: 0, maxX: 1, minY: 0, maxY: 1}
	grow := func(s models.Series) {
		for i, t := range s.TimestampsMs {
			b.maxX = math.Max(b.maxX, t)
			b.minX = math.Min(b.minX, t)
			if i < len(s.Values) {
				b.maxY = math.Max(b.maxY, s.Values[i])
				b.minY = math.Min(b.minY, s.Values[i])
			}
		}
	}
	grow(r.Expected)
	for _, run := range r.Runs {
		grow(run.Observed)
	}

	if r.Signal == models.SignalPad {
		b.minY = 1 - 0.13
		b.maxY = 1 + padRunOffset*float64(len(r.Runs)+1) + 0.05
	} else {
		b.maxY *= 1.05
	}
	return b
}

type canvas struct {
	img  draw.Image
	area image.Rectangle
	b    bounds
}

func newCanvas(img draw.Image, b bounds) *canvas {
	r := img.Bounds()
	return &canvas{
		img:  img,
		area: image.Rect(r.Min.X+margin, r.Min.Y+margin, r.Max.X-margin, r.Max.Y-margin),
		b:    b,
	}
}

func (c *canvas) px(x, y float64) (int, int) {
	fx := (x - c.b.minX) / (c.b.maxX - c.b.minX)
	fy := (y - c.b.minY) / (c.b.maxY - c.b.minY)
	px := c.area.Min.X + int(math.Round(fx*float64(c.area.Dx())))
	py := c.area.Max.Y - int(math.Round(fy*float64(c.area.Dy())))
	return px, py
}

func (c *canvas) set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.Set(x, y, col)
	}
}

func (c *canvas) axes() {
	for x := c.area.Min.X; x <= c.area.Max.X; x++ {
		c.set(x, c.area.Max.Y, axisColor)
	}
	for y := c.area.Min.Y; y <= c.area.Max.Y; y++ {
		c.set(c.area.Min.X, y, axisColor)
	}
}

func (c *canvas) line(x0, y0, x1, y1 float64, col color.Color) {
	c.lineOffset(x0, y0, x1, y1, 0, col)
}

// lineOffset draws a Bresenham line shifted vertically by dy pixels.
func (c *canvas) lineOffset(x0, y0, x1, y1 float64, dy int, col color.Color) {
	ax, ay := c.px(x0, y0)
	bx, by := c.px(x1, y1)
	ay += dy
	by += dy

	dx := abs(bx - ax)
	sx := 1
	if ax > bx {
		sx = -1
	}
	ddy := -abs(by - ay)
	sy := 1
	if ay > by {
		sy = -1
	}
	e := dx + ddy
	for {
		c.set(ax, ay, col)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= ddy {
			e += ddy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

func (c *canvas) dot(x, y float64, radius int, col color.Color) {
	cx, cy := c.px(x, y)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx*dx+dy*dy <= radius*radius {
				c.set(cx+dx, cy+dy, col)
			}
		}
	}
}

func (c *canvas) square(x, y float64, half int, col color.Color) {
	cx, cy := c.px(x, y)
	for dx := -half; dx <= half; dx++ {
		for dy := -half; dy <= half; dy++ {
			c.set(cx+dx, cy+dy, col)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
