// Package maskgen renders the fixed set of mask and outline PNGs used to
// cut photos into simple shapes.
package maskgen

import (
	"image"
	"image/color"

	"github.com/hoppxi/filekit/internal/utils"
	"golang.org/x/image/draw"
)

var opaque = color.Alpha{A: 255}

const (
	DefaultScale  = 5
	BorderFrac    = 1.5
	ParaWidthFrac = 0.85
)

// Geometry holds every dimension derived from the scale factor.
type Geometry struct {
	Scale      int
	InnerSize  int
	InnerHRect int
	Stroke     int
	ParaSkew   int

	Border  int
	BorderY int
}

// NewGeometry derives the dimensions for scale. Values below one fall back
// to DefaultScale.
func NewGeometry(scale int) Geometry {
	if scale < 1 {
		scale = DefaultScale
	}
	g := Geometry{
		Scale:      scale,
		InnerSize:  200 * scale,
		InnerHRect: 120 * scale,
		Stroke:     5 * scale,
		ParaSkew:   20 * scale,
	}
	g.Border = int(float64(g.InnerSize) * BorderFrac)
	g.BorderY = int(float64(g.InnerHRect) * BorderFrac)
	return g
}

// SquareCanvas is the canvas of the square, circle and rhomboid shapes.
func (g Geometry) SquareCanvas() image.Rectangle {
	side := g.InnerSize + 2*g.Border
	return image.Rect(0, 0, side, side)
}

// RectCanvas is the canvas of the rectangle and parallelogram shapes.
func (g Geometry) RectCanvas() image.Rectangle {
	return image.Rect(0, 0, g.InnerSize+2*g.Border, g.InnerHRect+2*g.BorderY)
}

// SquareBox is the square bounding box, inclusive of its far edges.
func (g Geometry) SquareBox() image.Rectangle {
	return image.Rect(g.Border, g.Border, g.Border+g.InnerSize+1, g.Border+g.InnerSize+1)
}

// RectBox is the rectangle bounding box, inclusive of its far edges.
func (g Geometry) RectBox() image.Rectangle {
	return image.Rect(g.Border, g.BorderY, g.Border+g.InnerSize+1, g.BorderY+g.InnerHRect+1)
}

// Rhomboid returns the diamond vertices about the square canvas centre.
func (g Geometry) Rhomboid() []image.Point {
	c := g.SquareCanvas()
	cx, cy := c.Dx()/2, c.Dy()/2
	r := g.InnerSize / 2
	return []image.Point{{cx, cy - r}, {cx + r, cy}, {cx, cy + r}, {cx - r, cy}}
}

// Parallelogram returns the slanted shape: horizontal top and bottom edges,
// the bottom one shifted left by ParaSkew.
func (g Geometry) Parallelogram() []image.Point {
	w := int(float64(g.InnerSize) * ParaWidthFrac)
	margin := (g.InnerSize - w) / 2
	left := g.Border + margin
	top, bottom := g.BorderY, g.BorderY+g.InnerHRect
	return []image.Point{
		{left, top},
		{left + w, top},
		{left + w - g.ParaSkew, bottom},
		{left - g.ParaSkew, bottom},
	}
}

// Shape is one named mask/outline pair.
type Shape struct {
	Name   string
	Canvas image.Rectangle
	// Fill returns the stencil of the shape interior.
	Fill func() *image.Alpha
	// Outline returns the stencil of the stroke, lying inside the edge.
	Outline func() *image.Alpha
}

// Shapes lists the shapes in output order.
func (g Geometry) Shapes() []Shape {
	sq, rc := g.SquareCanvas(), g.RectCanvas()
	stroke := float64(g.Stroke)

	return []Shape{
		{
			Name:    "square",
			Canvas:  sq,
			Fill:    func() *image.Alpha { return boxMask(sq, g.SquareBox()) },
			Outline: func() *image.Alpha { return boxOutline(sq, g.SquareBox(), g.Stroke) },
		},
		{
			Name:   "circle",
			Canvas: sq,
			Fill:   func() *image.Alpha { return utils.EllipseMask(sq.Dx(), sq.Dy(), g.SquareBox()) },
			Outline: func() *image.Alpha {
				return ellipseOutline(sq, g.SquareBox(), stroke)
			},
		},
		{
			Name:    "rhomboid",
			Canvas:  sq,
			Fill:    func() *image.Alpha { return polygonMask(sq, g.Rhomboid()) },
			Outline: func() *image.Alpha { return polygonOutline(sq, g.Rhomboid(), stroke) },
		},
		{
			Name:    "rectangle",
			Canvas:  rc,
			Fill:    func() *image.Alpha { return boxMask(rc, g.RectBox()) },
			Outline: func() *image.Alpha { return boxOutline(rc, g.RectBox(), g.Stroke) },
		},
		{
			Name:    "parallelogram",
			Canvas:  rc,
			Fill:    func() *image.Alpha { return polygonMask(rc, g.Parallelogram()) },
			Outline: func() *image.Alpha { return polygonOutline(rc, g.Parallelogram(), stroke) },
		},
	}
}

func boxMask(canvas, box image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(canvas)
	fillRect(mask, box.Intersect(canvas))
	return mask
}

// boxOutline draws a band of width px along the inside of box.
func boxOutline(canvas, box image.Rectangle, width int) *image.Alpha {
	mask := boxMask(canvas, box)
	inner := box.Inset(width)
	if !inner.Empty() {
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			for x := inner.Min.X; x < inner.Max.X; x++ {
				mask.Pix[mask.PixOffset(x, y)] = 0
			}
		}
	}
	return mask
}

func fillRect(mask *image.Alpha, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.Pix[mask.PixOffset(x, y)] = 255
		}
	}
}

// polygonMask fills the polygon with its vertices at pixel centres, which
// covers the boundary pixels the way a raster fill including its edge does.
func polygonMask(canvas image.Rectangle, pts []image.Point) *image.Alpha {
	outline := utils.PointsF(pts, 0.5)
	grown := utils.InsetPolygon(outline, -0.5)
	return utils.PolygonMask(canvas.Dx(), canvas.Dy(), grown)
}

func polygonOutline(canvas image.Rectangle, pts []image.Point, width float64) *image.Alpha {
	// centre the stroke half a width inside the outer edge
	edge := utils.InsetPolygon(utils.PointsF(pts, 0.5), -0.5)
	path := utils.InsetPolygon(edge, width/2)
	return utils.StrokeMask(canvas.Dx(), canvas.Dy(), func(dst draw.Image) {
		utils.StrokePolygon(dst, path, utils.StrokeStyle{Width: width, Color: opaque})
	})
}

func ellipseOutline(canvas, box image.Rectangle, width float64) *image.Alpha {
	c := utils.PointF{
		X: float64(box.Min.X+box.Max.X) / 2,
		Y: float64(box.Min.Y+box.Max.Y) / 2,
	}
	rx := float64(box.Dx())/2 - width/2
	ry := float64(box.Dy())/2 - width/2
	return utils.StrokeMask(canvas.Dx(), canvas.Dy(), func(dst draw.Image) {
		utils.StrokeEllipse(dst, c, rx, ry, utils.StrokeStyle{Width: width, Color: opaque, Round: true})
	})
}
