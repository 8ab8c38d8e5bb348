package utils

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// PointF is a vertex in pixel space.
type PointF struct {
	X, Y float64
}

// PointsF converts integer vertices, optionally shifting them by off
// (0.5 centres them on pixels).
func PointsF(pts []image.Point, off float64) []PointF {
	out := make([]PointF, len(pts))
	for i, p := range pts {
		out[i] = PointF{float64(p.X) + off, float64(p.Y) + off}
	}
	return out
}

// PolygonMask rasterizes the closed polygon into a w x h stencil and
// binarizes it at 50% coverage: pixels are either fully opaque or fully
// transparent.
func PolygonMask(w, h int, pts []PointF) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if len(pts) < 3 || w <= 0 || h <= 0 {
		return mask
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	Threshold(mask)
	return mask
}

// EllipseMask rasterizes the ellipse inscribed in r, binarized like
// PolygonMask.
func EllipseMask(w, h int, r image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return mask
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	// four cubic arcs, k is the usual circle approximation constant
	const k = 0.5522847498
	f := func(v float64) float32 { return float32(v) }
	z.MoveTo(f(cx+rx), f(cy))
	z.CubeTo(f(cx+rx), f(cy+k*ry), f(cx+k*rx), f(cy+ry), f(cx), f(cy+ry))
	z.CubeTo(f(cx-k*rx), f(cy+ry), f(cx-rx), f(cy+k*ry), f(cx-rx), f(cy))
	z.CubeTo(f(cx-rx), f(cy-k*ry), f(cx-k*rx), f(cy-ry), f(cx), f(cy-ry))
	z.CubeTo(f(cx+k*rx), f(cy-ry), f(cx+rx), f(cy-k*ry), f(cx+rx), f(cy))
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	Threshold(mask)
	return mask
}

// Threshold turns every pixel of mask fully opaque when its coverage is
// above one half, fully transparent otherwise.
func Threshold(mask *image.Alpha) {
	for i, a := range mask.Pix {
		if a > 127 {
			mask.Pix[i] = 255
		} else {
			mask.Pix[i] = 0
		}
	}
}

// CopyAlpha overwrites the alpha channel of img with the stencil. Pixels
// outside the stencil become fully transparent, pixels inside fully opaque.
func CopyAlpha(img *image.NRGBA, mask *image.Alpha) {
	b := img.Bounds().Intersect(mask.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)+3] = mask.AlphaAt(x, y).A
		}
	}
}

// StrokeStyle describes a stroked outline.
type StrokeStyle struct {
	Width float64
	Color color.Color
	// Round joins soften the corners; the default is sharp miter joins.
	Round bool
}

func (s StrokeStyle) apply(st *rasterx.Stroker) {
	join := rasterx.Miter
	if s.Round {
		join = rasterx.Round
	}
	// a miter limit of 10 keeps the corners of the narrow diamond sharp
	st.SetStroke(toFixed(s.Width), toFixed(10), rasterx.ButtCap, nil, rasterx.FlatGap, join)
	st.SetColor(s.Color)
}

// StrokePolygon draws the closed polygon outline onto dst, antialiased.
func StrokePolygon(dst draw.Image, pts []PointF, style StrokeStyle) {
	if len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	st := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	style.apply(st)

	st.Start(fixedPoint(pts[0]))
	for _, p := range pts[1:] {
		st.Line(fixedPoint(p))
	}
	st.Stop(true)
	st.Draw()
}

// StrokeEllipse draws the outline of the ellipse centred on c onto dst.
func StrokeEllipse(dst draw.Image, c PointF, rx, ry float64, style StrokeStyle) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	st := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	style.apply(st)

	rasterx.AddEllipse(c.X, c.Y, rx, ry, 0, st)
	st.Draw()
}

// StrokeMask renders an outline into a binarized stencil by calling draw on
// a blank alpha canvas. It gives hard edged strokes.
func StrokeMask(w, h int, stroke func(dst draw.Image)) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	stroke(mask)
	Threshold(mask)
	return mask
}

// InsetPolygon moves every edge of a convex polygon towards its centroid by
// d and returns the intersections of consecutive moved edges.
func InsetPolygon(pts []PointF, d float64) []PointF {
	n := len(pts)
	if n < 3 || d == 0 {
		return append([]PointF(nil), pts...)
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(n)
	cy /= float64(n)

	type line struct{ p, dir PointF }
	lines := make([]line, n)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			lines[i] = line{a, PointF{}}
			continue
		}
		nx, ny := -dy/l, dx/l
		// flip the normal when it points away from the centroid
		if (cx-a.X)*nx+(cy-a.Y)*ny < 0 {
			nx, ny = -nx, -ny
		}
		lines[i] = line{PointF{a.X + nx*d, a.Y + ny*d}, PointF{dx, dy}}
	}

	out := make([]PointF, n)
	for i := range pts {
		prev, cur := lines[(i+n-1)%n], lines[i]
		den := prev.dir.X*cur.dir.Y - prev.dir.Y*cur.dir.X
		if den == 0 {
			out[i] = cur.p
			continue
		}
		t := ((cur.p.X-prev.p.X)*cur.dir.Y - (cur.p.Y-prev.p.Y)*cur.dir.X) / den
		out[i] = PointF{prev.p.X + t*prev.dir.X, prev.p.Y + t*prev.dir.Y}
	}
	return out
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fixedPoint(p PointF) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(p.X), Y: toFixed(p.Y)}
}
