// Package frame clips images to a frame shape and draws a stroke around it.
package frame

import (
	"fmt"
	"image"
	"math"
)

// Kind selects the frame shape.
type Kind int

const (
	Rectangle Kind = iota
	TrapezoidTop
	TrapezoidBottom
	Diamond
	Octagon
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case TrapezoidTop:
		return "trapezoid (top narrow)"
	case TrapezoidBottom:
		return "trapezoid (bottom narrow)"
	case Diamond:
		return "diamond"
	case Octagon:
		return "octagon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known shapes.
func (k Kind) Valid() bool {
	return k >= Rectangle && k <= Octagon
}

// Inset returns the horizontal displacement used to narrow an edge:
// round(h * tan(deg)), clamped so the narrowed edge keeps at least one pixel.
func Inset(w, h int, inclinationDeg float64) int {
	if inclinationDeg == 0 {
		return 0
	}
	inset := int(math.Round(float64(h) * math.Tan(math.Abs(inclinationDeg)*math.Pi/180)))
	if inset < 0 {
		inset = 0
	}
	return min(inset, max(0, (w-1)/2))
}

// Polygon returns the frame outline in content coordinates (0..w, 0..h),
// clockwise. Unknown kinds fall back to the rectangle.
func Polygon(kind Kind, w, h int, inclinationDeg float64) []image.Point {
	inset := Inset(w, h, inclinationDeg)

	switch kind {
	case TrapezoidTop:
		return []image.Point{{inset, 0}, {w - inset, 0}, {w, h}, {0, h}}
	case TrapezoidBottom:
		return []image.Point{{0, 0}, {w, 0}, {w - inset, h}, {inset, h}}
	case Diamond:
		return []image.Point{{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2}}
	case Octagon:
		a, b := octagonCuts(w, h, inset)
		return []image.Point{
			{a, 0}, {w - a, 0}, {w, b}, {w, h - b},
			{w - a, h}, {a, h}, {0, h - b}, {0, b},
		}
	default:
		return []image.Point{{0, 0}, {w, 0}, {w, h}, {0, h}}
	}
}

// octagonCuts returns the horizontal (a) and vertical (b) corner cuts.
func octagonCuts(w, h, inset int) (a, b int) {
	if inset <= 0 {
		cut := max(1, min(w, h)/10)
		a, b = cut, cut
	} else {
		a = max(1, min(inset/2, w/6, h/6))
		b = max(1, a*h/inset)
	}
	// the cuts of opposite corners must not overlap
	a = min(a, max(1, (w-1)/2))
	b = min(b, max(1, (h-1)/2))
	return a, b
}

// translate shifts every vertex by d.
func translate(pts []image.Point, d image.Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}
