package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hoppxi/filekit/internal/utils"
	"golang.org/x/image/draw"
)

// Options controls how a single image is framed.
type Options struct {
	Kind           Kind
	StrokeMM       float64
	StrokeColor    color.NRGBA
	InclinationDeg float64
	DPI            float64
	MaxSide        int
}

// DefaultOptions mirrors the command line defaults.
func DefaultOptions() Options {
	return Options{
		Kind:           Rectangle,
		StrokeMM:       2.0,
		StrokeColor:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		InclinationDeg: 5.0,
		DPI:            200,
		MaxSide:        630,
	}
}

// StrokePx is the stroke width in pixels, also used as the canvas padding.
func (o Options) StrokePx() int {
	return MMToPx(o.StrokeMM, o.DPI)
}

// Render clips src to the frame polygon and draws the stroked outline
// around it on a canvas padded by the stroke width.
func Render(src image.Image, opts Options) (*image.NRGBA, error) {
	if opts.DPI <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %g", opts.DPI)
	}

	content := utils.ResizeMaxSide(src, opts.MaxSide)
	w, h := content.Bounds().Dx(), content.Bounds().Dy()

	strokePx := opts.StrokePx()
	pad := strokePx
	poly := Polygon(opts.Kind, w, h, opts.InclinationDeg)

	mask := utils.PolygonMask(w, h, utils.PointsF(poly, 0))
	utils.CopyAlpha(content, mask)

	out := image.NewNRGBA(image.Rect(0, 0, w+2*pad, h+2*pad))
	draw.Draw(out, content.Bounds().Add(image.Pt(pad, pad)), content, image.Point{}, draw.Over)

	outline := utils.PointsF(translate(poly, image.Pt(pad, pad)), 0)
	utils.StrokePolygon(out, outline, utils.StrokeStyle{
		Width: float64(strokePx),
		Color: opts.StrokeColor,
	})

	return out, nil
}
