package maskgen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestGeometry(t *testing.T) {
	g := NewGeometry(5)
	if g.InnerSize != 1000 || g.InnerHRect != 600 || g.Stroke != 25 || g.ParaSkew != 100 {
		t.Errorf("unexpected geometry %+v", g)
	}
	if g.Border != 1500 || g.BorderY != 900 {
		t.Errorf("borders = %d, %d", g.Border, g.BorderY)
	}
	if got := g.SquareCanvas().Size(); got != image.Pt(4000, 4000) {
		t.Errorf("square canvas = %v", got)
	}
	if got := g.RectCanvas().Size(); got != image.Pt(4000, 2400) {
		t.Errorf("rect canvas = %v", got)
	}
	if g := NewGeometry(0); g.Scale != DefaultScale {
		t.Errorf("scale 0 not defaulted: %d", g.Scale)
	}
}

func TestParallelogram(t *testing.T) {
	g := NewGeometry(1)
	got := g.Parallelogram()
	// width int(200*0.85)=170, margin 15, border 300, border_y 180
	want := []image.Point{{315, 180}, {485, 180}, {465, 300}, {295, 300}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Parallelogram = %v, want %v", got, want)
		}
	}
}

func decode(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	out := image.NewNRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	written, err := Generate(dir, 1, &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 10 {
		t.Fatalf("wrote %d files", len(written))
	}

	want := "Masks: mask_square, mask_circle, mask_rhomboid, mask_rectangle, mask_parallelogram\n" +
		"Outlines: outline_square, outline_circle, outline_rhomboid, outline_rectangle, outline_parallelogram\n"
	if out.String() != want {
		t.Errorf("summary = %q", out.String())
	}

	g := NewGeometry(1)
	black := color.NRGBA{A: 255}
	white := color.NRGBA{255, 255, 255, 255}

	for _, s := range g.Shapes() {
		c := s.Canvas.Size().Div(2)

		mask := decode(t, filepath.Join(dir, "mask_"+s.Name+".png"))
		if mask.Bounds() != s.Canvas {
			t.Errorf("%s mask bounds = %v", s.Name, mask.Bounds())
		}
		if got := mask.NRGBAAt(0, 0); got != black {
			t.Errorf("%s mask corner = %v, want opaque black", s.Name, got)
		}
		if got := mask.NRGBAAt(c.X, c.Y); got.A != 0 {
			t.Errorf("%s mask centre = %v, want transparent", s.Name, got)
		}

		outline := decode(t, filepath.Join(dir, "outline_"+s.Name+".png"))
		if got := outline.NRGBAAt(0, 0); got.A != 0 {
			t.Errorf("%s outline corner = %v, want transparent", s.Name, got)
		}
		if got := outline.NRGBAAt(c.X, c.Y); got.A != 0 {
			t.Errorf("%s outline centre = %v, want transparent", s.Name, got)
		}
	}

	sq := decode(t, filepath.Join(dir, "outline_square.png"))
	mid := g.Border + g.InnerSize/2
	for dx := 0; dx < g.Stroke; dx++ {
		if got := sq.NRGBAAt(g.Border+dx, mid); got != white {
			t.Errorf("square outline at +%d = %v, want white", dx, got)
		}
	}
	if got := sq.NRGBAAt(g.Border+g.Stroke, mid); got.A != 0 {
		t.Errorf("square outline is wider than the stroke: %v", got)
	}
	if got := sq.NRGBAAt(g.Border-1, mid); got.A != 0 {
		t.Errorf("square outline leaks outside the shape: %v", got)
	}

	circle := decode(t, filepath.Join(dir, "outline_circle.png"))
	if got := circle.NRGBAAt(mid, g.Border+2); got != white {
		t.Errorf("circle outline top = %v, want white", got)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	if _, err := Generate(a, 1, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(b, 1, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	for _, prefix := range []string{"mask", "outline"} {
		for _, name := range FileNames(prefix) {
			x, err := os.ReadFile(filepath.Join(a, name+".png"))
			if err != nil {
				t.Fatal(err)
			}
			y, err := os.ReadFile(filepath.Join(b, name+".png"))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(x, y) {
				t.Errorf("%s differs between runs", name)
			}
		}
	}
}

func TestMasksAreBinary(t *testing.T) {
	for _, s := range NewGeometry(1).Shapes() {
		for _, stencil := range []*image.Alpha{s.Fill(), s.Outline()} {
			for _, a := range stencil.Pix {
				if a != 0 && a != 255 {
					t.Fatalf("%s stencil has partial coverage %d", s.Name, a)
				}
			}
		}
	}
}
