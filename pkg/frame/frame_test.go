package frame

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hoppxi/filekit/internal/utils"
)

func TestPolygonRectangle(t *testing.T) {
	got := Polygon(Rectangle, 100, 50, 30)
	want := []image.Point{{0, 0}, {100, 0}, {100, 50}, {0, 50}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Polygon(Rectangle) = %v, want %v", got, want)
	}
}

func TestPolygonUnknownKindFallsBack(t *testing.T) {
	got := Polygon(Kind(9), 10, 20, 5)
	want := Polygon(Rectangle, 10, 20, 5)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Polygon(9) = %v, want rectangle %v", got, want)
	}
}

func TestTrapezoidAtZeroInclinationIsRectangle(t *testing.T) {
	rect := Polygon(Rectangle, 120, 80, 0)
	for _, kind := range []Kind{TrapezoidTop, TrapezoidBottom} {
		got := Polygon(kind, 120, 80, 0)
		// same vertex set, possibly in a different order
		seen := map[image.Point]bool{}
		for _, p := range got {
			seen[p] = true
		}
		for _, p := range rect {
			if !seen[p] {
				t.Errorf("%v at 0deg misses corner %v: %v", kind, p, got)
			}
		}
	}
}

func TestTrapezoidInset(t *testing.T) {
	w, h := 400, 300
	deg := 5.0
	inset := int(math.Round(float64(h) * math.Tan(deg*math.Pi/180)))

	top := Polygon(TrapezoidTop, w, h, deg)
	wantTop := []image.Point{{inset, 0}, {w - inset, 0}, {w, h}, {0, h}}
	if !reflect.DeepEqual(top, wantTop) {
		t.Errorf("TrapezoidTop = %v, want %v", top, wantTop)
	}

	bottom := Polygon(TrapezoidBottom, w, h, deg)
	wantBottom := []image.Point{{0, 0}, {w, 0}, {w - inset, h}, {inset, h}}
	if !reflect.DeepEqual(bottom, wantBottom) {
		t.Errorf("TrapezoidBottom = %v, want %v", bottom, wantBottom)
	}
}

func TestInsetClamped(t *testing.T) {
	tests := []struct {
		w, h int
		deg  float64
	}{
		{100, 1000, 45},
		{10, 10, 89},
		{3, 500, 60},
		{1, 1, 80},
	}
	for _, tt := range tests {
		inset := Inset(tt.w, tt.h, tt.deg)
		if 2*inset >= tt.w && inset != 0 {
			t.Errorf("Inset(%d, %d, %g) = %d, not below w/2", tt.w, tt.h, tt.deg, inset)
		}
		top := Polygon(TrapezoidTop, tt.w, tt.h, tt.deg)
		if top[0].X > top[1].X {
			t.Errorf("narrow edge crossed: %v", top)
		}
	}
}

func TestDiamond(t *testing.T) {
	got := Polygon(Diamond, 101, 51, 0)
	want := []image.Point{{50, 0}, {101, 25}, {50, 51}, {0, 25}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diamond = %v, want %v", got, want)
	}
}

func TestOctagon(t *testing.T) {
	t.Run("zero inclination", func(t *testing.T) {
		got := Polygon(Octagon, 200, 100, 0)
		a, b := 10, 10
		want := []image.Point{
			{a, 0}, {200 - a, 0}, {200, b}, {200, 100 - b},
			{200 - a, 100}, {a, 100}, {0, 100 - b}, {0, b},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Octagon = %v, want %v", got, want)
		}
	})

	t.Run("inclined", func(t *testing.T) {
		w, h := 600, 400
		inset := Inset(w, h, 5)
		a := max(1, min(inset/2, w/6, h/6))
		b := max(1, a*h/inset)
		got := Polygon(Octagon, w, h, 5)
		if got[0] != image.Pt(a, 0) || got[2] != image.Pt(w, b) {
			t.Errorf("Octagon cuts = %v, want a=%d b=%d", got, a, b)
		}
		if len(got) != 8 {
			t.Fatalf("Octagon has %d vertices", len(got))
		}
	})

	t.Run("cuts never overlap", func(t *testing.T) {
		got := Polygon(Octagon, 30, 400, 1)
		if got[2].Y > got[3].Y {
			t.Errorf("vertical cuts overlap: %v", got)
		}
	})
}

func TestMMToPx(t *testing.T) {
	if got := MMToPx(2, 200); got != 16 {
		t.Errorf("MMToPx(2, 200) = %d, want 16", got)
	}
	if got := MMToPx(0, 200); got != 1 {
		t.Errorf("MMToPx(0, 200) = %d, want 1", got)
	}
	if got := MMToPx(25.4, 72); got != 72 {
		t.Errorf("MMToPx(25.4, 72) = %d, want 72", got)
	}

	prev := 0
	for mm := 0.0; mm <= 10; mm += 0.25 {
		px := MMToPx(mm, 300)
		if px < prev || px < 1 {
			t.Fatalf("MMToPx(%g, 300) = %d after %d", mm, px, prev)
		}
		prev = px
	}
	prev = 0
	for dpi := 1.0; dpi <= 1200; dpi += 7 {
		px := MMToPx(1.5, dpi)
		if px < prev || px < 1 {
			t.Fatalf("MMToPx(1.5, %g) = %d after %d", dpi, px, prev)
		}
		prev = px
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"255,255,255", color.NRGBA{255, 255, 255, 255}, false},
		{"0, 128 ,7", color.NRGBA{0, 128, 7, 255}, false},
		{"255,255", color.NRGBA{}, true},
		{"1,2,3,4", color.NRGBA{}, true},
		{"256,0,0", color.NRGBA{}, true},
		{"-1,0,0", color.NRGBA{}, true},
		{"a,b,c", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	f := &Framer{Color: "255,0,10", Options: DefaultOptions()}
	f.Options.Kind = Octagon
	if got := f.OutputName("photo.JPG"); got != "photo_f4_s2.0_255-0-10.png" {
		t.Errorf("OutputName = %q", got)
	}
	f.Options.StrokeMM = 1.5
	if got := f.OutputName("a.b.png"); got != "a.b_f4_s1.5_255-0-10.png" {
		t.Errorf("OutputName = %q", got)
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestRenderRectangle(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	opts := DefaultOptions()
	out, err := Render(solid(100, 50, red), opts)
	if err != nil {
		t.Fatal(err)
	}

	pad := opts.StrokePx()
	if b := out.Bounds(); b.Dx() != 100+2*pad || b.Dy() != 50+2*pad {
		t.Fatalf("output size %v, want %dx%d", b, 100+2*pad, 50+2*pad)
	}
	if got := out.NRGBAAt(pad+50, pad+25); got != red {
		t.Errorf("centre pixel = %v, want %v", got, red)
	}
	if got := out.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("outer corner = %v, want transparent", got)
	}
	if got := out.NRGBAAt(pad, pad+25); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("stroke pixel = %v, want opaque white", got)
	}
}

func TestRenderDiamondClipsCorners(t *testing.T) {
	opts := DefaultOptions()
	opts.Kind = Diamond
	out, err := Render(solid(100, 50, color.NRGBA{0, 0, 255, 255}), opts)
	if err != nil {
		t.Fatal(err)
	}
	pad := opts.StrokePx()
	if got := out.NRGBAAt(pad+1, pad+1); got.A != 0 {
		t.Errorf("clipped corner = %v, want transparent", got)
	}
	if got := out.NRGBAAt(pad+50, pad+25); got.A != 255 || got.B != 255 {
		t.Errorf("centre = %v, want opaque blue", got)
	}
}

func TestRenderResizes(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSide = 60
	out, err := Render(solid(300, 150, color.NRGBA{0, 255, 0, 255}), opts)
	if err != nil {
		t.Fatal(err)
	}
	pad := opts.StrokePx()
	if b := out.Bounds(); b.Dx() != 60+2*pad || b.Dy() != 30+2*pad {
		t.Errorf("output size %v, want %dx%d", b, 60+2*pad, 30+2*pad)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestFramerRun(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), solid(40, 40, color.NRGBA{1, 2, 3, 255}))
	writePNG(t, filepath.Join(dir, "a.PNG"), solid(20, 30, color.NRGBA{1, 2, 3, 255}))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	f := &Framer{
		Folder:  dir,
		Color:   "0,0,0",
		Options: DefaultOptions(),
		Stdout:  &stdout,
		Stderr:  &stderr,
	}
	written, err := f.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "framed", "a_f0_s2.0_0-0-0.png"),
		filepath.Join(dir, "framed", "b_f0_s2.0_0-0-0.png"),
	}
	if !reflect.DeepEqual(written, want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	if stdout.String() != want[0]+"\n"+want[1]+"\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warning %q", stderr.String())
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if dpi := utils.ReadPNGDPI(data); dpi != 200 {
		t.Errorf("dpi = %g, want 200", dpi)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40+32 {
		t.Errorf("width = %d, want 72", b.Dx())
	}
}

func TestFramerRunFollowsSymlinks(t *testing.T) {
	dir, elsewhere := t.TempDir(), t.TempDir()
	target := filepath.Join(elsewhere, "real.png")
	writePNG(t, target, solid(20, 20, color.NRGBA{1, 2, 3, 255}))
	if err := os.Symlink(target, filepath.Join(dir, "link.png")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(elsewhere, "gone.png"), filepath.Join(dir, "dangling.png")); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	f := &Framer{Folder: dir, Output: out, Color: "0,0,0", Options: DefaultOptions(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	written, err := f.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(out, "link_f0_s2.0_0-0-0.png")}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
}

func TestFramerRunEmptyFolder(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	f := &Framer{Folder: dir, Output: ".", Color: "255,255,255", Options: DefaultOptions(), Stdout: &stdout, Stderr: &stderr}
	written, err := f.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 0 {
		t.Errorf("written = %v", written)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("No image files (jpg, png, webp, bmp) in")) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestFramerRunRejectsColorFirst(t *testing.T) {
	f := &Framer{Folder: "/does/not/exist", Color: "red", Options: DefaultOptions()}
	if _, err := f.Run(context.Background()); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Run error = %v, want ErrInvalidColor", err)
	}
}

func TestFramerRunAbortsOnBadImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	f := &Framer{Folder: dir, Color: "255,255,255", Options: DefaultOptions(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	if _, err := f.Run(context.Background()); err == nil {
		t.Error("Run succeeded on an undecodable image")
	}
}
