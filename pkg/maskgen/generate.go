package maskgen

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoppxi/filekit/internal/utils"
	"golang.org/x/image/draw"
)

// MaskImage renders the mask of s: opaque black with the shape interior
// fully transparent.
func MaskImage(s Shape) *image.NRGBA {
	img := image.NewNRGBA(s.Canvas)
	outside := s.Fill()
	for i, a := range outside.Pix {
		outside.Pix[i] = 255 - a
	}
	draw.DrawMask(img, img.Bounds(), image.NewUniform(color.NRGBA{A: 255}), image.Point{}, outside, image.Point{}, draw.Src)
	return img
}

// OutlineImage renders the outline of s: a white stroke on a transparent
// canvas.
func OutlineImage(s Shape) *image.NRGBA {
	img := image.NewNRGBA(s.Canvas)
	draw.DrawMask(img, img.Bounds(), image.White, image.Point{}, s.Outline(), image.Point{}, draw.Src)
	return img
}

// FileNames returns the base names written for prefix ("mask" or "outline").
func FileNames(prefix string) []string {
	var names []string
	for _, s := range NewGeometry(DefaultScale).Shapes() {
		names = append(names, prefix+"_"+s.Name)
	}
	return names
}

// DefaultDir is the directory holding the running executable.
func DefaultDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Generate writes the five masks and five outlines into dir and prints the
// summary to stdout. It returns the written paths.
func Generate(dir string, scale int, stdout io.Writer) ([]string, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	g := NewGeometry(scale)
	shapes := g.Shapes()
	log.Printf("[masks] scale %d, square canvas %v, rect canvas %v", g.Scale, g.SquareCanvas().Size(), g.RectCanvas().Size())

	var written []string
	write := func(name string, img image.Image) error {
		path := filepath.Join(dir, name+".png")
		if err := utils.WritePNG(path, img, 0); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	for _, s := range shapes {
		if err := write("mask_"+s.Name, MaskImage(s)); err != nil {
			return written, err
		}
	}
	for _, s := range shapes {
		if err := write("outline_"+s.Name, OutlineImage(s)); err != nil {
			return written, err
		}
	}

	fmt.Fprintf(stdout, "Masks: %s\n", strings.Join(FileNames("mask"), ", "))
	fmt.Fprintf(stdout, "Outlines: %s\n", strings.Join(FileNames("outline"), ", "))
	return written, nil
}
