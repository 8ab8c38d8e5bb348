package frame

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoppxi/filekit/internal/utils"
)

// DefaultOutputSubdir is created inside the input folder when no output
// directory is given.
const DefaultOutputSubdir = "framed"

// Extensions lists the image types picked up from the input folder.
var Extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// IsImageFile reports whether name has one of the supported extensions.
func IsImageFile(name string) bool {
	return Extensions[strings.ToLower(filepath.Ext(name))]
}

// Framer processes every image of a folder.
type Framer struct {
	Folder string
	// Output is the destination directory. Empty means <Folder>/framed,
	// "." means Folder itself.
	Output string
	// Color is the stroke color exactly as the user typed it; it is parsed
	// into Options.StrokeColor and reused in output names.
	Color   string
	Options Options

	Stdout io.Writer
	Stderr io.Writer
}

// OutputDir resolves where framed images are written.
func (f *Framer) OutputDir() (string, error) {
	folder, err := filepath.Abs(f.Folder)
	if err != nil {
		return "", err
	}
	switch f.Output {
	case "":
		return filepath.Join(folder, DefaultOutputSubdir), nil
	case ".":
		return folder, nil
	default:
		return filepath.Abs(f.Output)
	}
}

// OutputName returns the file name written for the input file name.
func (f *Framer) OutputName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return fmt.Sprintf("%s_f%d_s%s_%s.png", stem, int(f.Options.Kind), formatMM(f.Options.StrokeMM), strings.ReplaceAll(f.Color, ",", "-"))
}

// Run frames every supported image of the folder and returns the written
// paths. The first failing image aborts the run.
func (f *Framer) Run(ctx context.Context) ([]string, error) {
	stdout, stderr := f.Stdout, f.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	c, err := ParseColor(f.Color)
	if err != nil {
		return nil, err
	}
	f.Options.StrokeColor = c
	if !f.Options.Kind.Valid() {
		return nil, fmt.Errorf("frame must be 0-4, got %d", int(f.Options.Kind))
	}

	folder, err := filepath.Abs(f.Folder)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(folder); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", folder)
	}

	outDir, err := f.OutputDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", folder, err)
	}

	var written []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if !IsImageFile(entry.Name()) {
			continue
		}
		in := filepath.Join(folder, entry.Name())
		// symlinks count as the file they point to
		if st, err := os.Stat(in); err != nil || !st.Mode().IsRegular() {
			continue
		}
		out := filepath.Join(outDir, f.OutputName(entry.Name()))
		if err := ProcessFile(in, out, f.Options); err != nil {
			return written, err
		}
		fmt.Fprintln(stdout, out)
		written = append(written, out)
	}

	if len(written) == 0 {
		fmt.Fprintf(stderr, "No image files (jpg, png, webp, bmp) in %s\n", folder)
	}
	return written, nil
}

// ProcessFile frames one image file and writes the PNG to out.
func ProcessFile(in, out string, opts Options) error {
	src, format, err := utils.DecodeImage(in)
	if err != nil {
		return err
	}
	log.Printf("[frame] %s (%s, %dx%d) -> %s", in, format, src.Bounds().Dx(), src.Bounds().Dy(), out)

	img, err := Render(src, opts)
	if err != nil {
		return fmt.Errorf("frame %s: %w", in, err)
	}
	if err := utils.WritePNG(out, img, opts.DPI); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
