package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hoppxi/filekit/pkg/frame"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var frameCmd = &cobra.Command{
	Use:   "frame [folder]",
	Short: "Clip every image of a folder to a frame shape and stroke its outline",
	Long: `Clip every image of a folder to a frame shape and stroke its outline.

Frames: 0 rectangle, 1 trapezoid (narrow top), 2 trapezoid (narrow bottom),
3 diamond, 4 octagon. Output is PNG with the DPI stored in the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd, map[string]string{
			"frame.output":       "output",
			"frame.stroke_mm":    "stroke",
			"frame.stroke_color": "stroke-color",
			"frame.type":         "frame",
			"frame.inclination":  "inclination",
			"frame.max_side":     "max-side",
			"frame.dpi":          "dpi",
		})
		if err != nil {
			return err
		}

		folder := "."
		if len(args) > 0 {
			folder = args[0]
		}
		run, ignore, err := frameJob(cmd.Context(), v, folder, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := run(); err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			abs, err := filepath.Abs(folder)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), abs, ignore, run)
		}
		return nil
	},
}

// newFramer builds a Framer for folder from the frame.* keys of v.
func newFramer(v *viper.Viper, folder string) (*frame.Framer, error) {
	kind := frame.Kind(v.GetInt("frame.type"))
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid frame %d: choose from 0, 1, 2, 3, 4", int(kind))
	}
	if v.GetFloat64("frame.dpi") <= 0 {
		return nil, fmt.Errorf("dpi must be positive")
	}

	opts := frame.DefaultOptions()
	opts.Kind = kind
	opts.StrokeMM = v.GetFloat64("frame.stroke_mm")
	opts.InclinationDeg = v.GetFloat64("frame.inclination")
	opts.MaxSide = v.GetInt("frame.max_side")
	opts.DPI = v.GetFloat64("frame.dpi")

	return &frame.Framer{
		Folder:  folder,
		Output:  v.GetString("frame.output"),
		Color:   v.GetString("frame.stroke_color"),
		Options: opts,
	}, nil
}

// frameJob returns the frame run for folder and the watch filter matching
// it. Each run reads the config again, so a reloaded file takes effect.
func frameJob(ctx context.Context, v *viper.Viper, folder string, stdout, stderr io.Writer) (func() error, func(string) bool, error) {
	f, err := newFramer(v, folder)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, nil, err
	}
	// runs and filter calls share the watch goroutine
	run := func() error {
		next, err := newFramer(v, folder)
		if err != nil {
			return err
		}
		f = next
		f.Stdout, f.Stderr = stdout, stderr
		_, err = f.Run(ctx)
		return err
	}
	sameDir := func() bool {
		outDir, err := f.OutputDir()
		return err == nil && outDir == abs
	}
	return run, frameIgnore(sameDir), nil
}

var framedName = regexp.MustCompile(`_f[0-4]_s[0-9.]+_[0-9-]+\.png$`)

// frameIgnore skips non-images, temp files and, when the output goes into
// the watched folder, the framed images themselves.
func frameIgnore(sameDir func() bool) func(string) bool {
	return func(name string) bool {
		if strings.HasPrefix(name, ".") || !frame.IsImageFile(name) {
			return true
		}
		return framedName.MatchString(name) && sameDir()
	}
}

func init() {
	d := frame.DefaultOptions()
	frameCmd.Flags().StringP("output", "o", "", "output directory (default <folder>/framed, \".\" for the folder itself)")
	frameCmd.Flags().Float64P("stroke", "s", d.StrokeMM, "stroke width in millimetres")
	frameCmd.Flags().StringP("stroke-color", "c", "255,255,255", "stroke color as R,G,B")
	frameCmd.Flags().IntP("frame", "f", int(d.Kind), "frame type 0-4")
	frameCmd.Flags().Float64P("inclination", "i", d.InclinationDeg, "side inclination in degrees for frames 1-4")
	frameCmd.Flags().IntP("max-side", "m", d.MaxSide, "resize so the longest side is at most this many pixels")
	frameCmd.Flags().Float64("dpi", d.DPI, "resolution used for millimetres and stored in the PNG")
	frameCmd.Flags().Bool("watch", false, "frame again whenever the folder changes")
}
