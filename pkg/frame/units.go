package frame

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

const mmPerInch = 25.4

// ErrInvalidColor is returned by ParseColor for anything but "r,g,b".
var ErrInvalidColor = errors.New("stroke color must be 'r,g,b' e.g. '255,255,255'")

// MMToPx converts a length in millimetres to pixels at the given dpi.
// The result is never below one pixel.
func MMToPx(mm, dpi float64) int {
	px := int(math.Round(mm / mmPerInch * dpi))
	return max(1, px)
}

// ParseColor parses an "r,g,b" triple of integers in 0..255.
func ParseColor(s string) (color.NRGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, ErrInvalidColor
	}

	var rgb [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidColor, strings.TrimSpace(p))
		}
		if n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: r,g,b must be 0-255", ErrInvalidColor)
		}
		rgb[i] = uint8(n)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}

// formatMM renders a millimetre value the way it appears in output names:
// always with a fractional part, so 2 becomes "2.0".
func formatMM(mm float64) string {
	s := strconv.FormatFloat(mm, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
