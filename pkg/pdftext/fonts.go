package pdftext

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/benoitkugler/pdf/fonts"
	"github.com/benoitkugler/pdf/fonts/cmaps"
	"github.com/benoitkugler/pdf/fonts/glyphsnames"
	"github.com/benoitkugler/pdf/fonts/simpleencodings"
	"github.com/benoitkugler/pdf/fonts/standardfonts"
	"github.com/benoitkugler/pdf/model"
	"golang.org/x/text/unicode/norm"
)

var (
	errType3Font       = errors.New("type3 fonts cannot be re-encoded")
	errUnknownEncoding = errors.New("font encoding is unknown")
)

// codec translates between the character codes of a font and text, and
// measures codes.
type codec struct {
	name string
	// codeLen is 1 for simple fonts and 2 for composite fonts.
	codeLen int

	toRune   map[uint32]string
	fromRune map[rune]uint32

	firstChar    int
	widths       []int
	missingWidth float64
	// metrics is used for fonts without a Widths array (standard 14).
	metrics fonts.Font

	ascent, descent float64

	// unusable is set when text cannot be encoded with this font at all.
	unusable error
}

// decode turns raw character codes into text.
func (c *codec) decode(codes []byte) string {
	var sb strings.Builder
	c.eachCode(codes, func(code uint32) {
		if s, ok := c.toRune[code]; ok {
			sb.WriteString(s)
		} else if c.codeLen == 1 && len(c.toRune) == 0 {
			sb.WriteRune(rune(code))
		}
	})
	return sb.String()
}

func (c *codec) eachCode(codes []byte, fn func(code uint32)) {
	if c.codeLen == 2 {
		for i := 0; i+1 < len(codes); i += 2 {
			fn(uint32(codes[i])<<8 | uint32(codes[i+1]))
		}
		return
	}
	for _, b := range codes {
		fn(uint32(b))
	}
}

// encode returns the character codes showing text, or an error naming the
// first rune the font cannot represent.
func (c *codec) encode(text string) ([]byte, error) {
	if c.unusable != nil {
		return nil, c.unusable
	}
	out := make([]byte, 0, len(text)*c.codeLen)
	for _, r := range text {
		code, ok := c.fromRune[r]
		if !ok {
			return nil, fmt.Errorf("font %s cannot encode %q", c.name, r)
		}
		if c.codeLen == 2 {
			out = append(out, byte(code>>8), byte(code))
		} else {
			out = append(out, byte(code))
		}
	}
	return out, nil
}

// encodeLossy is encode with the base letter of a decomposed rune, or '?',
// standing in for unsupported runes.
func (c *codec) encodeLossy(text string) []byte {
	out := make([]byte, 0, len(text)*c.codeLen)
	for _, r := range norm.NFC.String(text) {
		code, ok := c.fromRune[r]
		if !ok {
			code, ok = c.fromRune[baseRune(r)]
		}
		if !ok {
			code = c.fromRune['?']
		}
		if c.codeLen == 2 {
			out = append(out, byte(code>>8), byte(code))
		} else {
			out = append(out, byte(code))
		}
	}
	return out
}

// baseRune returns the first rune of the canonical decomposition of r.
func baseRune(r rune) rune {
	var buf [utf8.UTFMax]byte
	d := norm.NFD.Bytes(buf[:utf8.EncodeRune(buf[:], r)])
	base, _ := utf8.DecodeRune(d)
	return base
}

// width returns the advance of code in thousandths of text space units.
func (c *codec) width(code uint32) float64 {
	if idx := int(code) - c.firstChar; len(c.widths) > 0 && idx >= 0 && idx < len(c.widths) {
		return float64(c.widths[idx])
	}
	if c.metrics != nil {
		if s, ok := c.toRune[code]; ok {
			r, _ := utf8.DecodeRuneInString(s)
			return float64(c.metrics.GetWidth(r, 1000))
		}
	}
	if c.missingWidth > 0 {
		return c.missingWidth
	}
	return 500
}

// newCodec builds the codec of a font resource.
func newCodec(name model.ObjName, fd *model.FontDict) *codec {
	c := &codec{name: string(name), codeLen: 1, ascent: 0.8, descent: -0.2}
	if fd == nil {
		c.unusable = fmt.Errorf("font %s is missing", name)
		return c
	}

	toUnicode := parseToUnicode(fd)

	var (
		enc     model.SimpleEncoding
		builtin *simpleencodings.Encoding
	)
	switch ft := fd.Subtype.(type) {
	case model.FontType1:
		c.name = string(ft.BaseFont)
		c.firstChar, c.widths = int(ft.FirstChar), ft.Widths
		c.setDescriptor(ft.FontDescriptor)
		enc = ft.Encoding
		builtin = builtinType1Encoding(ft.BaseFont)
		if _, std := standardfonts.Fonts[string(ft.BaseFont)]; std && len(ft.Widths) == 0 {
			if built, err := fonts.BuildFont(fd); err == nil {
				c.metrics = built.Font
			}
		}
	case model.FontTrueType:
		c.name = string(ft.BaseFont)
		c.firstChar, c.widths = int(ft.FirstChar), ft.Widths
		c.setDescriptor(ft.FontDescriptor)
		enc = ft.Encoding
	case model.FontType3:
		c.firstChar, c.widths = int(ft.FirstChar), ft.Widths
		c.unusable = errType3Font
		enc = ft.Encoding
	case model.FontType0:
		c.name = string(ft.BaseFont)
		c.codeLen = 2
		c.setDescriptor(ft.DescendantFonts.FontDescriptor)
		c.missingWidth = 1000
		if dw := float64(ft.DescendantFonts.DW); dw > 0 {
			c.missingWidth = dw
		}
		if toUnicode == nil {
			c.unusable = fmt.Errorf("font %s: %w", c.name, errUnknownEncoding)
			c.toRune = map[uint32]string{}
			return c
		}
	default:
		c.unusable = fmt.Errorf("font %s: %w", name, errUnknownEncoding)
	}

	c.toRune, c.fromRune = simpleTables(enc, builtin)
	if c.toRune == nil && toUnicode == nil && c.unusable == nil {
		c.unusable = fmt.Errorf("font %s: %w", c.name, errUnknownEncoding)
	}
	if c.toRune == nil {
		c.toRune, c.fromRune = map[uint32]string{}, map[rune]uint32{}
	}

	// ToUnicode wins over the encoding for both directions
	for code, s := range toUnicode {
		c.toRune[code] = s
		if rs := []rune(s); len(rs) == 1 {
			if _, taken := c.fromRune[rs[0]]; !taken || c.codeLen == 2 {
				c.fromRune[rs[0]] = code
			}
		}
	}
	return c
}

func (c *codec) setDescriptor(desc model.FontDescriptor) {
	if a := float64(desc.Ascent); a > 0 {
		c.ascent = a / 1000
	}
	if d := float64(desc.Descent); d < 0 {
		c.descent = d / 1000
	}
	c.missingWidth = float64(desc.MissingWidth)
}

func parseToUnicode(fd *model.FontDict) map[uint32]string {
	if fd.ToUnicode == nil {
		return nil
	}
	data, err := fd.ToUnicode.Decode()
	if err != nil {
		return nil
	}
	cm, err := cmaps.ParseUnicodeCMap(data)
	if err != nil {
		return nil
	}
	out := make(map[uint32]string)
	for cid, runes := range cm.ProperLookupTable() {
		out[uint32(cid)] = string(runes)
	}
	return out
}

// simpleTables resolves a simple font encoding into code and rune tables.
// builtin is the encoding of the font program, used when the dictionary
// names no base encoding. Unknown encodings return nil maps.
func simpleTables(enc model.SimpleEncoding, builtin *simpleencodings.Encoding) (map[uint32]string, map[rune]uint32) {
	var (
		base  *simpleencodings.Encoding
		diffs model.Differences
	)
	switch enc := enc.(type) {
	case model.SimpleEncodingPredefined:
		base = simpleencodings.PredefinedEncodings[enc]
	case *model.SimpleEncodingDict:
		base = builtin
		if enc.BaseEncoding != "" {
			base = simpleencodings.PredefinedEncodings[enc.BaseEncoding]
		}
		if base == nil {
			base = &simpleencodings.Standard
		}
		diffs = enc.Differences
	case nil:
		base = builtin
	}
	if base == nil {
		return nil, nil
	}

	byName := base.NameToRune()
	toRune := make(map[uint32]string, 256)
	fromRune := make(map[rune]uint32, 256)
	for code, name := range diffs.Apply(base.Names) {
		if name == "" {
			continue
		}
		r, ok := byName[name]
		if !ok {
			r, _ = glyphsnames.GlyphToRune(name)
		}
		if r == 0 {
			log.Printf("[pdftext] glyph %s has no unicode value", name)
			continue
		}
		toRune[uint32(code)] = string(r)
		if _, taken := fromRune[r]; !taken {
			fromRune[r] = uint32(code)
		}
	}
	return toRune, fromRune
}

// builtinType1Encoding is the encoding of a Type1 font without an Encoding
// entry. Embedded programs are not read, ToUnicode covers those that
// carry a custom encoding.
func builtinType1Encoding(baseFont model.ObjName) *simpleencodings.Encoding {
	switch baseFont {
	case "Symbol":
		return &simpleencodings.Symbol
	case "ZapfDingbats":
		return &simpleencodings.ZapfDingbats
	default:
		return &simpleencodings.Standard
	}
}

// fallbackFonts are the standard fonts offered for the rewrite pass, keyed
// by their short and PostScript names.
var fallbackFonts = map[string]func() model.FontType1{
	"helv":        standardfonts.Helvetica.WesternType1Font,
	"Helvetica":   standardfonts.Helvetica.WesternType1Font,
	"tiro":        standardfonts.Times_Roman.WesternType1Font,
	"Times-Roman": standardfonts.Times_Roman.WesternType1Font,
	"cour":        standardfonts.Courier.WesternType1Font,
	"Courier":     standardfonts.Courier.WesternType1Font,
}

// fallbackFont returns the font dictionary of a standard font with WinAnsi
// encoding.
func fallbackFont(name string) (*model.FontDict, error) {
	build, ok := fallbackFonts[name]
	if !ok {
		return nil, fmt.Errorf("unknown default font %q (use helv, tiro or cour)", name)
	}
	ft := build()
	ft.Encoding = model.WinAnsiEncoding
	return &model.FontDict{Subtype: ft}, nil
}

