package pdftext

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	cs "github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
)

var ErrNotFound = errors.New("text not found in PDF")

// DefaultFont is the standard font used when an original font cannot
// encode the replacement.
const DefaultFont = "helv"

// Anchor selects where re-inserted text is placed.
type Anchor int

const (
	// AnchorBaseline keeps the baseline of the original span.
	AnchorBaseline Anchor = iota
	// AnchorTopLeft puts the baseline at the top of the span box.
	AnchorTopLeft
)

func (a Anchor) String() string {
	if a == AnchorTopLeft {
		return "topleft"
	}
	return "baseline"
}

// ParseAnchor accepts "baseline" and "topleft".
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "baseline":
		return AnchorBaseline, nil
	case "topleft", "top-left":
		return AnchorTopLeft, nil
	default:
		return 0, fmt.Errorf("anchor must be baseline or topleft, got %q", s)
	}
}

type Options struct {
	// Output defaults to DefaultOutputPath of the input.
	Output string
	Anchor Anchor
	// DefaultFont names the fallback font: helv, tiro or cour.
	DefaultFont string
	// Validate runs pdfcpu over the written file.
	Validate bool

	Stdout io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// Result of a replacement run.
type Result struct {
	Replacements int
	// FontFallback is set when the affected blocks were rewritten with the
	// default font.
	FontFallback bool
	Output       string
	// Unavailable lists the original fonts that could not encode the text.
	Unavailable []string
	// Pages is filled when the output was validated.
	Pages int
}

// Replace replaces search by replacement in the PDF at path and writes the
// result to opts.Output. The input file is never modified.
func Replace(path, search, replacement string, opts Options) (Result, error) {
	if search == "" {
		return Result{}, errors.New("no search text provided")
	}
	out := opts.Output
	if out == "" {
		out = DefaultOutputPath(path)
	}
	w := opts.stdout()

	fmt.Fprintf(w, "\nOpening PDF: %s\n", path)
	doc, err := Load(path)
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(w, "PDF opened successfully. Number of pages: %d\n", len(doc.Pages()))

	res, err := ReplaceDocument(&doc.Model, search, replacement, opts)
	if err != nil {
		return res, err
	}

	fmt.Fprintf(w, "\nSaving to: %s\n", out)
	if err := doc.Save(out); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", out, err)
	}
	res.Output = out

	if opts.Validate {
		pages, err := Validate(out)
		if err != nil {
			return res, err
		}
		res.Pages = pages
		fmt.Fprintf(w, "Validated output: %d page(s)\n", pages)
	}

	fmt.Fprintf(w, "Successfully replaced %d instance(s) of '%s' with '%s'\n", res.Replacements, search, replacement)
	if res.FontFallback {
		fmt.Fprintf(w, "Affected blocks converted to default font '%s'\n", fontOrDefault(opts.DefaultFont))
	}
	fmt.Fprintf(w, "New file saved to: %s\n", out)
	if st, err := os.Stat(out); err == nil {
		fmt.Fprintf(w, "File size: %s bytes\n", groupThousands(st.Size()))
	}
	return res, nil
}

// ReplaceDocument runs the replacement in memory. Nothing is changed when
// it returns ErrNotFound.
//
// The first pass plans an edit per matching span with its original font.
// When any font cannot encode its new text, that plan is dropped and every
// block holding a match is rewritten with the default font instead.
func ReplaceDocument(doc *model.Document, search, replacement string, opts Options) (Result, error) {
	var res Result
	if search == "" {
		return res, errors.New("no search text provided")
	}
	w := opts.stdout()

	fallback, err := fallbackFont(fontOrDefault(opts.DefaultFont))
	if err != nil {
		return res, err
	}

	pages := doc.Catalog.Pages.Flatten()
	extracted := make([][]*Block, len(pages))
	for i, page := range pages {
		blocks, err := ExtractPage(page)
		if err != nil {
			return res, fmt.Errorf("page %d: %w", i+1, err)
		}
		extracted[i] = blocks
	}

	fmt.Fprintln(w, "\nAttempting replacements with original fonts...")
	plans, failed := planOriginal(extracted, search, replacement, w)
	res.Unavailable = failed

	if len(failed) > 0 {
		fmt.Fprintf(w, "\nOriginal font not available. Converting affected blocks to default font '%s'...\n", fontOrDefault(opts.DefaultFont))
		plans = planFallback(extracted, search, replacement, fallback)
		res.FontFallback = true
	}

	for _, p := range plans {
		res.Replacements += p.replacements
	}
	if res.Replacements == 0 {
		fmt.Fprintf(w, "\n'%s' not found in PDF\n", search)
		return res, fmt.Errorf("'%s': %w", search, ErrNotFound)
	}

	for i, p := range plans {
		if len(p.edits) == 0 {
			continue
		}
		if err := p.apply(pages[i], fallback, opts.Anchor); err != nil {
			return res, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return res, nil
}

// edit re-draws one span.
type edit struct {
	span  *Span
	codes []byte
	// fallback selects the default font instead of the span font.
	fallback bool
}

type pagePlan struct {
	edits        []edit
	replacements int
	// fallbackCodec encodes text for the default font, when used.
	fallbackCodec *codec
}

func planOriginal(pages [][]*Block, search, replacement string, w io.Writer) ([]pagePlan, []string) {
	plans := make([]pagePlan, len(pages))
	failedFonts := map[string]bool{}
	var failed []string

	for i, blocks := range pages {
		for _, b := range blocks {
			for _, s := range b.Spans {
				if !Matches(s.Text, search) {
					continue
				}
				if failedFonts[s.FontName] {
					continue
				}
				codes, err := s.codec.encode(ReplaceSpanText(s.Text, search, replacement))
				if err != nil {
					log.Printf("[pdftext] page %d: %v", i+1, err)
					fmt.Fprintf(w, "  Page %d: Original font '%s' not available\n", i+1, s.FontName)
					failedFonts[s.FontName] = true
					failed = append(failed, s.FontName)
					continue
				}
				plans[i].edits = append(plans[i].edits, edit{span: s, codes: codes})
				plans[i].replacements++
			}
		}
	}
	return plans, failed
}

func planFallback(pages [][]*Block, search, replacement string, fallback *model.FontDict) []pagePlan {
	plans := make([]pagePlan, len(pages))
	for i, blocks := range pages {
		fc := newCodec("", fallback)
		plans[i].fallbackCodec = fc
		for _, b := range blocks {
			if !blockMatches(b, search) {
				continue
			}
			for _, s := range b.Spans {
				if strings.TrimSpace(s.Text) == "" {
					continue
				}
				text := s.Text
				if Matches(text, search) {
					text = ReplaceSpanText(text, search, replacement)
					plans[i].replacements++
				}
				plans[i].edits = append(plans[i].edits, edit{span: s, codes: fc.encodeLossy(text), fallback: true})
			}
		}
	}
	return plans
}

func blockMatches(b *Block, search string) bool {
	for _, s := range b.Spans {
		if strings.TrimSpace(s.Text) != "" && Matches(s.Text, search) {
			return true
		}
	}
	return false
}

// apply whites out the spans of the plan and draws their new text in an
// extra content stream. The original streams are isolated in q..Q.
func (p pagePlan) apply(page *model.PageObject, fallback *model.FontDict, anchor Anchor) error {
	var fallbackName model.ObjName
	for _, e := range p.edits {
		if e.fallback {
			fallbackName = addFont(page, fallback, "FKDefault")
			break
		}
	}

	var ops []cs.Operation
	for _, e := range p.edits {
		r := e.span.BBox
		ops = append(ops,
			cs.OpSave{},
			cs.OpSetFillRGBColor{R: 1, G: 1, B: 1},
			cs.OpRectangle{X: model.Fl(r.X0), Y: model.Fl(r.Y0), W: model.Fl(r.Width()), H: model.Fl(r.Height())},
			cs.OpFill{},
			cs.OpRestore{},
		)
	}
	for _, e := range p.edits {
		s := e.span
		// spans drawn by a form use fonts of the form resources
		font, ascent := fallbackName, s.Ascent
		if e.fallback {
			ascent = p.fallbackCodec.ascent
		} else {
			font = addFont(page, s.fontDict, "FKFont")
		}
		m := s.Matrix
		if anchor == AnchorTopLeft {
			m = translation(0, ascent*s.Size).mul(m)
		}
		ops = append(ops, cs.OpBeginText{}, s.Color.op(), cs.OpSetFont{Font: font, Size: model.Fl(s.Size)})
		if s.HScale != 1 {
			ops = append(ops, cs.OpSetHorizScaling{Scale: model.Fl(s.HScale * 100)})
		}
		if s.Rise != 0 {
			ops = append(ops, cs.OpSetTextRise{Rise: model.Fl(s.Rise)})
		}
		ops = append(ops,
			cs.OpSetTextMatrix{Matrix: m.toModel()},
			cs.OpShowText{Text: string(e.codes)},
			cs.OpEndText{},
		)
	}

	overlay := append([]byte("Q\n"), cs.WriteOperations(ops...)...)
	contents := make([]model.ContentStream, 0, len(page.Contents)+2)
	contents = append(contents, model.ContentStream{Stream: model.Stream{Content: []byte("q\n")}})
	contents = append(contents, page.Contents...)
	contents = append(contents, model.ContentStream{Stream: model.Stream{Content: overlay}})
	page.Contents = contents
	return nil
}

// addFont returns the name of fd in the page resources, registering it
// under a fresh prefixed name when missing.
func addFont(page *model.PageObject, fd *model.FontDict, prefix string) model.ObjName {
	res := pageResources(page)
	if res == nil {
		res = &model.ResourcesDict{}
		page.Resources = res
	}
	if res.Font == nil {
		res.Font = make(map[model.ObjName]*model.FontDict)
	}
	for name, existing := range res.Font {
		if existing == fd {
			return name
		}
	}
	for i := 1; ; i++ {
		name := model.ObjName(fmt.Sprintf("%s%d", prefix, i))
		if _, taken := res.Font[name]; !taken {
			res.Font[name] = fd
			return name
		}
	}
}

func fontOrDefault(name string) string {
	if name == "" {
		return DefaultFont
	}
	return name
}

// groupThousands renders n with comma separators: 1234567 -> "1,234,567".
func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
