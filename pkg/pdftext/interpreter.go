package pdftext

import (
	"bytes"
	"fmt"
	"log"
	"math"

	cs "github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/pdf/reader/parser"
)

// matrix is a PDF transformation [a b c d e f] applied to row vectors.
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func fromModel(m model.Matrix) matrix {
	var out matrix
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

func (m matrix) toModel() model.Matrix {
	var out model.Matrix
	for i, v := range m {
		out[i] = model.Fl(v)
	}
	return out
}

// mul returns m followed by n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) Point {
	return Point{x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]}
}

func translation(x, y float64) matrix { return matrix{1, 0, 0, 1, x, y} }

// Point is a position in user space.
type Point struct{ X, Y float64 }

// Rect is an axis aligned box in user space (y up).
type Rect struct{ X0, Y0, X1, Y1 float64 }

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

func boundsOf(pts ...Point) Rect {
	r := Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		r.X0, r.Y0 = math.Min(r.X0, p.X), math.Min(r.Y0, p.Y)
		r.X1, r.Y1 = math.Max(r.X1, p.X), math.Max(r.Y1, p.Y)
	}
	return r
}

// ColorSpace of a fill color.
type ColorSpace int

const (
	Gray ColorSpace = iota
	RGB
	CMYK
)

// Color is a device fill color.
type Color struct {
	Space      ColorSpace
	Components []float64
}

var black = Color{Space: Gray, Components: []float64{0}}

func colorFrom(comps []model.Fl) Color {
	c := make([]float64, len(comps))
	for i, v := range comps {
		c[i] = float64(v)
	}
	switch len(c) {
	case 1:
		return Color{Gray, c}
	case 3:
		return Color{RGB, c}
	case 4:
		return Color{CMYK, c}
	default:
		return black
	}
}

// op returns the operator setting c as the fill color.
func (c Color) op() cs.Operation {
	f := func(i int) model.Fl { return model.Fl(c.Components[i]) }
	switch {
	case c.Space == RGB && len(c.Components) == 3:
		return cs.OpSetFillRGBColor{R: f(0), G: f(1), B: f(2)}
	case c.Space == CMYK && len(c.Components) == 4:
		return cs.OpSetFillCMYKColor{C: f(0), M: f(1), Y: f(2), K: f(3)}
	case c.Space == Gray && len(c.Components) == 1:
		return cs.OpSetFillGray{G: f(0)}
	default:
		return cs.OpSetFillGray{G: 0}
	}
}

// Span is the text shown by one text showing operator.
type Span struct {
	Text     string
	Font     model.ObjName
	FontName string
	Size     float64
	Color    Color
	// BBox covers the glyphs from descent to ascent.
	BBox Rect
	// Matrix maps text space at the start of the span to user space.
	Matrix matrix
	Rise   float64
	HScale float64
	Ascent float64

	Block int
	Line  int

	// fontDict is the resource Font names, which may belong to a form.
	fontDict *model.FontDict
	codec    *codec
}

// Origin is where the baseline of the span starts, in user space.
func (s *Span) Origin() Point { return s.Matrix.apply(0, s.Rise) }

// Block is one BT..ET text object.
type Block struct {
	Spans []*Span
	// Lines groups the spans sharing a baseline.
	Lines [][]*Span
}

// Text returns the block content, lines separated by newlines.
func (b *Block) Text() string {
	var buf bytes.Buffer
	for i, line := range b.Lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for _, s := range line {
			buf.WriteString(s.Text)
		}
	}
	return buf.String()
}

type textState struct {
	charSpace, wordSpace float64
	hScale               float64
	leading              float64
	font                 model.ObjName
	size                 float64
	rise                 float64
}

type graphicsState struct {
	ctm  matrix
	fill Color
	text textState
}

// maxFormDepth bounds the nesting of form XObjects, which may refer to
// each other.
const maxFormDepth = 8

// interpreter walks the operations of one page and collects its blocks.
type interpreter struct {
	fonts    map[model.ObjName]*model.FontDict
	xobjects map[model.ObjName]model.XObject
	codecs   map[model.ObjName]*codec
	depth    int

	gs    graphicsState
	stack []graphicsState

	tm, tlm matrix
	inText  bool
	blocks  []*Block
	cur     *Block
}

func newInterpreter(res *model.ResourcesDict) *interpreter {
	it := &interpreter{
		codecs: make(map[model.ObjName]*codec),
		gs: graphicsState{
			ctm:  identity,
			fill: black,
			text: textState{hScale: 1},
		},
	}
	if res != nil {
		it.fonts = res.Font
		it.xobjects = res.XObject
	}
	return it
}

func (it *interpreter) codec(name model.ObjName) *codec {
	if c, ok := it.codecs[name]; ok {
		return c
	}
	c := newCodec(name, it.fonts[name])
	it.codecs[name] = c
	return c
}

func (it *interpreter) run(ops []cs.Operation) []*Block {
	for _, op := range ops {
		it.step(op)
	}
	if it.cur != nil {
		it.endText()
	}
	return it.blocks
}

func (it *interpreter) step(op cs.Operation) {
	ts := &it.gs.text
	switch op := op.(type) {
	case cs.OpSave:
		it.stack = append(it.stack, it.gs)
	case cs.OpRestore:
		if n := len(it.stack); n > 0 {
			it.gs = it.stack[n-1]
			it.stack = it.stack[:n-1]
		}
	case cs.OpConcat:
		it.gs.ctm = fromModel(op.Matrix).mul(it.gs.ctm)

	case cs.OpSetFillGray:
		it.gs.fill = colorFrom([]model.Fl{op.G})
	case cs.OpSetFillRGBColor:
		it.gs.fill = colorFrom([]model.Fl{op.R, op.G, op.B})
	case cs.OpSetFillCMYKColor:
		it.gs.fill = colorFrom([]model.Fl{op.C, op.M, op.Y, op.K})
	case cs.OpSetFillColor:
		it.gs.fill = colorFrom(op.Color)
	case cs.OpSetFillColorN:
		it.gs.fill = colorFrom(op.Color)

	case cs.OpBeginText:
		it.inText = true
		it.tm, it.tlm = identity, identity
		it.cur = &Block{}
	case cs.OpEndText:
		it.endText()

	case cs.OpSetFont:
		ts.font, ts.size = op.Font, float64(op.Size)
	case cs.OpSetCharSpacing:
		ts.charSpace = float64(op.CharSpace)
	case cs.OpSetWordSpacing:
		ts.wordSpace = float64(op.WordSpace)
	case cs.OpSetHorizScaling:
		ts.hScale = float64(op.Scale) / 100
	case cs.OpSetTextLeading:
		ts.leading = float64(op.L)
	case cs.OpSetTextRise:
		ts.rise = float64(op.Rise)

	case cs.OpSetTextMatrix:
		it.tm = fromModel(op.Matrix)
		it.tlm = it.tm
	case cs.OpTextMove:
		it.moveLine(float64(op.X), float64(op.Y))
	case cs.OpTextMoveSet:
		ts.leading = -float64(op.Y)
		it.moveLine(float64(op.X), float64(op.Y))
	case cs.OpTextNextLine:
		it.moveLine(0, -ts.leading)

	case cs.OpShowText:
		it.show([]textPiece{{codes: []byte(op.Text)}})
	case cs.OpMoveShowText:
		it.moveLine(0, -ts.leading)
		it.show([]textPiece{{codes: []byte(op.Text)}})
	case cs.OpMoveSetShowText:
		ts.wordSpace = float64(op.WordSpacing)
		ts.charSpace = float64(op.CharacterSpacing)
		it.moveLine(0, -ts.leading)
		it.show([]textPiece{{codes: []byte(op.Text)}})
	case cs.OpShowSpaceText:
		pieces := make([]textPiece, len(op.Texts))
		for i, t := range op.Texts {
			pieces[i] = textPiece{codes: []byte(string(t.CharCodes)), adjust: float64(t.SpaceSubtractedAfter)}
		}
		it.show(pieces)

	case cs.OpXObject:
		it.drawForm(op.XObject)
	}
}

// drawForm runs the content of a form XObject in the current graphics
// state. Its text objects become blocks of the page.
func (it *interpreter) drawForm(name model.ObjName) {
	form, ok := it.xobjects[name].(*model.XObjectForm)
	if !ok || form == nil || it.depth >= maxFormDepth {
		return
	}
	content, err := form.Decode()
	if err != nil {
		log.Printf("[pdftext] form %s: %v", name, err)
		return
	}
	ops, err := parser.ParseContent(content, nil)
	if err != nil {
		log.Printf("[pdftext] form %s: %v", name, err)
		return
	}

	child := newInterpreter(&form.Resources)
	// forms without resources use the ones of their parent
	if len(child.fonts) == 0 {
		child.fonts = it.fonts
	}
	if len(child.xobjects) == 0 {
		child.xobjects = it.xobjects
	}
	child.depth = it.depth + 1
	child.gs = it.gs
	m := identity
	if form.Matrix != (model.Matrix{}) {
		m = fromModel(form.Matrix)
	}
	child.gs.ctm = m.mul(it.gs.ctm)
	it.blocks = append(it.blocks, child.run(ops)...)
}

func (it *interpreter) moveLine(x, y float64) {
	it.tlm = translation(x, y).mul(it.tlm)
	it.tm = it.tlm
}

func (it *interpreter) endText() {
	if it.cur != nil && len(it.cur.Spans) > 0 {
		groupLines(it.cur)
		it.blocks = append(it.blocks, it.cur)
	}
	it.cur = nil
	it.inText = false
}

// textPiece is a run of character codes followed by a TJ adjustment in
// thousandths of text space units.
type textPiece struct {
	codes  []byte
	adjust float64
}

func (it *interpreter) show(pieces []textPiece) {
	if !it.inText || it.cur == nil {
		return
	}
	ts := it.gs.text
	c := it.codec(ts.font)
	start := it.tm.mul(it.gs.ctm)

	var text bytes.Buffer
	var adv float64
	for _, p := range pieces {
		text.WriteString(c.decode(p.codes))
		c.eachCode(p.codes, func(code uint32) {
			w := c.width(code)/1000*ts.size + ts.charSpace
			if c.codeLen == 1 && code == ' ' {
				w += ts.wordSpace
			}
			adv += w * ts.hScale
		})
		adv -= p.adjust / 1000 * ts.size * ts.hScale
	}
	it.tm = translation(adv, 0).mul(it.tm)

	lo := c.descent*ts.size + ts.rise
	hi := c.ascent*ts.size + ts.rise
	span := &Span{
		Text:     text.String(),
		Font:     ts.font,
		FontName: c.name,
		Size:     ts.size,
		Color:    it.gs.fill,
		BBox: boundsOf(
			start.apply(0, lo), start.apply(adv, lo),
			start.apply(0, hi), start.apply(adv, hi),
		),
		Matrix: start,
		Rise:   ts.rise,
		HScale: ts.hScale,
		Ascent: c.ascent,

		fontDict: it.fonts[ts.font],
		codec:    c,
	}
	it.cur.Spans = append(it.cur.Spans, span)
}

// baselineTolerance is how far apart, in user space units, two baselines
// may be and still form one line.
const baselineTolerance = 1.0

func groupLines(b *Block) {
	b.Lines = nil
	var lineY float64
	for _, s := range b.Spans {
		y := s.Origin().Y
		if len(b.Lines) == 0 || math.Abs(y-lineY) > baselineTolerance {
			b.Lines = append(b.Lines, nil)
			lineY = y
		}
		s.Line = len(b.Lines) - 1
		b.Lines[s.Line] = append(b.Lines[s.Line], s)
	}
}

// pageResources returns the resources of page, inherited from the page
// tree when the page has none.
func pageResources(page *model.PageObject) *model.ResourcesDict {
	if page.Resources != nil {
		return page.Resources
	}
	for parent := page.Parent; parent != nil; parent = parent.Parent {
		if parent.Resources != nil {
			return parent.Resources
		}
	}
	return nil
}

// pageContent decodes and concatenates the content streams of page.
func pageContent(page *model.PageObject) ([]byte, error) {
	var buf bytes.Buffer
	for i, ct := range page.Contents {
		data, err := ct.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream %d: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ExtractPage returns the text blocks of page.
func ExtractPage(page *model.PageObject) ([]*Block, error) {
	content, err := pageContent(page)
	if err != nil {
		return nil, err
	}
	ops, err := parser.ParseContent(content, nil)
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	blocks := newInterpreter(pageResources(page)).run(ops)
	for i, b := range blocks {
		for _, s := range b.Spans {
			s.Block = i
		}
	}
	return blocks, nil
}
