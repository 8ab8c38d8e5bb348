package pdftext

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/pdf/model"
	"github.com/phpdave11/gofpdf"
)

const sample = "BT /F1 12 Tf 72 700 Td (Hello World) Tj 0 -14 Td (Second line) Tj ET"

func newDoc(t *testing.T, content string) (*model.Document, *model.PageObject) {
	t.Helper()
	helv, err := fallbackFont("helv")
	if err != nil {
		t.Fatal(err)
	}
	page := &model.PageObject{
		MediaBox: &model.Rectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792},
		Resources: &model.ResourcesDict{
			Font: map[model.ObjName]*model.FontDict{"F1": helv},
		},
		Contents: []model.ContentStream{{Stream: model.Stream{Content: []byte(content)}}},
	}
	doc := &model.Document{}
	doc.Catalog.Pages.Kids = []model.PageNode{page}
	return doc, page
}

func spanTexts(t *testing.T, page *model.PageObject) []string {
	t.Helper()
	blocks, err := ExtractPage(page)
	if err != nil {
		t.Fatalf("ExtractPage: %v", err)
	}
	var out []string
	for _, b := range blocks {
		for _, s := range b.Spans {
			out = append(out, s.Text)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestReplaceSpanText(t *testing.T) {
	tests := []struct {
		text, search, repl, want string
	}{
		{"Hello World", "World", "Earth", "Hello Earth"},
		{"World World", "World", "Earth", "Earth Earth"},
		{"Hello WORLD and world", "World", "Earth", "Hello Earth and world"},
		{"hello", "HELLO", "Bye", "Bye"},
		{"Ünïcode text", "ÜNÏ", "uni", "unicode text"},
		{"nothing here", "World", "Earth", "nothing here"},
	}
	for _, tt := range tests {
		if got := ReplaceSpanText(tt.text, tt.search, tt.repl); got != tt.want {
			t.Errorf("ReplaceSpanText(%q, %q, %q) = %q, want %q", tt.text, tt.search, tt.repl, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	if !Matches("Hello World", "world") {
		t.Error("case-insensitive match failed")
	}
	if Matches("Hello", "") {
		t.Error("empty search must not match")
	}
	if Matches("Hello", "bye") {
		t.Error("unexpected match")
	}
}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in   string
		want Anchor
		ok   bool
	}{
		{"", AnchorBaseline, true},
		{"baseline", AnchorBaseline, true},
		{"TopLeft", AnchorTopLeft, true},
		{"middle", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseAnchor(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseAnchor(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDefaultOutputPath(t *testing.T) {
	got := DefaultOutputPath(filepath.Join("docs", "report.pdf"))
	want := filepath.Join("docs", "report_updated.pdf")
	if got != want {
		t.Errorf("DefaultOutputPath = %q, want %q", got, want)
	}
}

func TestGroupThousands(t *testing.T) {
	for n, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"} {
		if got := groupThousands(n); got != want {
			t.Errorf("groupThousands(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestExtractPage(t *testing.T) {
	_, page := newDoc(t, sample)
	blocks, err := ExtractPage(page)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if len(b.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(b.Lines))
	}
	if got := b.Text(); got != "Hello World\nSecond line" {
		t.Errorf("Text = %q", got)
	}

	first := b.Spans[0]
	if first.FontName != "Helvetica" || first.Size != 12 {
		t.Errorf("font = %s %v", first.FontName, first.Size)
	}
	if o := first.Origin(); o.X != 72 || o.Y != 700 {
		t.Errorf("origin = %+v", o)
	}
	if first.BBox.X0 != 72 || first.BBox.Y0 >= 700 || first.BBox.Y1 <= 700 || first.BBox.X1 <= 72 {
		t.Errorf("bbox = %+v", first.BBox)
	}
}

func TestExtractPageTJAndColor(t *testing.T) {
	_, page := newDoc(t, "0 0 1 rg BT /F1 10 Tf 1 0 0 1 50 500 Tm [(Hel) -250 (lo)] TJ ET")
	blocks, err := ExtractPage(page)
	if err != nil {
		t.Fatal(err)
	}
	s := blocks[0].Spans[0]
	if s.Text != "Hello" {
		t.Errorf("Text = %q", s.Text)
	}
	if s.Color.Space != RGB || s.Color.Components[2] != 1 {
		t.Errorf("Color = %+v", s.Color)
	}
}

func TestReplaceDocument(t *testing.T) {
	doc, page := newDoc(t, sample)
	var out bytes.Buffer
	res, err := ReplaceDocument(doc, "World", "Earth", Options{Stdout: &out})
	if err != nil {
		t.Fatal(err)
	}
	if res.Replacements != 1 || res.FontFallback {
		t.Errorf("result = %+v", res)
	}
	if len(page.Contents) != 3 {
		t.Fatalf("got %d content streams, want 3", len(page.Contents))
	}
	overlay := string(page.Contents[2].Content)
	if !strings.HasPrefix(overlay, "Q\n") || !strings.Contains(overlay, " re") {
		t.Errorf("overlay = %q", overlay)
	}
	if texts := spanTexts(t, page); !contains(texts, "Hello Earth") {
		t.Errorf("spans = %q", texts)
	}
}

func TestReplaceDocumentNotFound(t *testing.T) {
	doc, page := newDoc(t, sample)
	_, err := ReplaceDocument(doc, "Mars", "Earth", Options{Stdout: &bytes.Buffer{}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(page.Contents) != 1 {
		t.Errorf("page changed: %d streams", len(page.Contents))
	}
}

func TestReplaceDocumentFallback(t *testing.T) {
	doc, page := newDoc(t, sample)
	var out bytes.Buffer
	res, err := ReplaceDocument(doc, "World", "Ωmega", Options{Stdout: &out})
	if err != nil {
		t.Fatal(err)
	}
	if !res.FontFallback || res.Replacements != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Unavailable) != 1 || res.Unavailable[0] != "Helvetica" {
		t.Errorf("Unavailable = %v", res.Unavailable)
	}
	if !strings.Contains(out.String(), "Original font 'Helvetica' not available") {
		t.Errorf("output = %q", out.String())
	}
	if _, ok := page.Resources.Font["FKDefault1"]; !ok {
		t.Errorf("fallback font not registered: %v", page.Resources.Font)
	}

	// the whole block is redrawn, not only the matching span
	texts := spanTexts(t, page)
	if !contains(texts, "Hello ?mega") {
		t.Errorf("spans = %q", texts)
	}
	n := 0
	for _, s := range texts {
		if s == "Second line" {
			n++
		}
	}
	if n != 2 {
		t.Errorf("Second line drawn %d times, want 2", n)
	}
}

func TestReplaceDocumentTopLeftAnchor(t *testing.T) {
	doc, page := newDoc(t, sample)
	if _, err := ReplaceDocument(doc, "World", "Earth", Options{Anchor: AnchorTopLeft, Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatal(err)
	}
	blocks, err := ExtractPage(page)
	if err != nil {
		t.Fatal(err)
	}
	last := blocks[len(blocks)-1].Spans[0]
	if last.Text != "Hello Earth" || last.Origin().Y <= 700 {
		t.Errorf("span %q at %+v", last.Text, last.Origin())
	}
}

func TestUnknownDefaultFont(t *testing.T) {
	doc, _ := newDoc(t, sample)
	if _, err := ReplaceDocument(doc, "World", "Earth", Options{DefaultFont: "comic", Stdout: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unknown font")
	}
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(20, 30, "Hello World")
	pdf.Text(20, 40, "Another line")
	path := filepath.Join(dir, "input.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	before, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	res, err := Replace(in, "world", "Earth", Options{Stdout: &out})
	if err != nil {
		t.Fatalf("Replace: %v\n%s", err, out.String())
	}
	if res.Output != filepath.Join(dir, "input_updated.pdf") || res.Replacements != 1 {
		t.Errorf("result = %+v", res)
	}

	after, err := os.ReadFile(in)
	if err != nil || !bytes.Equal(before, after) {
		t.Error("input file was modified")
	}

	doc, err := Load(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, page := range doc.Pages() {
		if contains(spanTexts(t, page), "Hello Earth") {
			found = true
		}
	}
	if !found {
		t.Error("replacement missing from saved file")
	}
}

func TestReplaceFileNotFound(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	_, err := Replace(in, "Mars", "Earth", Options{Stdout: &bytes.Buffer{}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(DefaultOutputPath(in)); !os.IsNotExist(err) {
		t.Error("output written although nothing matched")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	in := writeFixture(t, t.TempDir())
	n, err := Validate(in)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
}

func TestReplaceDocumentFallbackScope(t *testing.T) {
	content := "BT /F1 12 Tf 72 700 Td (Hello World) Tj 0 -14 Td (World again) Tj ET " +
		"BT /F1 12 Tf 72 500 Td (Other block) Tj ET"
	doc, page := newDoc(t, content)
	var out bytes.Buffer
	res, err := ReplaceDocument(doc, "World", "Ωmega", Options{Stdout: &out})
	if err != nil {
		t.Fatal(err)
	}
	if res.Replacements != 2 {
		t.Errorf("Replacements = %d, want 2", res.Replacements)
	}
	// Helvetica fails on the first span and is not tried again
	if len(res.Unavailable) != 1 {
		t.Errorf("Unavailable = %v", res.Unavailable)
	}
	if n := strings.Count(out.String(), "not available"); n != 1 {
		t.Errorf("font failure reported %d times\n%s", n, out.String())
	}

	texts := spanTexts(t, page)
	for _, want := range []string{"Hello ?mega", "?mega again"} {
		if !contains(texts, want) {
			t.Errorf("spans = %q, missing %q", texts, want)
		}
	}
	n := 0
	for _, s := range texts {
		if s == "Other block" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("block without matches drawn %d times, want 1", n)
	}
}

func addForm(t *testing.T, page *model.PageObject) *model.FontDict {
	t.Helper()
	formFont, err := fallbackFont("helv")
	if err != nil {
		t.Fatal(err)
	}
	page.Resources.XObject = map[model.ObjName]model.XObject{
		"Fm1": &model.XObjectForm{
			ContentStream: model.ContentStream{Stream: model.Stream{
				Content: []byte("BT /F9 12 Tf 72 700 Td (Form World) Tj ET"),
			}},
			Matrix: model.Matrix{1, 0, 0, 1, 100, 50},
			Resources: model.ResourcesDict{
				Font: map[model.ObjName]*model.FontDict{"F9": formFont},
			},
		},
	}
	return formFont
}

func TestExtractPageForm(t *testing.T) {
	_, page := newDoc(t, "q /Fm1 Do Q")
	addForm(t, page)
	blocks, err := ExtractPage(page)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	s := blocks[0].Spans[0]
	if s.Text != "Form World" {
		t.Errorf("Text = %q", s.Text)
	}
	if o := s.Origin(); o.X != 172 || o.Y != 750 {
		t.Errorf("origin = %+v", o)
	}
}

func TestReplaceDocumentForm(t *testing.T) {
	doc, page := newDoc(t, "q /Fm1 Do Q")
	formFont := addForm(t, page)
	res, err := ReplaceDocument(doc, "World", "Earth", Options{Stdout: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Replacements != 1 || res.FontFallback {
		t.Errorf("result = %+v", res)
	}
	if page.Resources.Font["FKFont1"] != formFont {
		t.Errorf("form font not registered on the page: %v", page.Resources.Font)
	}
	if texts := spanTexts(t, page); !contains(texts, "Form Earth") {
		t.Errorf("spans = %q", texts)
	}
}
