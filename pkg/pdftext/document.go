// Package pdftext replaces text in the content streams of a PDF, keeping
// the original font when it can encode the new text and rewriting the
// affected text blocks with a standard font otherwise.
package pdftext

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/pdf/reader"
	"github.com/hoppxi/filekit/internal/utils"
)

var ErrFileNotFound = errors.New("PDF file not found")

// DefaultOutputPath is <stem>_updated<ext> next to the input.
func DefaultOutputPath(in string) string {
	ext := filepath.Ext(in)
	stem := strings.TrimSuffix(filepath.Base(in), ext)
	return filepath.Join(filepath.Dir(in), stem+"_updated"+ext)
}

// Document is a parsed PDF together with the encryption it was read with.
type Document struct {
	Model   model.Document
	Encrypt *model.Encrypt
}

// Pages returns the page objects in order.
func (d *Document) Pages() []*model.PageObject {
	return d.Model.Catalog.Pages.Flatten()
}

// Load parses the PDF at path.
func Load(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	doc, enc, err := reader.ParsePDFFile(path, reader.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Document{Model: doc, Encrypt: enc}, nil
}

// Save writes the document to path atomically.
func (d *Document) Save(path string) error {
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return d.Model.Write(w, d.Encrypt)
	})
}
