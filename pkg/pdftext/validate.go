package pdftext

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating its config directory
	pdfcpumodel.ConfigPath = "disable"
}

// Validate checks the PDF at path with pdfcpu and returns its page count.
func Validate(path string) (int, error) {
	conf := pdfcpumodel.NewDefaultConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("validate %s: %w", path, err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", path, err)
	}
	return n, nil
}
