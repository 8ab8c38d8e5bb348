package dirindex

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hoppxi/filekit/internal/utils"
)

const DefaultOutput = "index.html"

// Options configures Generate.
type Options struct {
	Filter *Filter
	Stdout io.Writer
}

// Generate writes the index of folder to <folder>/<output> and reports
// the result on stdout. It returns the number of indexed entries.
func Generate(folder, output string, opts Options) (int, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if output == "" {
		output = DefaultOutput
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return 0, err
	}

	entries, err := List(abs, output, ListOptions{
		Exclude: []string{filepath.Base(os.Args[0])},
		Filter:  opts.Filter,
	})
	if err != nil {
		if errors.Is(err, ErrNotDirectory) {
			return 0, fmt.Errorf("'%s' %w", folder, ErrNotDirectory)
		}
		return 0, err
	}
	log.Printf("[index] %s: %d entries", abs, len(entries))

	path := filepath.Join(abs, output)
	err = utils.WriteFileAtomic(path, func(w io.Writer) error {
		return Render(w, folderTitle(abs), entries)
	})
	if err != nil {
		if os.IsPermission(err) {
			return 0, fmt.Errorf("permission denied writing to '%s'", path)
		}
		return 0, fmt.Errorf("error writing file: %w", err)
	}

	fmt.Fprintf(stdout, "Successfully generated '%s' in '%s'\n", output, folder)
	fmt.Fprintf(stdout, "Indexed %d items\n", len(entries))
	return len(entries), nil
}

// folderTitle is the last path element, empty for a filesystem root.
func folderTitle(abs string) string {
	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." || filepath.VolumeName(abs)+string(filepath.Separator) == abs {
		return ""
	}
	return base
}
