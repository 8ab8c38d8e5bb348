package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hoppxi/filekit/pkg/dirindex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const indexUsage = `Usage: make-index [folder_path] [output_file]

Arguments:
  folder_path  Path to folder to index (default: current directory)
  output_file  Name of output HTML file (default: index.html)

Examples:
  make-index                    # Index current directory
  make-index /path/to/folder    # Index specific folder
  make-index . index.html       # Custom output filename
`

var indexCmd = &cobra.Command{
	Use:   "index [folder_path] [output_file]",
	Short: "Generate a browsable index.html for a folder",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) > 0 && args[0] == "help" {
			printIndexUsage(out)
			return nil
		}

		v, err := loadConfig(cmd, map[string]string{"index.output": "output"})
		if err != nil {
			return err
		}

		folder := "."
		if len(args) > 0 {
			folder = args[0]
		}
		var outputArg string
		if len(args) > 1 {
			outputArg = args[1]
		}

		where, _ := cmd.Flags().GetString("where")
		filter, err := dirindex.ParseFilter(where)
		if err != nil {
			return err
		}

		generate, ignore := indexJob(v, folder, outputArg, dirindex.Options{Filter: filter, Stdout: out})
		if err := generate(); err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			abs, err := filepath.Abs(folder)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), out, abs, ignore, generate)
		}
		return nil
	},
}

// indexJob returns the index run for folder and the watch filter matching
// it. The output name comes from outputArg, else from index.output as it
// is at each run.
func indexJob(v *viper.Viper, folder, outputArg string, opts dirindex.Options) (func() error, func(string) bool) {
	output := func() string {
		if outputArg != "" {
			return outputArg
		}
		return v.GetString("index.output")
	}
	generate := func() error {
		_, err := dirindex.Generate(folder, output(), opts)
		return err
	}
	return generate, indexIgnore(output)
}

// indexIgnore skips the events caused by writing the index itself.
func indexIgnore(output func() string) func(string) bool {
	return func(name string) bool {
		return name == output() || strings.HasPrefix(name, ".")
	}
}

func printIndexUsage(w io.Writer) {
	fmt.Fprint(w, indexUsage)
}

func init() {
	indexCmd.Flags().String("output", "index.html", "output file name (same as the second argument)")
	indexCmd.Flags().String("where", "", "only list entries matching an expression, e.g. \"dir || ext == '.pdf'\"")
	indexCmd.Flags().Bool("watch", false, "regenerate the index whenever the folder changes")
	indexCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		printIndexUsage(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), cmd.LocalFlags().FlagUsages())
	})
}
