package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/hoppxi/filekit/pkg/pdftext"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
)

var pdfReplaceCmd = &cobra.Command{
	Use:     "pdf-replace",
	Aliases: []string{"replace-pdf-text"},
	Short:   "Replace text in a PDF, keeping the original font when possible",
	Long: `Replace text in a PDF, keeping the original font when possible.

Without flags the tool asks for the file, the text to find and the
replacement. When the original font cannot show the new text, the affected
text blocks are rewritten with a standard font.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd, map[string]string{
			"pdf.default_font": "font",
			"pdf.anchor":       "anchor",
			"pdf.validate":     "validate",
		})
		if err != nil {
			return err
		}
		anchor, err := pdftext.ParseAnchor(v.GetString("pdf.anchor"))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		in := bufio.NewReader(cmd.InOrStdin())
		fmt.Fprintln(out, "PDF Text Replacement Tool")
		fmt.Fprintln(out, strings.Repeat("=", 50))

		path, _ := cmd.Flags().GetString("file")
		if sel, _ := cmd.Flags().GetBool("select"); sel && path == "" {
			path, err = zenity.SelectFile(
				zenity.Title("Select PDF"),
				zenity.FileFilters{
					{Name: "PDF documents", Patterns: []string{"*.pdf"}},
				},
			)
			if err != nil {
				if errors.Is(err, zenity.ErrCanceled) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
				return err
			}
		}
		if path == "" {
			path = ask(in, out, "\nEnter PDF file path: ")
		}
		path = trimQuotes(path)
		if path == "" {
			return errors.New("no file path provided")
		}

		search, _ := cmd.Flags().GetString("find")
		if search == "" {
			search = ask(in, out, "Enter text to find: ")
		}
		if search == "" {
			return errors.New("no search text provided")
		}

		replacement, _ := cmd.Flags().GetString("replace")
		if !cmd.Flags().Changed("replace") {
			replacement = ask(in, out, "Enter replacement text: ")
			if replacement == "" {
				return errors.New("no replacement text provided")
			}
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = pdftext.DefaultOutputPath(path)
		}

		fmt.Fprintf(out, "\nWill replace '%s' with '%s' in:\n", search, replacement)
		fmt.Fprintf(out, "  Input:  %s\n", path)
		fmt.Fprintf(out, "  Output: %s\n", output)
		fmt.Fprintln(out, "\nNote: If original font is not available, affected blocks will use default font.")
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			if strings.ToLower(ask(in, out, "\nContinue? (y/n): ")) != "y" {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		fmt.Fprintln(out, "\n"+strings.Repeat("=", 50))
		_, err = pdftext.Replace(path, search, replacement, pdftext.Options{
			Output:      output,
			Anchor:      anchor,
			DefaultFont: v.GetString("pdf.default_font"),
			Validate:    v.GetBool("pdf.validate"),
			Stdout:      out,
		})
		fmt.Fprintln(out, strings.Repeat("=", 50))
		if err != nil {
			fmt.Fprintln(out, "\nProcess failed or no replacements made.")
			return err
		}
		fmt.Fprintln(out, "\nProcess completed successfully!")
		return nil
	},
}

func init() {
	pdfReplaceCmd.Flags().String("file", "", "PDF file to edit")
	pdfReplaceCmd.Flags().Bool("select", false, "pick the PDF with a file dialog")
	pdfReplaceCmd.Flags().String("find", "", "text to find")
	pdfReplaceCmd.Flags().String("replace", "", "replacement text (may be empty when given as a flag)")
	pdfReplaceCmd.Flags().StringP("output", "o", "", "output file (default <name>_updated.pdf)")
	pdfReplaceCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	pdfReplaceCmd.Flags().String("anchor", "baseline", "where new text is placed: baseline or topleft")
	pdfReplaceCmd.Flags().String("font", pdftext.DefaultFont, "fallback font: helv, tiro or cour")
	pdfReplaceCmd.Flags().Bool("validate", false, "validate the written PDF with pdfcpu")
}
