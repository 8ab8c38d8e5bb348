package cmd

import (
	"github.com/hoppxi/filekit/pkg/maskgen"
	"github.com/spf13/cobra"
)

var masksCmd = &cobra.Command{
	Use:   "masks",
	Short: "Write the fixed mask and outline PNGs (square, circle, rhomboid, rectangle, parallelogram)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd, map[string]string{
			"masks.output": "output",
			"masks.scale":  "scale",
		})
		if err != nil {
			return err
		}

		dir := v.GetString("masks.output")
		if dir == "" {
			if dir, err = maskgen.DefaultDir(); err != nil {
				return err
			}
		}
		_, err = maskgen.Generate(dir, v.GetInt("masks.scale"), cmd.OutOrStdout())
		return err
	},
}

func init() {
	masksCmd.Flags().StringP("output", "o", "", "output directory (default: next to the executable)")
	masksCmd.Flags().Int("scale", maskgen.DefaultScale, "size multiplier of the base geometry")
}
