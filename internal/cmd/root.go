package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/filekit/internal/manager"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:           "filekit",
	Version:       Version,
	Short:         "Small file tools: directory index, photo frames, masks and PDF text replacement",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			manager.Config.SetFile(path)
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// ExecuteStandalone runs one subcommand as if it were the whole program, so
// the separate binaries share flags and behaviour with filekit.
func ExecuteStandalone(name string) {
	rootCmd.SetArgs(append([]string{name}, os.Args[1:]...))
	Execute()
}

// loadConfig returns the config with the named flags of cmd bound to their
// keys, so flags win over the file and the environment.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*viper.Viper, error) {
	v, err := manager.Config.Load()
	if err != nil {
		return nil, err
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return v, nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $XDG_CONFIG_HOME/filekit/filekit.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostic logs")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(masksCmd)
	rootCmd.AddCommand(pdfReplaceCmd)
	rootCmd.AddCommand(configCmd)
}
