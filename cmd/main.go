package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalFlags are shared by all subcommands.
type globalFlags struct {
	LogLevel  string
	ConfigDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	serve := &serveFlags{}

	rootCmd := &cobra.Command{
		Use:   "translator",
		Short: "A2A agent that translates code between programming languages",
		Long: `translator serves an A2A agent that translates source code between
programming languages. Requests are sent to an ordered list of models; a
model that fails is skipped, with a pause after quota errors.

Running translator without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, serve)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Set the logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigDir, "config-dir", "", "Set the config directory path (overrides CONFIG_DIR environment variable)")
	addServeFlags(rootCmd, serve)

	rootCmd.AddCommand(newServeCmd(flags), newTranslateCmd(flags))
	return rootCmd
}
