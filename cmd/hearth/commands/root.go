package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var versionString = "dev"

// newRootCmd builds the command tree. A fresh tree per invocation keeps
// flag state from leaking between runs.
func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "hearth",
		Short: "Hearth - heating controller simulation",
		Long: `Hearth simulates a closed-loop heating controller.

Independent periodic tasks acquire temperature, regulate pressure and run
the control law, while an operator switches between automatic and manual
mode from the console.`,
		Version: versionString,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(newLevelWriter(os.Stderr, verbose))
		},
		// Prevent silent success when unknown flags are passed to root command
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())

	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	return rootCmd
}

// Execute builds the root command and runs it against os.Args.
// This is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
