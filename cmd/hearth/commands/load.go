package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/printer"
)

// loadConfig resolves the effective configuration for cmd: defaults, the
// --config file, then parameter flags. Failures are printed and returned
// as a short error for cobra.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(path, cmd.Flags())
	if err != nil {
		details := map[string]string{"Error": err.Error()}
		if path != "" {
			details["Config file"] = path
		}
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			"The simulation parameters could not be loaded.",
			details,
			[]string{
				"Fix the value reported above",
				"Run 'hearth config' without flags to see the defaults",
			},
		)
	}
	return cfg, nil
}
