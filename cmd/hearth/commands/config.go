package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/hearth/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration a run would use, as YAML.

The output is the defaults overlaid with the --config file and any
parameter flags, and can be saved and passed back with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}
