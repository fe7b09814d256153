package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}

			encoded, err := app.cfg.EncodeTOML()
			if err != nil {
				return err
			}
			if app.cfg.File != "" {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", app.cfg.File); err != nil {
					return err
				}
			}

			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}
}
