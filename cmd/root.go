package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "pdfmcp",
		Short:         "pdfmcp: PDF generation tools over MCP",
		Long:          "pdfmcp serves PDF generation tools (templates, HTML rendering, render status) to MCP clients over streamable HTTP, and runs the same tools from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.opts.configFile, "config", "", "Config file (default ~/.config/pdfmcp/config.toml)")
	flags.StringVar(&c.opts.apiKey, "api-key", "", "API key for CLI commands (or PDFMCP_API_KEY)")
	flags.StringVar(&c.opts.apiKeyRef, "api-key-ref", "", "Credential name to resolve through pass, then ~/.config/pdfmcp/secrets")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(c),
		newStatusCmd(c),
		newRenderCmd(c),
		newConfigCmd(c),
	)

	return rootCmd
}
