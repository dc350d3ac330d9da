/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/binscript/pkg/config"
)

// newInitCmd represents the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Write a configuration file with default settings and a generated API key
for the REST server.

Examples:
  binscript init --schema ./robot.def
  binscript init --config ./binscript.yaml --force --print-key`,
		Args: cobra.NoArgs,
		// the config file may not exist yet
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			schema, _ := cmd.Flags().GetString("schema")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, schema)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration written to %s\n", configPath)
			if printKey {
				cmd.Printf("API key: %s\n", cfg.Server.APIKey)
			} else {
				cmd.Printf("API key generated; see server.api_key in the config file\n")
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	cmd.Flags().Bool("print-key", false, "Print the generated API key")
	return cmd
}
