/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/config"
	"github.com/ssargent/binscript/pkg/di"
	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/xlog"
)

var (
	container *di.Container
	appConfig = config.DefaultConfig()
)

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

func getContainer() *di.Container {
	if container == nil {
		container = di.NewContainer()
	}
	return container
}

// NewRootCmd builds the base command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "binscript",
		Short: "binscript - binary call stream translator",
		Long: `binscript translates between compact binary streams of function calls and
a human readable script, driven by a language definition written in
S-expressions.

Examples:
  binscript --schema robot.def describe
  binscript --schema robot.def decode capture.bin
  binscript --schema robot.def encode program.txt -o program.bin`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.config/binscript/config.yaml)")
	flags.StringP("schema", "s", "", "Language definition file")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newDescribeCmd(),
		newDecodeCmd(),
		newEncodeCmd(),
		newServeCmd(),
		newArchiveCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies flag overrides and sets up
// logging. A missing default config file is not an error.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if flags.Changed("schema") {
		cfg.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := xlog.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	xlog.SetDefault(logger)

	appConfig = cfg
	return nil
}

// loadCodec parses the configured language definition
func loadCodec() (*codec.Codec, error) {
	if appConfig.Schema == "" {
		return nil, fmt.Errorf("no language definition: pass --schema or set schema in the config file")
	}
	lang, err := langdef.ParseFile(appConfig.Schema)
	if err != nil {
		return nil, err
	}
	xlog.Debug("language loaded", xlog.File(appConfig.Schema), xlog.Int("functions", lang.Len()))
	return codec.New(lang), nil
}
