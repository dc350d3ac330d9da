/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/binscript/pkg/api"
	"github.com/ssargent/binscript/pkg/archive"
	"github.com/ssargent/binscript/pkg/stream"
)

func addArchiveDirFlag(flags *pflag.FlagSet) {
	flags.String("archive-dir", "", "Capture archive directory (default from config)")
}

func archiveDirFlag(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("archive-dir"); f != nil && f.Changed {
		return f.Value.String()
	}
	return appConfig.Archive.Dir
}

// openArchive opens the archive selected by --archive-dir or the config
func openArchive(cmd *cobra.Command) (api.ArchiveOpener, error) {
	dir := archiveDirFlag(cmd)
	if dir == "" {
		return nil, fmt.Errorf("no archive directory: pass --archive-dir or set archive.dir in the config file")
	}
	return getContainer().GetArchiveFactory().OpenArchive(dir)
}

// newArchiveCmd represents the archive command
func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage archived captures",
		Long: `Store binary captures in a local archive and decode them later.

Examples:
  binscript archive put capture.bin --name "arm test 3"
  binscript archive list
  binscript --schema robot.def archive decode 2Ct5AoJcVY8PPqbWj6fCRzyrnzw`,
	}
	addArchiveDirFlag(cmd.PersistentFlags())

	cmd.AddCommand(
		newArchivePutCmd(),
		newArchiveGetCmd(),
		newArchiveListCmd(),
		newArchiveRmCmd(),
		newArchiveDecodeCmd(),
	)
	return cmd
}

func newArchivePutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <binary-file>",
		Short: "Store a binary capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = filepath.Base(args[0])
			}

			a, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.Put(name, data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		},
	}
	cmd.Flags().String("name", "", "Capture name (default the file name)")
	return cmd
}

func newArchiveGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write a capture's binary data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			capture, err := getCapture(cmd, args[0])
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("output")
			if outPath == "-" {
				_, err = cmd.OutOrStdout().Write(capture.Data)
				return err
			}
			return os.WriteFile(outPath, capture.Data, 0600)
		},
	}
	cmd.Flags().StringP("output", "o", "-", "Output file, - for standard output")
	return cmd
}

func newArchiveListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captures in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			infos, err := a.List()
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return outputCaptures(cmd.OutOrStdout(), infos, format)
		},
	}
	cmd.Flags().StringP("format", "f", "table", "Output format: table or json")
	return cmd
}

func newArchiveRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := archive.ParseID(args[0])
			if err != nil {
				return err
			}
			a, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", id)
			return nil
		},
	}
}

func newArchiveDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <id>",
		Short: "Decode a capture into a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCodec()
			if err != nil {
				return err
			}
			mode, limit, err := endSettings(cmd)
			if err != nil {
				return err
			}
			capture, err := getCapture(cmd, args[0])
			if err != nil {
				return err
			}

			consumer := stream.NewMemoryConsumer(c, capture.Data)
			consumer.SetSize(mode, limit)
			if err := printCalls(cmd.OutOrStdout(), consumer); err != nil {
				return fmt.Errorf("capture %s: %w", capture.ID, err)
			}
			return nil
		},
	}
	addEndFlags(cmd)
	return cmd
}

func getCapture(cmd *cobra.Command, s string) (*archive.Capture, error) {
	id, err := archive.ParseID(s)
	if err != nil {
		return nil, err
	}
	a, err := openArchive(cmd)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Get(id)
}
