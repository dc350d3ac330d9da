/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/binscript/pkg/metrics"
	"github.com/ssargent/binscript/pkg/stream"
	"github.com/ssargent/binscript/pkg/xlog"
)

// newDecodeCmd represents the decode command
func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <binary-file>",
		Short: "Translate a binary stream into a script",
		Long: `Decode a binary stream and print one function call per line.

The stream ends at the null opcode, at the end of the file, or when the
byte or statement budget given by --end and --limit runs out.

Examples:
  binscript --schema robot.def decode capture.bin
  binscript --schema robot.def decode capture.bin --end statements --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCodec()
			if err != nil {
				return err
			}
			mode, limit, err := endSettings(cmd)
			if err != nil {
				return err
			}

			consumer, err := stream.OpenFileConsumer(c, args[0])
			if err != nil {
				return err
			}
			defer consumer.Close()
			consumer.SetSize(mode, limit)

			return withMetrics(cmd, consumer, func() error {
				return printCalls(cmd.OutOrStdout(), consumer)
			})
		},
	}

	addEndFlags(cmd)
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile when done")
	return cmd
}

func addEndFlags(cmd *cobra.Command) {
	cmd.Flags().String("end", "", "End mode: null, bytes or statements (default from config)")
	cmd.Flags().Int("limit", 0, "Byte or statement budget for the size end modes")
}

// endSettings merges the --end and --limit flags over the config file
func endSettings(cmd *cobra.Command) (stream.EndMode, int, error) {
	modeName, limit := appConfig.End.Mode, appConfig.End.Limit
	if cmd.Flags().Changed("end") {
		modeName, _ = cmd.Flags().GetString("end")
	}
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}

	mode, err := stream.ParseEndMode(modeName)
	if err != nil {
		return mode, 0, err
	}
	if mode != stream.NullTerminated && limit <= 0 {
		return mode, 0, fmt.Errorf("end mode %s needs a positive --limit", mode)
	}
	return mode, limit, nil
}

// withMetrics observes consumer while run executes and writes the
// textfile afterwards, also when run fails
func withMetrics(cmd *cobra.Command, consumer *stream.Consumer, run func() error) error {
	path := appConfig.Metrics.Textfile
	if f := cmd.Flags().Lookup("metrics-file"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		return run()
	}

	m := metrics.New()
	consumer.SetObserver(m)
	runErr := run()
	if err := m.WriteToTextfile(path); err != nil {
		xlog.Warn("writing metrics failed", xlog.File(path), xlog.Err(err))
	}
	return runErr
}

func printCalls(w io.Writer, consumer *stream.Consumer) error {
	for {
		call, err := consumer.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, call.String()); err != nil {
			return err
		}
	}
	xlog.Info("decoded", xlog.Int("calls", consumer.Calls()), xlog.Int("bytes", consumer.Bytes()))
	return nil
}
