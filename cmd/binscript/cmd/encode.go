/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/binscript/pkg/stream"
	"github.com/ssargent/binscript/pkg/xlog"
)

// outputFsyncInterval batches fsyncs of an encode output; Close does the last one.
const outputFsyncInterval = time.Second

func outputWriterConfig(path string) stream.WriterConfig {
	return stream.WriterConfig{
		FilePath:      path,
		Truncate:      true,
		FsyncInterval: outputFsyncInterval,
	}
}

// newEncodeCmd represents the encode command
func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <script-file>",
		Short: "Translate a script into a binary stream",
		Long: `Encode a script of function calls into a binary stream. The script
file may be "-" to read standard input.

In null mode the stream ends with the null opcode, so decoding and
re-encoding a capture reproduces it byte for byte.

Examples:
  binscript --schema robot.def encode program.txt -o program.bin
  echo 'move(3, -4)' | binscript --schema robot.def encode - > move.bin`,
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

			var in io.Reader = cmd.InOrStdin()
			name := "<stdin>"
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in, name = f, args[0]
			}

			outPath, _ := cmd.Flags().GetString("output")
			var (
				out  io.Writer = cmd.OutOrStdout()
				file *stream.Writer
			)
			if outPath != "-" {
				file, err = stream.NewWriter(outputWriterConfig(outPath))
				if err != nil {
					return err
				}
				out = file
			}

			consumer := stream.NewScriptConsumer(c, in, name, out)
			defer consumer.Close()
			consumer.SetSize(mode, limit)

			err = withMetrics(cmd, consumer, func() error {
				if _, err := consumer.All(); err != nil {
					return err
				}
				xlog.Info("encoded", xlog.Int("calls", consumer.Calls()), xlog.Int("bytes", consumer.Bytes()))
				return nil
			})
			if file != nil {
				if cerr := file.Close(); err == nil {
					err = cerr
				}
			}
			return err
		},
	}

	addEndFlags(cmd)
	cmd.Flags().StringP("output", "o", "-", "Output file, - for standard output")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile when done")
	return cmd
}
