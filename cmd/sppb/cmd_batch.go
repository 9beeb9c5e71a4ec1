package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/sppb/pkg/logger"
)

type batchFlags struct {
	in  string
	out string
}

func newBatchCmd(e *env) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score and verify every row of a CSV file",
		Long: "Reads headerless rows (five durations, expected composite in column 11)\n" +
			"and writes each row back with composite, PASS/FAIL/ERROR, error and report.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var in io.Reader = cmd.InOrStdin()
			if flags.in != "" && flags.in != "-" {
				f, err := os.Open(flags.in)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			var out io.Writer = cmd.OutOrStdout()
			if flags.out != "" && flags.out != "-" {
				f, err := os.Create(flags.out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			p, err := openPipeline(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := p.Close(); err != nil {
					e.log.Error(ctx, "close rule store", logger.Error(err))
				}
			}()

			stats, err := p.runner.RunBatch(ctx, in, out)
			fmt.Fprintf(cmd.ErrOrStderr(), "rows=%d pass=%d fail=%d error=%d generation_failures=%d\n",
				stats.Rows, stats.Pass, stats.Fail, stats.Errors, stats.GenerationFailures)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.in, "in", "i", "-", "input CSV file (- for stdin)")
	f.StringVarP(&flags.out, "out", "o", "-", "output CSV file (- for stdout)")
	return cmd
}
