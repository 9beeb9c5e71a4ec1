package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/sppb/pkg/logger"
)

func newAssessCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "assess",
		Short: "Score one case interactively",
		Long:  "Prompts for the five durations, prints the scores and the generated report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := openPipeline(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := p.Close(); err != nil {
					e.log.Error(ctx, "close rule store", logger.Error(err))
				}
			}()
			return p.runner.Interactive(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
