package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/sppb/internal/domain/rules"
	"github.com/okian/sppb/pkg/logger"
	"github.com/okian/sppb/pkg/metrics"
)

type rulesFlags struct {
	file string
}

func newRulesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and load rule tables",
	}
	cmd.AddCommand(newRulesValidateCmd(e))
	cmd.AddCommand(newRulesSeedCmd(e))
	return cmd
}

func newRulesValidateCmd(e *env) *cobra.Command {
	var flags rulesFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report gaps, overlaps and missing meanings",
		Long:  "Validates a YAML rule file with --file, otherwise the tables in the rule store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var table rules.Table
			if flags.file != "" {
				t, err := rules.LoadFile(flags.file)
				if err != nil {
					return err
				}
				table = t
			} else {
				store, err := openStore(ctx, e.cfg, e.log)
				if err != nil {
					return err
				}
				defer func() {
					if err := store.Close(); err != nil {
						e.log.Error(ctx, "close rule store", logger.Error(err))
					}
				}()
				t, err := store.Table(ctx)
				if err != nil {
					return err
				}
				table = t
			}

			issues := rules.Validate(table)
			metrics.UpdateRuleIssues(len(issues))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "score rules: %d, interpretation rules: %d, max composite: %d\n",
				len(table.Scores), len(table.Interpretations), table.MaxComposite())
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			if err := issues.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "YAML rule file to validate instead of the store")
	return cmd
}

func newRulesSeedCmd(e *env) *cobra.Command {
	var flags rulesFlags
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the stored rule tables",
		Long:  "Loads --file, or the built-in rubric, into the rule store after validating it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			table, err := rules.Default()
			if flags.file != "" {
				table, err = rules.LoadFile(flags.file)
			}
			if err != nil {
				return err
			}
			issues := rules.Validate(table)
			for _, issue := range issues {
				e.log.Warn(ctx, "rule coverage issue", logger.String("issue", issue.String()))
			}
			if e.cfg.StrictRules {
				if err := issues.Err(); err != nil {
					return err
				}
			}

			store, err := openStore(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					e.log.Error(ctx, "close rule store", logger.Error(err))
				}
			}()
			if err := store.Seed(ctx, table); err != nil {
				return err
			}
			scores, interps, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d score rules, %d interpretation rules, %d issue(s)\n",
				e.cfg.DBPath, scores, interps, len(issues))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "YAML rule file (default: built-in rubric)")
	return cmd
}
