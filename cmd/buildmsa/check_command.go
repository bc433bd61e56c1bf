package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"buildmsa/internal/pipeline"
	"buildmsa/internal/preflight"
	"buildmsa/internal/services"
	"buildmsa/internal/stage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify tools, databases and directories before a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			results := preflight.RunAll(cmd.Context(), cfg, input)

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, colorize(passLabel(r.Passed), checkColor(r.Passed), color), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, rows, nil))

			driver, err := pipeline.New(cfg, input)
			if err != nil {
				return err
			}
			stageRows := make([][]string, 0, len(pipeline.Stages()))
			for _, h := range driver.HealthCheck(cmd.Context()) {
				detail := h.Detail
				if h.Ready {
					detail = h.Tool
					if detail == "" {
						detail = "in-process"
					}
				}
				stageRows = append(stageRows, []string{stage.Label(h.Name), colorize(passLabel(h.Ready), checkColor(h.Ready), color), detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "Ready", "Runs"}, stageRows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "cli", "check", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Also validate this query FASTA file")
	return cmd
}
