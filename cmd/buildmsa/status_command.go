package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"buildmsa/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stage checkpoints of an output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := overrideOutputDir(cmd, cfg, outputDir); err != nil {
				return err
			}
			driver, err := pipeline.New(cfg, "")
			if err != nil {
				return err
			}
			report, err := driver.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatusReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory of the run (defaults to paths.output_dir)")
	return cmd
}

func printStatusReport(cmd *cobra.Command, report *pipeline.Report) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)

	fmt.Fprintf(out, "Output directory: %s\n", report.OutputDir)
	if run := report.LastRun; run != nil {
		line := fmt.Sprintf("Last run: %s %s (started %s)", run.ID, run.Status, humanize.Time(run.StartedAt))
		if run.ErrorMessage != "" {
			line += ": " + run.ErrorMessage
		}
		fmt.Fprintln(out, line)
	}

	rows := make([][]string, 0, len(report.Stages))
	for _, st := range report.Stages {
		size := "-"
		if st.Present {
			size = humanize.IBytes(uint64(st.SizeBytes))
		}
		updated := "-"
		if !st.UpdatedAt.IsZero() {
			updated = st.UpdatedAt.Local().Format(time.DateTime)
		}
		status := colorize(st.Status, stageStatusColor(st.Status), color)
		if st.Error != "" {
			status += " (" + truncate(st.Error, 48) + ")"
		}
		rows = append(rows, []string{st.Label, status, size, updated})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Status", "Size", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	if report.Complete() {
		fmt.Fprintln(out, "Alignment complete")
	}
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
