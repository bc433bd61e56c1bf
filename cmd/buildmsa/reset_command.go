package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"buildmsa/internal/config"
	"buildmsa/internal/pipeline"
	"buildmsa/internal/services"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var from string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard a stage and every later stage so the next run rebuilds them",
		Long: fmt.Sprintf(`Mark a stage and every stage after it pending and delete their artifacts.
Without --from the whole pipeline is reset.

Stages: %v`, pipeline.Stages()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := overrideOutputDir(cmd, cfg, outputDir); err != nil {
				return err
			}
			logger, closer, err := ctx.newLogger(cmd, cfg, "")
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer closer.Close()

			driver, err := pipeline.New(cfg, "", pipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			removed, err := driver.Reset(cmd.Context(), from)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range removed {
				fmt.Fprintf(out, "removed %s\n", path)
			}
			fmt.Fprintf(out, "Reset %d file(s) in %s\n", len(removed), cfg.Paths.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory of the run (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&from, "from", "", "First stage to reset")
	return cmd
}

// overrideOutputDir applies a non-empty -o value to cfg.
func overrideOutputDir(cmd *cobra.Command, cfg *config.Config, dir string) error {
	if !cmd.Flags().Changed("output-dir") {
		return nil
	}
	cfg.Paths.OutputDir = dir
	if err := cfg.Finalize(); err != nil {
		return services.Wrap(services.ErrUsage, "cli", cmd.Name(), "invalid --output-dir", err)
	}
	return nil
}
