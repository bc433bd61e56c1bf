package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"buildmsa/internal/config"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/pipeline"
	"buildmsa/internal/preflight"
	"buildmsa/internal/services"
)

type runFlags struct {
	input        string
	scratch      string
	nrDB         string
	redundantDB  string
	outputDir    string
	maxSequences int
	verbose      bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search, collect, align and trim homologs of a query sequence",
		Long: `Run the alignment pipeline for a single query FASTA file.

Completed stages are recorded in <output-dir>/buildmsa.db and skipped on the
next run, so an interrupted run resumes where it stopped.

Examples:
  buildmsa run -i query.fa
  buildmsa run -i query.fa -o out/ -n uniref50 -r uniref100 -s 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(flags.input) == "" {
				_ = cmd.Usage()
				return services.Wrap(services.ErrUsage, "cli", "run", "--input is required", nil)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := applyRunFlags(cmd, cfg, flags); err != nil {
				return err
			}

			if !fileutil.Exists(flags.input) {
				return services.Wrap(services.ErrNotFound, "cli", "run", "input "+flags.input+" does not exist", nil)
			}
			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, flags.input)); len(failed) > 0 {
				for _, r := range failed {
					fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", r.Name, r.Detail)
				}
				return services.Wrap(services.ErrValidation, "cli", "preflight",
					fmt.Sprintf("%d check(s) failed; run `buildmsa check` for details", len(failed)), nil)
			}

			logger, closer, err := ctx.newLogger(cmd, cfg, cfg.Paths.OutputDir)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer closer.Close()

			driver, err := pipeline.New(cfg, flags.input, pipeline.WithLogger(logging.NewComponentLogger(logger, "cli")))
			if err != nil {
				return err
			}
			if err := driver.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alignment written to %s\n", driver.Layout().MSA)
			return nil
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Query FASTA file (required)")
	cmd.Flags().StringVar(&flags.scratch, "dummy", defaults.Paths.ScratchDir, "Scratch directory for mmseqs temporary files")
	cmd.Flags().StringVarP(&flags.nrDB, "nr-db", "n", defaults.Databases.NR, "Non-redundant database name")
	cmd.Flags().StringVarP(&flags.redundantDB, "redundant-db", "r", defaults.Databases.Redundant, "Redundant database name")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", defaults.Paths.OutputDir, "Directory for intermediate and final files")
	cmd.Flags().IntVarP(&flags.maxSequences, "max-sequences", "s", defaults.Collect.MaxSequences, "Maximum number of sequences passed to the aligner")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level and stream tool output")
	return cmd
}

// applyRunFlags copies explicitly set flags over cfg and re-validates it.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	changed := cmd.Flags().Changed
	if changed("dummy") {
		cfg.Paths.ScratchDir = flags.scratch
	}
	if changed("nr-db") {
		cfg.Databases.NR = flags.nrDB
	}
	if changed("redundant-db") {
		cfg.Databases.Redundant = flags.redundantDB
	}
	if changed("output-dir") {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if changed("max-sequences") {
		cfg.Collect.MaxSequences = flags.maxSequences
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Finalize(); err != nil {
		return services.Wrap(services.ErrUsage, "cli", "run", "invalid flags", err)
	}
	return nil
}
