package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"buildmsa/internal/alignment"
	"buildmsa/internal/collect"
	"buildmsa/internal/fasta"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/services"
)

func newTrimCommand() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:         "trim",
		Short:       "Drop alignment columns where the first sequence has a gap",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag(cmd, "input", input); err != nil {
				return err
			}
			if strings.TrimSpace(output) == "" {
				output = defaultOutputName(input, ".trimmed.fa")
			}
			if err := alignment.TrimFile(input, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trimmed alignment written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Aligned FASTA file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination (defaults to <input>.trimmed.fa)")
	return cmd
}

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var query, hits, output string
	var maxSequences int

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Pool a query with unique hit sequences as aligner input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag(cmd, "input", query); err != nil {
				return err
			}
			if err := requireFlag(cmd, "from", hits); err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-sequences") {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return fmt.Errorf("load configuration: %w", err)
				}
				maxSequences = cfg.Collect.MaxSequences
			}
			pool, err := collect.CollectFiles(query, hits, maxSequences)
			if err != nil {
				return err
			}
			if strings.TrimSpace(output) == "" {
				return writeRecords(cmd.OutOrStdout(), pool)
			}
			if fileutil.Exists(output) {
				return services.Wrap(services.ErrIO, "cli", "collect", "refusing to overwrite "+output, nil)
			}
			if err := fasta.Append(output, pool...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d sequence(s) to %s\n", len(pool), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "input", "i", "", "Query FASTA file; its first record anchors the pool (required)")
	cmd.Flags().StringVar(&hits, "from", "", "FASTA file of candidate hits (required)")
	cmd.Flags().IntVarP(&maxSequences, "max-sequences", "s", 0, "Pool bound (defaults to collect.max_sequences)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination (defaults to stdout)")
	return cmd
}

func newExportCommand() *cobra.Command {
	var input, output string
	var width int

	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Write an alignment as line-wrapped FASTA",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag(cmd, "input", input); err != nil {
				return err
			}
			if width <= 0 {
				return services.Wrap(services.ErrUsage, "cli", "export", "--width must be positive", nil)
			}
			rows, err := alignment.ReadAligned(input)
			if err != nil {
				return err
			}
			if strings.TrimSpace(output) == "" {
				return alignment.Export(cmd.OutOrStdout(), rows, width)
			}
			return fileutil.WriteAtomic(output, func(partial string) error {
				f, err := os.Create(partial)
				if err != nil {
					return err
				}
				if err := alignment.Export(f, rows, width); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Aligned FASTA file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination (defaults to stdout)")
	cmd.Flags().IntVar(&width, "width", alignment.DefaultExportWidth, "Residues per line")
	return cmd
}

func requireFlag(cmd *cobra.Command, name, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	_ = cmd.Usage()
	return services.Wrap(services.ErrUsage, "cli", cmd.Name(), "--"+name+" is required", nil)
}

func defaultOutputName(input, suffix string) string {
	base := strings.TrimSuffix(input, ".fa")
	base = strings.TrimSuffix(base, ".fasta")
	return base + suffix
}

func writeRecords(w io.Writer, recs []fasta.Record) error {
	writer := fasta.NewWriter(w)
	for _, rec := range recs {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return writer.Flush()
}
