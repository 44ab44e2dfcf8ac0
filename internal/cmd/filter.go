package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zxg-sec/blfilter/internal/config"
	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/filter"
	"github.com/zxg-sec/blfilter/internal/report"
	"github.com/zxg-sec/blfilter/internal/textio"
)

type filterOptions struct {
	input      string
	output     string
	keep       string
	reportFile string
}

func newFilterCommand(e *env) *cobra.Command {
	var opts filterOptions

	filterCmd := &cobra.Command{
		Use:   "filter -u <input> [-o <output>]",
		Short: "Remove blacklisted lines from a text file",
		Long: `Filter the lines of a text file against the rule store.

Lines that mention any rule are removed, blank lines are dropped, and the
remaining lines are written to the output file. Without -o the output goes to
a timestamped file (output_20060102_150405.txt) in the configured output
directory; if -o names an existing directory the timestamped file is created
inside it.

A summary is printed afterwards: line counts, every rule that matched with its
hit count, and the distinct matched lines.`,
		Example: `  blfilter filter -u access.log
  blfilter filter -u access.log -o clean.log
  blfilter filter -u access.log --keep matched --report-file hits.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runFilter(cmd, opts)
		},
	}

	filterCmd.Flags().StringVarP(&opts.input, "input", "u", "", "input text file (required)")
	filterCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or directory")
	filterCmd.Flags().StringVar(&opts.keep, "keep", "", "lines to write: retained or matched (default from output.keep)")
	filterCmd.Flags().StringVar(&opts.reportFile, "report-file", "", "also write the report as YAML or JSON (by extension)")
	_ = filterCmd.MarkFlagRequired("input")

	return filterCmd
}

func (e *env) runFilter(cmd *cobra.Command, opts filterOptions) error {
	keep := opts.keep
	if keep == "" {
		keep = e.cfg.Output.Keep
	}
	if !slices.Contains(config.ValidKeepModes(), keep) {
		return fmt.Errorf("invalid value for --keep: %s\nValid options: %s",
			keep, strings.Join(config.ValidKeepModes(), ", "))
	}

	lines, err := textio.ReadLines(appFs, opts.input)
	if err != nil {
		return err
	}

	logger := e.logger.With("input", opts.input)

	store := e.store()
	if !store.Exists() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: rule store %s not found, filtering with no rules\n", store.Path())
		if e.logsToFile() {
			logger.Warn("rule store not found", "path", store.Path())
		}
	}
	set, err := store.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load rules")
	}

	result := filter.New(logger).Filter(lines, set.Rules())

	written := result.Retained
	if keep == config.KeepMatched {
		written = result.Matched
	}

	ts := now()
	outPath, err := textio.ResolveOutputPath(appFs, opts.output, ts, e.cfg.Output)
	if err != nil {
		return errors.Wrap(err, "failed to prepare output")
	}
	if err := textio.WriteLines(appFs, outPath, written); err != nil {
		return errors.Wrapf(err, "failed to write output %s", outPath)
	}

	logger.Info("filter complete",
		"output", outPath,
		"original_lines", result.Report.OriginalLines,
		"retained_lines", result.Report.RetainedLines,
		"matched_rules", len(result.Report.HitOrder),
	)

	printer := report.NewPrinter(cmd.OutOrStdout(), e.cfg.Report.Color)
	if err := printer.Print(result.Report, report.Options{
		MaxTextWidth: e.cfg.Report.MaxTextWidth,
		OutputPath:   outPath,
		Kept:         keep,
	}); err != nil {
		return err
	}

	if opts.reportFile != "" {
		doc := report.NewDocument(result.Report, opts.input, outPath, store.Path(), ts)
		if err := report.Export(appFs, opts.reportFile, doc); err != nil {
			return errors.Wrapf(err, "failed to write report %s", opts.reportFile)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", opts.reportFile)
	}

	return nil
}
