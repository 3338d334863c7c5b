package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"tank-tools/internal/config"
	"tank-tools/internal/phout"
	"tank-tools/internal/report"
	"tank-tools/internal/source"
	"tank-tools/internal/stats"
	"tank-tools/internal/types"
)

// Runner orchestrates loading a phout file and reporting its statistics
type Runner struct {
	config  *config.Config
	opener  *source.Opener
	field   phout.Field
	loc     *time.Location
	out     io.Writer
	logger  log.Logger
	console *report.ConsoleReporter
}

// NewRunner creates a new analysis runner writing reports to out
func NewRunner(cfg *config.Config, opener *source.Opener, out io.Writer, logger log.Logger) (*Runner, error) {
	field, err := phout.ParseField(cfg.Field)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Output.TimeLocation()
	if err != nil {
		return nil, err
	}

	return &Runner{
		config:  cfg,
		opener:  opener,
		field:   field,
		loc:     loc,
		out:     out,
		logger:  logger,
		console: report.NewConsoleReporter(out, loc),
	}, nil
}

// Load reads the configured input applying the date and limit filters
func (r *Runner) Load(ctx context.Context) (*phout.Dataset, error) {
	opts, err := phout.NewOptionsIn(r.config.Flags(), r.loc)
	if err != nil {
		return nil, err
	}

	if from, ok := opts.FromDate(); ok {
		level.Debug(r.logger).Log("msg", "Start filter", "from_date", report.FormatTimestamp(from, r.loc))
	}
	if to, ok := opts.ToDate(); ok {
		level.Debug(r.logger).Log("msg", "Stop filter", "to_date", report.FormatTimestamp(to, r.loc))
	}

	rc, err := r.opener.Open(ctx, r.config.Input)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	started := time.Now()
	ds, err := phout.Load(rc, opts)
	if err != nil {
		return nil, err
	}

	level.Info(r.logger).Log(
		"msg", "Phout loaded",
		"input", r.config.Input,
		"records", ds.Size(),
		"duration", time.Since(started),
	)

	return ds, nil
}

// Run loads the input and computes its statistics
func (r *Runner) Run(ctx context.Context) (*types.Stats, error) {
	ds, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := stats.ComputeStats(ds, r.field, r.config.Quantiles)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats of %s: %w", r.config.Input, err)
	}

	return result, nil
}

// Report writes result in the configured format and saves the markdown
// report file when one is configured
func (r *Runner) Report(result *types.Stats) error {
	switch r.config.Output.Format {
	case config.FormatJSON:
		if err := report.WriteJSON(r.out, result, r.loc); err != nil {
			return fmt.Errorf("failed to write json report: %w", err)
		}
	case config.FormatMarkdown:
		generator := report.NewMarkdownReporter(r.config.Input, r.loc)
		if _, err := io.WriteString(r.out, generator.Generate(result)); err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
	default:
		r.console.PrintStats(result)
	}

	if r.config.Output.ReportFile == "" {
		return nil
	}

	return r.GenerateReport(result)
}

// GenerateReport saves the markdown report to the configured file
func (r *Runner) GenerateReport(result *types.Stats) error {
	generator := report.NewMarkdownReporter(r.config.Input, r.loc)

	reportContent := generator.Generate(result)

	if err := generator.SaveToFile(reportContent, r.config.Output.ReportFile); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	level.Info(r.logger).Log("msg", "Report saved", "file", r.config.Output.ReportFile)
	if r.config.Output.Format == config.FormatText {
		r.console.PrintReportSaved(r.config.Output.ReportFile)
	}

	return nil
}
