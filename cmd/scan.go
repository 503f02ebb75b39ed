package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/report"
	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
	"github.com/khanhnv2901/seca-scan/internal/shared/security"
)

const reportFilePrefix = "seca-scan"

func newScanCmd(a *app) *cobra.Command {
	cfg := &a.config.Scan
	scanCmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan one URL and print the security report",
		Long: `Fetch the target URL and run every check against it:
HTTPS, HSTS, CSRF, CORS, Form Validation, Security Headers,
XSS Protection and SSL.

Exit codes:
  0  scan completed
  1  invalid target, bad flags or the report could not be written
  2  at least one check ended in error
  3  --fail-on-findings was set and at least one check failed`,
		Example: `  seca-scan scan https://example.com
  seca-scan scan example.com --format json --output report.json
  seca-scan scan https://example.com --format pdf --output-dir ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, args[0])
		},
	}

	flags := scanCmd.Flags()
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "report format: text, json, yaml, md, html, pdf")
	flags.StringVarP(&cfg.Output, "output", "o", "", "write the report to this file")
	flags.StringVar(&cfg.OutputDir, "output-dir", "", "write the report into this directory under a generated name")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	flags.DurationVar(&cfg.TLSTimeout, "tls-timeout", cfg.TLSTimeout, "certificate handshake timeout")
	flags.DurationVar(&cfg.CheckTimeout, "check-timeout", cfg.CheckTimeout, "upper bound for a single check")
	flags.IntVar(&cfg.MaxRedirects, "max-redirects", cfg.MaxRedirects, "redirect hops to follow (0 = none)")
	flags.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent with every request")
	flags.BoolVar(&cfg.Evidence, "evidence", false, "include raw evidence in the report")
	flags.BoolVar(&cfg.FailOnFindings, "fail-on-findings", false, "exit with code 3 when any check fails")
	flags.BoolVar(&cfg.Progress, "progress", false, "show a live progress line on stderr")
	scanCmd.MarkFlagsMutuallyExclusive("output", "output-dir")

	return scanCmd
}

func (a *app) runScan(cmd *cobra.Command, rawURL string) error {
	cfg := a.config.Scan

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	target, err := checker.ParseTarget(rawURL)
	if err != nil {
		return &InvalidTargetError{Input: rawURL, Err: err}
	}
	if format.Binary() && cfg.Output == "" && cfg.OutputDir == "" {
		return fmt.Errorf("%s reports must be written to a file: use --output or --output-dir", format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []checker.ScannerOption{
		checker.WithLogger(a.logger.Desugar()),
		checker.WithCheckTimeout(cfg.CheckTimeout),
	}
	var progress *progressPrinter
	if cfg.Progress {
		progress = newProgressPrinter(cmd.ErrOrStderr(), len(checker.CheckNames()), target.Host())
		opts = append(opts, checker.WithObserver(progress.Observe))
	}
	scanner := a.newScanner(cfg, opts...)

	a.logger.Debugw("scanning", "target", target.URL(), "format", format.String())
	if progress != nil {
		progress.Start()
	}
	rep := scanner.Scan(ctx, target)
	if progress != nil {
		progress.Stop()
	}

	if err := a.writeReport(cmd, rep, target, format); err != nil {
		return err
	}
	return scanOutcome(rep, cfg.FailOnFindings)
}

// writeReport renders to stdout unless --output or --output-dir names a file.
func (a *app) writeReport(cmd *cobra.Command, rep *checker.Report, target checker.Target, format report.Format) error {
	cfg := a.config.Scan
	opts := report.Options{Evidence: cfg.Evidence}

	path := cfg.Output
	if path == "" && cfg.OutputDir != "" {
		resolved, err := security.ResolveWithin(cfg.OutputDir, reportFileName(rep, target, format))
		if err != nil {
			return fmt.Errorf("invalid output directory: %w", err)
		}
		path = resolved
	}
	if path == "" {
		opts.Color = true
		return report.Render(cmd.OutOrStdout(), rep, format, opts)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	// #nosec G304 -- path comes from the operator's own flags.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := report.Render(f, rep, format, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	counts := rep.Counts()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Report written to %s\n", colorSuccess("✓"), path)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Summary: %d %s, %d %s, %d %s\n",
		counts.Pass, formatStatusWithColor(checker.StatusPass),
		counts.Fail, formatStatusWithColor(checker.StatusFail),
		counts.Error, formatStatusWithColor(checker.StatusError))
	a.logger.Infow("report written", "path", path, "format", format.String())
	return nil
}

func reportFileName(rep *checker.Report, target checker.Target, format report.Format) string {
	stamp := rep.StartedAt.UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s-%s-%s%s", reportFilePrefix, security.SafeFileName(target.Host()), stamp, format.Extension())
}

// scanOutcome turns the report counts into the command's exit status.
// Errors outrank failures.
func scanOutcome(rep *checker.Report, failOnFindings bool) error {
	counts := rep.Counts()
	if counts.Error > 0 {
		return &ScanIncompleteError{Errors: counts.Error, Total: counts.Total()}
	}
	if failOnFindings && counts.Fail > 0 {
		return &FindingsError{Failures: counts.Fail, Total: counts.Total()}
	}
	return nil
}

func defaultScanner(cfg ScanConfig, opts ...checker.ScannerOption) *checker.Scanner {
	return checker.NewDefaultScanner(cfg.ClientConfig(), cfg.TLSTimeout, opts...)
}
