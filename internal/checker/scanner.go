package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
)

// Observer is notified as each check finishes. It is called from the check's
// goroutine, so implementations must be safe for concurrent use.
type Observer func(Finding)

// Scanner runs every check against one target and assembles the report.
type Scanner struct {
	checks       []Check
	logger       *zap.Logger
	checkTimeout time.Duration
	observers    []Observer
	now          func() time.Time
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the scanner's logger. The default discards everything.
func WithLogger(logger *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCheckTimeout bounds each check independently.
func WithCheckTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// WithObserver registers a callback for completed findings.
func WithObserver(o Observer) ScannerOption {
	return func(s *Scanner) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewScanner creates a scanner over checks, which also fixes the report order.
func NewScanner(checks []Check, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		checks:       checks,
		logger:       zap.NewNop(),
		checkTimeout: constants.DefaultCheckTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultScanner wires a ProbeClient and CertificateInspector into the eight checks.
func NewDefaultScanner(cfg ClientConfig, tlsTimeout time.Duration, opts ...ScannerOption) *Scanner {
	checks := DefaultChecks(NewProbeClient(cfg), NewCertificateInspector(tlsTimeout))
	return NewScanner(checks, opts...)
}

// Checks returns the configured checks in report order.
func (s *Scanner) Checks() []Check {
	out := make([]Check, len(s.checks))
	copy(out, s.checks)
	return out
}

// Scan runs all checks concurrently and returns one finding per check, in order.
// A failing or panicking check becomes an error finding and never affects the others.
func (s *Scanner) Scan(ctx context.Context, target Target) *Report {
	report := &Report{
		ID:        uuid.New(),
		Target:    target.URL(),
		StartedAt: s.now().UTC(),
	}
	s.logger.Debug("scan started",
		zap.String("scan_id", report.ID.String()),
		zap.String("target", report.Target),
		zap.Int("checks", len(s.checks)))

	findings := make([]Finding, len(s.checks))
	var g errgroup.Group
	for i, check := range s.checks {
		g.Go(func() error {
			findings[i] = s.runCheck(ctx, target, check)
			return nil
		})
	}
	_ = g.Wait()

	report.Findings = findings
	report.CompletedAt = s.now().UTC()

	counts := report.Counts()
	s.logger.Info("scan completed",
		zap.String("scan_id", report.ID.String()),
		zap.String("target", report.Target),
		zap.Int("pass", counts.Pass),
		zap.Int("fail", counts.Fail),
		zap.Int("error", counts.Error),
		zap.Duration("duration", report.Duration()))
	return report
}

func (s *Scanner) runCheck(ctx context.Context, target Target, check Check) (finding Finding) {
	name := check.Name()
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			finding = errorFinding(name, fmt.Errorf("check panicked: %v", r))
		}
		finding.Name = name
		if finding.Status == StatusPass {
			finding.Remediation = ""
		}
		finding.Duration = time.Since(start)
		finding.DurationMS = finding.Duration.Milliseconds()
		s.record(finding)
	}()

	f, err := check.Run(checkCtx, target)
	if err != nil {
		return errorFinding(name, err)
	}
	return f
}

func (s *Scanner) record(f Finding) {
	if f.Status == StatusError {
		kind, _ := f.EvidenceValue("error_kind")
		s.logger.Warn("check failed",
			zap.String("check", string(f.Name)),
			zap.String("error_kind", kind),
			zap.String("detail", f.Detail))
	} else {
		s.logger.Debug("check completed",
			zap.String("check", string(f.Name)),
			zap.String("status", string(f.Status)),
			zap.Duration("duration", f.Duration))
	}
	for _, observe := range s.observers {
		observe(f)
	}
}
