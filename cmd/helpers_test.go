package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

type stubCheck struct {
	name   checker.CheckName
	status checker.Status
}

func (s stubCheck) Name() checker.CheckName { return s.name }

func (s stubCheck) Run(ctx context.Context, _ checker.Target) (checker.Finding, error) {
	switch s.status {
	case checker.StatusError:
		return checker.Finding{}, errors.New("connection refused")
	case checker.StatusFail:
		return checker.Finding{
			Name:        s.name,
			Status:      checker.StatusFail,
			Detail:      string(s.name) + " missing",
			Remediation: "Enable " + string(s.name),
			Evidence:    []checker.EvidenceItem{{Key: "probe", Value: "stub"}},
		}, nil
	default:
		return checker.Finding{Name: s.name, Status: checker.StatusPass, Detail: string(s.name) + " ok"}, nil
	}
}

// stubChecks returns one check per name; names listed in overrides take that status.
func stubChecks(overrides map[checker.CheckName]checker.Status) []checker.Check {
	checks := make([]checker.Check, 0, len(checker.CheckNames()))
	for _, name := range checker.CheckNames() {
		status, ok := overrides[name]
		if !ok {
			status = checker.StatusPass
		}
		checks = append(checks, stubCheck{name: name, status: status})
	}
	return checks
}

// newTestApp isolates HOME and SECA_* settings and replaces the scanner's checks.
func newTestApp(t *testing.T, checks []checker.Check) *app {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	a := newApp()
	if checks != nil {
		a.newScanner = func(_ ScanConfig, opts ...checker.ScannerOption) *checker.Scanner {
			return checker.NewScanner(checks, opts...)
		}
	}
	return a
}

func runCLI(t *testing.T, a *app, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := executeApp(a, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}
