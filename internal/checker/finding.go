package checker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CheckName identifies one of the eight checks.
type CheckName string

const (
	CheckHTTPS           CheckName = "HTTPS"
	CheckHSTS            CheckName = "HSTS"
	CheckCSRF            CheckName = "CSRF"
	CheckCORS            CheckName = "CORS"
	CheckFormValidation  CheckName = "Form Validation"
	CheckSecurityHeaders CheckName = "Security Headers"
	CheckXSSProtection   CheckName = "XSS Protection"
	CheckSSL             CheckName = "SSL"
)

// CheckNames returns every check in report order.
func CheckNames() []CheckName {
	return []CheckName{
		CheckHTTPS,
		CheckHSTS,
		CheckCSRF,
		CheckCORS,
		CheckFormValidation,
		CheckSecurityHeaders,
		CheckXSSProtection,
		CheckSSL,
	}
}

// Slug returns a lower-case identifier usable in metrics labels and anchors.
func (n CheckName) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(n)), " ", "_")
}

// Status is the outcome of a check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// EvidenceItem is one key/value pair backing a finding.
type EvidenceItem struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Finding is the result of a single check. Remediation is empty when Status is pass.
type Finding struct {
	Name        CheckName      `json:"name" yaml:"name"`
	Status      Status         `json:"status" yaml:"status"`
	Detail      string         `json:"detail" yaml:"detail"`
	Remediation string         `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	Evidence    []EvidenceItem `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Duration    time.Duration  `json:"-" yaml:"-"`
	DurationMS  int64          `json:"duration_ms" yaml:"duration_ms"`
}

// EvidenceValue returns the first evidence value stored under key.
func (f Finding) EvidenceValue(key string) (string, bool) {
	for _, item := range f.Evidence {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// EvidenceValues returns every evidence value stored under key, in order.
func (f Finding) EvidenceValues(key string) []string {
	var values []string
	for _, item := range f.Evidence {
		if item.Key == key {
			values = append(values, item.Value)
		}
	}
	return values
}

// HasContent reports whether there is anything to show for the finding.
func (f Finding) HasContent() bool {
	return f.Detail != "" || f.Remediation != ""
}

// evidence accumulates ordered key/value pairs.
type evidence []EvidenceItem

func (e *evidence) add(key, value string) {
	*e = append(*e, EvidenceItem{Key: key, Value: value})
}

func (e *evidence) addf(key, format string, args ...any) {
	e.add(key, fmt.Sprintf(format, args...))
}

func passFinding(name CheckName, detail string, ev evidence) Finding {
	return Finding{Name: name, Status: StatusPass, Detail: detail, Evidence: ev}
}

func failFinding(name CheckName, detail, remediation string, ev evidence) Finding {
	return Finding{Name: name, Status: StatusFail, Detail: detail, Remediation: remediation, Evidence: ev}
}

// errorFinding converts a check failure into a reportable finding.
func errorFinding(name CheckName, err error) Finding {
	return Finding{
		Name:   name,
		Status: StatusError,
		Detail: fmt.Sprintf("Error checking %s: %v", name, err),
		Evidence: []EvidenceItem{
			{Key: "error_kind", Value: string(classifyError(err))},
		},
	}
}

// Counts tallies findings per status.
type Counts struct {
	Pass  int `json:"pass" yaml:"pass"`
	Fail  int `json:"fail" yaml:"fail"`
	Error int `json:"error" yaml:"error"`
}

// Total returns the number of findings counted.
func (c Counts) Total() int { return c.Pass + c.Fail + c.Error }

// Report aggregates the findings of one scan in fixed check order.
type Report struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Target      string    `json:"target" yaml:"target"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
	Findings    []Finding `json:"findings" yaml:"findings"`
}

// Finding returns the finding for name.
func (r *Report) Finding(name CheckName) (Finding, bool) {
	for _, f := range r.Findings {
		if f.Name == name {
			return f, true
		}
	}
	return Finding{}, false
}

// Counts tallies the report's findings per status.
func (r *Report) Counts() Counts {
	var c Counts
	for _, f := range r.Findings {
		switch f.Status {
		case StatusPass:
			c.Pass++
		case StatusFail:
			c.Fail++
		case StatusError:
			c.Error++
		}
	}
	return c
}

// HasErrors reports whether any check could not complete.
func (r *Report) HasErrors() bool { return r.Counts().Error > 0 }

// HasFailures reports whether any check found a missing control.
func (r *Report) HasFailures() bool { return r.Counts().Fail > 0 }

// Duration is the wall time of the whole scan.
func (r *Report) Duration() time.Duration { return r.CompletedAt.Sub(r.StartedAt) }
