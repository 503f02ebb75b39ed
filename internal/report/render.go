package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

// Options tune the presenters.
type Options struct {
	// Color enables ANSI colors in text output.
	Color bool
	// Evidence includes evidence key/value pairs in text, markdown, html and pdf output.
	Evidence bool
	// HomeURL adds a link back to the scan form in HTML output.
	HomeURL string
}

// Render writes rep to w in the given format.
func Render(w io.Writer, rep *checker.Report, format Format, opts Options) error {
	if rep == nil {
		return fmt.Errorf("render %s: nil report", format)
	}
	switch format {
	case FormatText:
		return renderText(w, rep, opts)
	case FormatJSON:
		return renderJSON(w, rep)
	case FormatYAML:
		return renderYAML(w, rep)
	case FormatMarkdown:
		return renderMarkdown(w, rep, opts)
	case FormatHTML:
		return renderHTML(w, rep, opts)
	case FormatPDF:
		return renderPDF(w, rep, opts)
	default:
		_, err := ParseFormat(string(format))
		return err
	}
}

// Bytes renders rep into memory.
func Bytes(rep *checker.Report, format Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, rep, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// document is the serialised shape shared by the json and yaml presenters.
type document struct {
	ScanID      string            `json:"scan_id" yaml:"scan_id"`
	Target      string            `json:"target" yaml:"target"`
	StartedAt   time.Time         `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time         `json:"completed_at" yaml:"completed_at"`
	DurationMS  int64             `json:"duration_ms" yaml:"duration_ms"`
	Summary     checker.Counts    `json:"summary" yaml:"summary"`
	Findings    []checker.Finding `json:"findings" yaml:"findings"`
}

func newDocument(rep *checker.Report) document {
	findings := rep.Findings
	if findings == nil {
		findings = []checker.Finding{}
	}
	return document{
		ScanID:      rep.ID.String(),
		Target:      rep.Target,
		StartedAt:   rep.StartedAt,
		CompletedAt: rep.CompletedAt,
		DurationMS:  rep.Duration().Milliseconds(),
		Summary:     rep.Counts(),
		Findings:    findings,
	}
}

// detailLines splits a finding's detail into display lines: one per header for
// the header checks, one per field for form validation.
func detailLines(f checker.Finding) []string {
	var lines []string
	switch f.Name {
	case checker.CheckSecurityHeaders, checker.CheckXSSProtection:
		for _, row := range headerRows(f) {
			lines = append(lines, row.Key+": "+row.Value)
		}
	case checker.CheckFormValidation:
		lines = f.EvidenceValues("validation")
	}
	if len(lines) == 0 && f.Detail != "" {
		lines = []string{f.Detail}
	}
	return lines
}

// headerRows returns the evidence entries keyed by a security header name.
func headerRows(f checker.Finding) []checker.EvidenceItem {
	known := make(map[string]bool)
	for _, name := range checker.SecurityHeaderNames() {
		known[name] = true
	}
	var rows []checker.EvidenceItem
	for _, item := range f.Evidence {
		if known[item.Key] {
			rows = append(rows, item)
		}
	}
	return rows
}

func statusLabel(s checker.Status) string {
	return strings.ToUpper(string(s))
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
