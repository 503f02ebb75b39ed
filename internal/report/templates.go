package report

import (
	"embed"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

const (
	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

var (
	htmlTemplateFuncs = htmltemplate.FuncMap{
		"lower":      strings.ToLower,
		"formatTime": formatTimestamp,
	}

	markdownTemplateFuncs = texttemplate.FuncMap{
		"formatTime": formatTimestamp,
		"escape":     escapeMarkdown,
	}

	htmlReportTemplate = htmltemplate.Must(
		htmltemplate.New("report.html").Funcs(htmlTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = texttemplate.Must(
		texttemplate.New("report.md").Funcs(markdownTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

// TemplateData feeds the html and markdown templates.
type TemplateData struct {
	ScanID       string
	Target       string
	StartedAt    string
	CompletedAt  string
	Duration     string
	Summary      checker.Counts
	Findings     []FindingView
	ShowEvidence bool
	HomeURL      string
}

// FindingView is a finding prepared for display.
type FindingView struct {
	Name        string
	Slug        string
	Status      string
	Lines       []string
	Headers     []checker.EvidenceItem
	List        bool
	Remediation string
	Evidence    []checker.EvidenceItem
	Duration    string
}

func buildTemplateData(rep *checker.Report, opts Options) TemplateData {
	data := TemplateData{
		ScanID:       rep.ID.String(),
		Target:       rep.Target,
		StartedAt:    formatTimestamp(rep.StartedAt),
		CompletedAt:  formatTimestamp(rep.CompletedAt),
		Duration:     formatDuration(rep.Duration()),
		Summary:      rep.Counts(),
		ShowEvidence: opts.Evidence,
		HomeURL:      opts.HomeURL,
	}
	for _, f := range rep.Findings {
		// nothing to say about this check
		if !f.HasContent() {
			continue
		}
		view := FindingView{
			Name:        string(f.Name),
			Slug:        f.Name.Slug(),
			Status:      statusLabel(f.Status),
			Remediation: f.Remediation,
			Duration:    formatDuration(f.Duration),
		}
		if f.Status != checker.StatusError && (f.Name == checker.CheckSecurityHeaders || f.Name == checker.CheckXSSProtection) {
			view.Headers = headerRows(f)
		}
		if len(view.Headers) == 0 {
			view.Lines = detailLines(f)
			view.List = f.Name == checker.CheckFormValidation && len(f.EvidenceValues("validation")) > 0
		}
		if opts.Evidence {
			view.Evidence = f.Evidence
		}
		data.Findings = append(data.Findings, view)
	}
	return data
}

func renderHTML(w io.Writer, rep *checker.Report, opts Options) error {
	return htmlReportTemplate.Execute(w, buildTemplateData(rep, opts))
}

func renderMarkdown(w io.Writer, rep *checker.Report, opts Options) error {
	return markdownReportTemplate.Execute(w, buildTemplateData(rep, opts))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"|", `\|`,
	"<", "&lt;",
	">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
