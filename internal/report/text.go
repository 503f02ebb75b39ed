package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

type textPalette struct {
	pass, fail, err, heading, label *color.Color
}

// newTextPalette returns plain colors unless enabled; the library still honours NO_COLOR.
func newTextPalette(enabled bool) textPalette {
	p := textPalette{
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		heading: color.New(color.FgCyan, color.Bold),
		label:   color.New(color.FgGreen),
	}
	if !enabled {
		for _, c := range []*color.Color{p.pass, p.fail, p.err, p.heading, p.label} {
			c.DisableColor()
		}
	}
	return p
}

func (p textPalette) status(s checker.Status) string {
	label := "[" + statusLabel(s) + "]"
	switch s {
	case checker.StatusPass:
		return p.pass.Sprint(label)
	case checker.StatusFail:
		return p.fail.Sprint(label)
	default:
		return p.err.Sprint(label)
	}
}

// renderText prints the console layout: a heading per check with indented lines.
func renderText(w io.Writer, rep *checker.Report, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newTextPalette(opts.Color)

	fmt.Fprintf(bw, "%s\n\n", p.heading.Sprint("Starting security scan for: "+rep.Target))
	for _, f := range rep.Findings {
		fmt.Fprintf(bw, "%s %s\n", p.heading.Sprint(string(f.Name)+":"), p.status(f.Status))
		for _, line := range detailLines(f) {
			fmt.Fprintf(bw, "  %s\n", line)
		}
		if f.Remediation != "" {
			fmt.Fprintf(bw, "  %s %s\n", p.label.Sprint("Improvement:"), f.Remediation)
		}
		if opts.Evidence {
			for _, item := range f.Evidence {
				fmt.Fprintf(bw, "    %s: %s\n", item.Key, item.Value)
			}
		}
		fmt.Fprintln(bw)
	}

	counts := rep.Counts()
	fmt.Fprintf(bw, "%s\n", p.heading.Sprint("Security scan completed."))
	fmt.Fprintf(bw, "Summary: %d pass, %d fail, %d error (%s)\n",
		counts.Pass, counts.Fail, counts.Error, formatDuration(rep.Duration()))

	return bw.Flush()
}
