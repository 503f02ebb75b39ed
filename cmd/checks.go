package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/compliance"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// SecurityCheckSpec describes one check of a scan and its category.
type SecurityCheckSpec struct {
	Name        checker.CheckName
	Category    string
	Description string
}

// securityCheckCatalog lists every check in report order. The catalog test
// keeps it aligned with checker.CheckNames.
var securityCheckCatalog = []SecurityCheckSpec{
	{
		Name:        checker.CheckHTTPS,
		Category:    "Transport Layer Security (TLS)",
		Description: "Target is served over HTTPS, or its HTTPS equivalent answers",
	},
	{
		Name:        checker.CheckHSTS,
		Category:    "Transport Layer Security (TLS)",
		Description: "Strict-Transport-Security header is present",
	},
	{
		Name:        checker.CheckCSRF,
		Category:    "Cross-Site Request Forgery (CSRF)",
		Description: "Forms carry an anti-CSRF token and cookies set SameSite",
	},
	{
		Name:        checker.CheckCORS,
		Category:    "Cross-Origin Resource Sharing (CORS)",
		Description: "Preflight from a foreign origin returns a CORS policy, with risk notes",
	},
	{
		Name:        checker.CheckFormValidation,
		Category:    "Input Validation",
		Description: "Form inputs declare client-side validation attributes",
	},
	{
		Name:        checker.CheckSecurityHeaders,
		Category:    "Miscellaneous Headers",
		Description: "Recommended response security headers are set",
	},
	{
		Name:        checker.CheckXSSProtection,
		Category:    "Cross-Site Scripting (XSS) Protection",
		Description: "Content-Security-Policy and related XSS headers are set",
	},
	{
		Name:        checker.CheckSSL,
		Category:    "Transport Layer Security (TLS)",
		Description: "Certificate presented on the TLS endpoint, with expiry and cipher notes",
	},
}

func getSecurityCheckCatalog() []SecurityCheckSpec {
	out := make([]SecurityCheckSpec, len(securityCheckCatalog))
	copy(out, securityCheckCatalog)
	return out
}

func newChecksCmd() *cobra.Command {
	var framework string
	checksCmd := &cobra.Command{
		Use:   "checks",
		Short: "List the checks run by a scan",
		Long: `List every check a scan runs, in report order.

With --framework, show the compliance controls each check maps to and list
only checks that map to at least one control. Supported frameworks:
  ` + frameworkIDs(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if framework == "" {
				return printCatalog(cmd.OutOrStdout())
			}
			fw, ok := compliance.LookupFramework(strings.ToLower(strings.TrimSpace(framework)))
			if !ok {
				return fmt.Errorf("%w: unknown framework %q (supported: %s)", sharedErrors.ErrInvalidInput, framework, frameworkIDs())
			}
			return printFrameworkControls(cmd.OutOrStdout(), fw)
		},
	}
	checksCmd.Flags().StringVar(&framework, "framework", "", "show controls of a compliance framework")
	return checksCmd
}

func printCatalog(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tCATEGORY\tDESCRIPTION")
	for _, spec := range getSecurityCheckCatalog() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", spec.Name, spec.Category, spec.Description)
	}
	return tw.Flush()
}

func printFrameworkControls(out io.Writer, fw compliance.Framework) error {
	fmt.Fprintf(out, "%s controls\n\n", fw.Name)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tPRIORITY\tCONTROLS")
	for _, name := range compliance.ChecksForFramework(fw.ID) {
		m, _ := compliance.MappingFor(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, m.Priority[fw.ID], strings.Join(compliance.ControlsFor(name, fw.ID), ", "))
	}
	return tw.Flush()
}

func frameworkIDs() string {
	fws := compliance.Frameworks()
	ids := make([]string, 0, len(fws))
	for _, fw := range fws {
		ids = append(ids, fw.ID)
	}
	return strings.Join(ids, ", ")
}
