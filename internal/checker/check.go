package checker

import (
	"context"
	"net/http"
)

// Check is one independent probe against a target. Run returns an error only when
// the probe itself could not complete; a missing control is a fail Finding.
type Check interface {
	Name() CheckName
	Run(ctx context.Context, target Target) (Finding, error)
}

// DefaultChecks returns the eight checks in report order.
func DefaultChecks(fetcher Fetcher, inspector CertInspector) []Check {
	return []Check{
		NewHTTPSCheck(fetcher),
		NewHSTSCheck(fetcher),
		NewCSRFCheck(fetcher),
		NewCORSCheck(fetcher),
		NewFormValidationCheck(fetcher),
		NewSecurityHeadersCheck(fetcher),
		NewXSSProtectionCheck(fetcher),
		NewSSLCheck(inspector),
	}
}

// fetchPage GETs the target itself.
func fetchPage(ctx context.Context, fetcher Fetcher, target Target) (*Response, error) {
	return fetcher.Fetch(ctx, http.MethodGet, target.URL(), nil)
}

// fetchDocument GETs and parses the target.
func fetchDocument(ctx context.Context, fetcher Fetcher, target Target) (*Response, *Document, error) {
	resp, err := fetchPage(ctx, fetcher, target)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ParseDocument(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, doc, nil
}
