package checker

import (
	"context"
	"net/http"
	"strings"
)

const (
	corsMissingDetail = "No CORS headers found in OPTIONS response."
	corsAdvice        = "Add CORS headers (`Access-Control-Allow-Origin`, `Access-Control-Allow-Methods`, `Access-Control-Allow-Headers`) in your server configuration to control cross-origin requests."
)

// CORSCheck sends a preflight request from a foreign origin and reads the CORS policy.
type CORSCheck struct {
	fetcher Fetcher
}

func NewCORSCheck(fetcher Fetcher) *CORSCheck {
	return &CORSCheck{fetcher: fetcher}
}

func (c *CORSCheck) Name() CheckName { return CheckCORS }

func (c *CORSCheck) Run(ctx context.Context, target Target) (Finding, error) {
	resp, err := c.fetcher.Fetch(ctx, http.MethodOptions, target.URL(), map[string]string{
		"Origin":                        corsProbeOrigin,
		"Access-Control-Request-Method": http.MethodGet,
	})
	if err != nil {
		return Finding{}, err
	}

	policy := AssessCORS(resp.Headers)
	if !policy.Enabled() {
		return failFinding(CheckCORS, corsMissingDetail, corsAdvice, nil), nil
	}

	allowed := strings.Join(policy.AllowOrigin, ", ")
	var ev evidence
	ev.add("Access-Control-Allow-Origin", allowed)
	for _, name := range []string{
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Credentials",
		"Access-Control-Expose-Headers",
		"Access-Control-Max-Age",
	} {
		if resp.Headers.Has(name) {
			ev.add(name, resp.Headers.Joined(name))
		}
	}
	for _, issue := range policy.Issues {
		ev.add("issue", issue)
	}
	return passFinding(CheckCORS, "CORS is enabled: "+allowed, ev), nil
}
