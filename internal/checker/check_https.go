package checker

import (
	"context"
	"net/http"
)

const (
	httpsEnabledDetail     = "HTTPS is enabled."
	httpsNotDefaultDetail  = "HTTPS is available, but not used by default."
	httpsNotDefaultAdvice  = "Redirect HTTP traffic to HTTPS by setting up a 301 redirect in your server configuration."
	httpsUnavailableDetail = "HTTPS is not available."
	httpsUnavailableAdvice = "Purchase and install an SSL certificate for your website to enable HTTPS."
)

// HTTPSCheck verifies that the site is served over HTTPS.
type HTTPSCheck struct {
	fetcher Fetcher
}

func NewHTTPSCheck(fetcher Fetcher) *HTTPSCheck {
	return &HTTPSCheck{fetcher: fetcher}
}

func (c *HTTPSCheck) Name() CheckName { return CheckHTTPS }

// Run passes for https targets. For http targets it probes the https equivalent:
// reachable means HTTPS exists but is not the default, any failure means it is missing.
func (c *HTTPSCheck) Run(ctx context.Context, target Target) (Finding, error) {
	var ev evidence
	if target.IsHTTPS() {
		ev.add("https_url", target.URL())
		return passFinding(CheckHTTPS, httpsEnabledDetail, ev), nil
	}

	httpsURL := target.HTTPSEquivalent()
	ev.add("https_url", httpsURL)

	resp, err := c.fetcher.Fetch(ctx, http.MethodGet, httpsURL, nil)
	if err != nil {
		ev.add("error", err.Error())
		return failFinding(CheckHTTPS, httpsUnavailableDetail, httpsUnavailableAdvice, ev), nil
	}

	ev.addf("status_code", "%d", resp.StatusCode)
	return failFinding(CheckHTTPS, httpsNotDefaultDetail, httpsNotDefaultAdvice, ev), nil
}
