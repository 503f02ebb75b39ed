package checker

import "context"

const (
	hstsDisabledDetail = "HSTS is not enabled."
	hstsAdvice         = "Enable HSTS by adding the `Strict-Transport-Security` header in your server configuration."
)

// HSTSCheck looks for a Strict-Transport-Security header on the target.
type HSTSCheck struct {
	fetcher Fetcher
}

func NewHSTSCheck(fetcher Fetcher) *HSTSCheck {
	return &HSTSCheck{fetcher: fetcher}
}

func (c *HSTSCheck) Name() CheckName { return CheckHSTS }

func (c *HSTSCheck) Run(ctx context.Context, target Target) (Finding, error) {
	resp, err := fetchPage(ctx, c.fetcher, target)
	if err != nil {
		return Finding{}, err
	}

	if !resp.Headers.Has(headerHSTS) {
		return failFinding(CheckHSTS, hstsDisabledDetail, hstsAdvice, nil), nil
	}

	value := resp.Headers.Joined(headerHSTS)
	var ev evidence
	ev.add(headerHSTS, value)
	for _, issue := range hstsIssues(resp.Headers.Get(headerHSTS)) {
		ev.add("note", issue)
	}
	return passFinding(CheckHSTS, "HSTS is enabled: "+value, ev), nil
}
