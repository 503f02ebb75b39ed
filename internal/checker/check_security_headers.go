package checker

import (
	"context"
	"strings"
)

const securityHeadersAdvice = "Set the following headers to improve security: Content-Security-Policy, X-Frame-Options, X-Content-Type-Options, Strict-Transport-Security, Referrer-Policy, Permissions-Policy, and X-XSS-Protection."

// SecurityHeadersCheck reports the seven common security headers and scores them.
// It passes only when every header is set.
type SecurityHeadersCheck struct {
	fetcher Fetcher
}

func NewSecurityHeadersCheck(fetcher Fetcher) *SecurityHeadersCheck {
	return &SecurityHeadersCheck{fetcher: fetcher}
}

func (c *SecurityHeadersCheck) Name() CheckName { return CheckSecurityHeaders }

func (c *SecurityHeadersCheck) Run(ctx context.Context, target Target) (Finding, error) {
	resp, err := fetchPage(ctx, c.fetcher, target)
	if err != nil {
		return Finding{}, err
	}

	score := AssessSecurityHeaders(resp.Headers)

	var ev evidence
	for _, h := range score.Headers {
		ev.add(h.Name, h.Value)
	}
	ev.addf("score", "%d/%d", score.Score, score.MaxScore)
	ev.add("grade", score.Grade)
	for _, h := range score.Headers {
		for _, issue := range h.Issues {
			ev.add("issue", h.Name+": "+issue)
		}
	}
	for _, warning := range score.Warnings {
		ev.add("warning", warning)
	}

	detail := headerTable(score.Headers)
	if len(score.Missing()) > 0 {
		return failFinding(CheckSecurityHeaders, detail, securityHeadersAdvice, ev), nil
	}
	return passFinding(CheckSecurityHeaders, detail, ev), nil
}

// headerTable renders "Name: value" pairs separated by "; ".
func headerTable(headers []HeaderAssessment) string {
	rows := make([]string, len(headers))
	for i, h := range headers {
		rows[i] = h.Name + ": " + h.Value
	}
	return strings.Join(rows, "; ")
}
