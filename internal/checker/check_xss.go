package checker

import (
	"context"
	"strings"
)

const xssAdvice = "Enable XSS protection headers (`X-XSS-Protection`) and set up a strong Content-Security-Policy to prevent XSS attacks."

// XSSProtectionCheck reports X-XSS-Protection and Content-Security-Policy.
// It passes only when both are set.
type XSSProtectionCheck struct {
	fetcher Fetcher
}

func NewXSSProtectionCheck(fetcher Fetcher) *XSSProtectionCheck {
	return &XSSProtectionCheck{fetcher: fetcher}
}

func (c *XSSProtectionCheck) Name() CheckName { return CheckXSSProtection }

func (c *XSSProtectionCheck) Run(ctx context.Context, target Target) (Finding, error) {
	resp, err := fetchPage(ctx, c.fetcher, target)
	if err != nil {
		return Finding{}, err
	}

	h := resp.Headers
	headers := []HeaderAssessment{
		{Name: headerXXSSProtection, Value: h.Joined(headerXXSSProtection), Present: h.Has(headerXXSSProtection)},
		{Name: headerCSP, Value: h.Joined(headerCSP), Present: h.Has(headerCSP)},
	}

	var ev evidence
	for _, hdr := range headers {
		ev.add(hdr.Name, hdr.Value)
	}
	if v, ok := h.First(headerXXSSProtection); ok {
		_, issues := evaluateXXSSProtection(v)
		for _, issue := range issues {
			ev.add("note", issue)
		}
	}
	csp, hasCSP := h.First(headerCSP)
	if hasCSP {
		_, issues := evaluateCSP(csp)
		for _, issue := range issues {
			ev.add("note", issue)
		}
	}
	if trustedTypesEnforced(csp) {
		ev.add("trusted_types", "enforced")
	} else {
		ev.add("trusted_types", "not enforced")
	}

	detail := headerTable(headers)
	if !headers[0].Present || !headers[1].Present {
		return failFinding(CheckXSSProtection, detail, xssAdvice, ev), nil
	}
	return passFinding(CheckXSSProtection, detail, ev), nil
}

// trustedTypesEnforced reports whether the CSP requires Trusted Types for scripts.
func trustedTypesEnforced(csp string) bool {
	for _, token := range parseCSPDirectives(csp)["require-trusted-types-for"] {
		if strings.Trim(token, "'") == "script" {
			return true
		}
	}
	return false
}
