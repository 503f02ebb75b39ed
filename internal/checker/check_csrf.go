package checker

import (
	"context"
	"regexp"
)

const (
	csrfCookieDetail  = "CSRF protection found in cookies."
	csrfMissingDetail = "No visible CSRF protection found."
	csrfAdvice        = "Consider adding CSRF tokens to forms and validating them on every state-changing request."
)

var csrfCookiePattern = regexp.MustCompile(`(?i)(csrf|xsrf|token)`)

// CSRFCheck looks for anti-forgery tokens in the markup or in cookies.
type CSRFCheck struct {
	fetcher Fetcher
}

func NewCSRFCheck(fetcher Fetcher) *CSRFCheck {
	return &CSRFCheck{fetcher: fetcher}
}

func (c *CSRFCheck) Name() CheckName { return CheckCSRF }

func (c *CSRFCheck) Run(ctx context.Context, target Target) (Finding, error) {
	resp, doc, err := fetchDocument(ctx, c.fetcher, target)
	if err != nil {
		return Finding{}, err
	}

	var ev evidence
	for _, note := range AnalyzeCookies(resp.Headers) {
		ev.add("cookie", note.String())
	}

	if el, ok := doc.First(csrfTokenSelector); ok {
		name, _ := el.Attr("name")
		found := evidence{{Key: "element", Value: el.Tag()}, {Key: "token_name", Value: name}}
		return passFinding(CheckCSRF, "CSRF protection found: "+name, append(found, ev...)), nil
	}

	for _, cookie := range resp.Headers.Values("Set-Cookie") {
		if match := csrfCookiePattern.FindString(cookie); match != "" {
			found := evidence{{Key: "cookie_match", Value: match}}
			return passFinding(CheckCSRF, csrfCookieDetail, append(found, ev...)), nil
		}
	}

	return failFinding(CheckCSRF, csrfMissingDetail, csrfAdvice, ev), nil
}
