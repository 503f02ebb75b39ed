package checker

import (
	"fmt"
	"strconv"
	"strings"
)

// Header names inspected by the header checks.
const (
	headerCSP                 = "Content-Security-Policy"
	headerXFrameOptions       = "X-Frame-Options"
	headerXContentTypeOptions = "X-Content-Type-Options"
	headerHSTS                = "Strict-Transport-Security"
	headerReferrerPolicy      = "Referrer-Policy"
	headerPermissionsPolicy   = "Permissions-Policy"
	headerXXSSProtection      = "X-XSS-Protection"
)

// hstsRecommendedMaxAge is one year, the preload list minimum.
const hstsRecommendedMaxAge = 31536000

// headerPolicy scores one security header.
type headerPolicy struct {
	name     string
	severity string // "high", "medium", "low"
	maxScore int
	evaluate func(value string) (int, []string)
}

// securityHeaderPolicies lists the headers in report order.
var securityHeaderPolicies = []headerPolicy{
	{name: headerCSP, severity: "high", maxScore: 20, evaluate: evaluateCSP},
	{name: headerXFrameOptions, severity: "high", maxScore: 15, evaluate: evaluateXFrameOptions},
	{name: headerXContentTypeOptions, severity: "high", maxScore: 15, evaluate: evaluateXContentTypeOptions},
	{name: headerHSTS, severity: "high", maxScore: 20, evaluate: evaluateHSTS},
	{name: headerReferrerPolicy, severity: "medium", maxScore: 10, evaluate: evaluateReferrerPolicy},
	{name: headerPermissionsPolicy, severity: "medium", maxScore: 10, evaluate: evaluatePermissionsPolicy},
	{name: headerXXSSProtection, severity: "low", maxScore: 5, evaluate: evaluateXXSSProtection},
}

// SecurityHeaderNames returns the inspected header names in report order.
func SecurityHeaderNames() []string {
	names := make([]string, len(securityHeaderPolicies))
	for i, p := range securityHeaderPolicies {
		names[i] = p.name
	}
	return names
}

// disclosureHeaders reveal server software and should be removed or obfuscated.
var disclosureHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
	"X-AspNetMvc-Version",
}

// HeaderAssessment is the verdict for one header.
type HeaderAssessment struct {
	Name     string
	Value    string // joined values, NotSet when absent
	Present  bool
	Severity string
	Score    int
	MaxScore int
	Issues   []string
}

// HeaderScore is the quality assessment of a response's security headers.
type HeaderScore struct {
	Headers  []HeaderAssessment
	Score    int
	MaxScore int
	Grade    string
	Warnings []string
}

// Missing returns the names of absent headers in report order.
func (s HeaderScore) Missing() []string {
	var missing []string
	for _, h := range s.Headers {
		if !h.Present {
			missing = append(missing, h.Name)
		}
	}
	return missing
}

// AssessSecurityHeaders scores every policy header and collects deprecation and
// disclosure warnings.
func AssessSecurityHeaders(h Headers) HeaderScore {
	var result HeaderScore

	for _, policy := range securityHeaderPolicies {
		assessment := HeaderAssessment{
			Name:     policy.name,
			Value:    h.Joined(policy.name),
			Severity: policy.severity,
			MaxScore: policy.maxScore,
		}
		result.MaxScore += policy.maxScore

		if value, ok := h.First(policy.name); ok {
			assessment.Present = true
			assessment.Score, assessment.Issues = policy.evaluate(value)
			if assessment.Score < 0 {
				assessment.Score = 0
			}
			result.Score += assessment.Score
		}
		result.Headers = append(result.Headers, assessment)
	}

	if h.Has("Expect-CT") {
		result.Warnings = append(result.Warnings, "Expect-CT is deprecated. Remove this header.")
	}
	if h.Has("Public-Key-Pins") {
		result.Warnings = append(result.Warnings, "Public-Key-Pins (HPKP) is deprecated and dangerous. Remove this header.")
	}
	for _, name := range disclosureHeaders {
		if value, ok := h.First(name); ok && value != "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s header exposes server information: '%s'", name, value))
		}
	}

	result.Grade = calculateGrade(result.Score, result.MaxScore)
	return result
}

// hstsPolicy is a parsed Strict-Transport-Security value.
type hstsPolicy struct {
	maxAge            int
	hasMaxAge         bool
	includeSubDomains bool
	preload           bool
}

func parseHSTS(value string) hstsPolicy {
	var p hstsPolicy
	for _, part := range strings.Split(value, ";") {
		directive := strings.ToLower(strings.TrimSpace(part))
		switch {
		case strings.HasPrefix(directive, "max-age="):
			raw := strings.Trim(strings.TrimPrefix(directive, "max-age="), `"`)
			if n, err := strconv.Atoi(raw); err == nil {
				p.maxAge = n
				p.hasMaxAge = true
			}
		case directive == "includesubdomains":
			p.includeSubDomains = true
		case directive == "preload":
			p.preload = true
		}
	}
	return p
}

// hstsIssues returns configuration weaknesses of an HSTS value.
func hstsIssues(value string) []string {
	_, issues := evaluateHSTS(value)
	return issues
}

func evaluateHSTS(value string) (int, []string) {
	p := parseHSTS(value)
	score := 20
	var issues []string

	switch {
	case !p.hasMaxAge:
		issues = append(issues, "Missing 'max-age' directive")
		score -= 10
	case p.maxAge == 0:
		return 0, []string{"max-age is set to 0 (HSTS disabled)"}
	case p.maxAge < hstsRecommendedMaxAge:
		issues = append(issues, fmt.Sprintf("max-age=%d is below the recommended %d (1 year)", p.maxAge, hstsRecommendedMaxAge))
		score -= 3
	}

	if !p.includeSubDomains {
		issues = append(issues, "Missing 'includeSubDomains' directive")
		score -= 5
	}
	if !p.preload {
		issues = append(issues, "Missing 'preload' directive")
		score -= 2
	}
	return score, issues
}

func parseCSPDirectives(value string) map[string][]string {
	directives := make(map[string][]string)
	for _, part := range strings.Split(strings.ToLower(value), ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		directives[fields[0]] = fields[1:]
	}
	return directives
}

func evaluateCSP(value string) (int, []string) {
	directives := parseCSPDirectives(value)
	score := 20
	var issues []string

	lower := strings.ToLower(value)
	if strings.Contains(lower, "'unsafe-inline'") {
		issues = append(issues, "Contains 'unsafe-inline' which weakens CSP protection")
		score -= 5
	}
	if strings.Contains(lower, "'unsafe-eval'") {
		issues = append(issues, "Contains 'unsafe-eval' which allows eval() and similar functions")
		score -= 5
	}
	if strings.Contains(lower, "*") {
		issues = append(issues, "Contains wildcard (*) which is too permissive")
		score -= 3
	}
	if _, ok := directives["default-src"]; !ok {
		issues = append(issues, "Missing 'default-src' directive")
		score -= 3
	}
	if _, ok := directives["script-src"]; !ok {
		issues = append(issues, "Missing 'script-src' directive")
		score -= 2
	}

	for _, token := range directives["script-src"] {
		switch {
		case token == "data:", token == "blob:", token == "filesystem:":
			issues = append(issues, fmt.Sprintf("Script sources allow %s URLs which can enable CSP bypasses", token))
			score -= 2
		case strings.HasPrefix(token, "http:"):
			issues = append(issues, "Script sources allow insecure http scheme")
			score -= 2
		}
	}
	return score, issues
}

func evaluateXFrameOptions(value string) (int, []string) {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch {
	case v == "DENY", v == "SAMEORIGIN":
		return 15, nil
	case strings.HasPrefix(v, "ALLOW-FROM"):
		return 5, []string{"ALLOW-FROM is not supported by modern browsers; use CSP frame-ancestors"}
	default:
		return 0, []string{"Invalid X-Frame-Options value"}
	}
}

func evaluateXContentTypeOptions(value string) (int, []string) {
	if strings.EqualFold(strings.TrimSpace(value), "nosniff") {
		return 15, nil
	}
	return 0, []string{"Invalid value, should be 'nosniff'"}
}

func evaluateReferrerPolicy(value string) (int, []string) {
	// the last recognised token wins in browsers
	tokens := strings.Split(strings.ToLower(value), ",")
	policy := strings.TrimSpace(tokens[len(tokens)-1])

	switch policy {
	case "no-referrer", "strict-origin", "strict-origin-when-cross-origin", "same-origin":
		return 10, nil
	case "unsafe-url", "origin-when-cross-origin", "no-referrer-when-downgrade":
		return 5, []string{"Policy may leak sensitive information in referrer"}
	default:
		return 7, []string{"Unusual or weak referrer policy"}
	}
}

func evaluatePermissionsPolicy(value string) (int, []string) {
	if len(strings.TrimSpace(value)) < 10 {
		return 7, []string{"Permissions-Policy seems minimal, consider adding more restrictions"}
	}
	return 10, nil
}

func evaluateXXSSProtection(value string) (int, []string) {
	v := strings.ToLower(strings.ReplaceAll(value, " ", ""))
	switch {
	case v == "0":
		return 5, nil
	case strings.HasPrefix(v, "1;mode=block"):
		return 3, []string{"X-XSS-Protection filter is deprecated; prefer '0' with a strong Content-Security-Policy"}
	case v == "1":
		return 1, []string{"X-XSS-Protection enabled without mode=block"}
	default:
		return 0, []string{"Invalid X-XSS-Protection value"}
	}
}

// calculateGrade converts a score to a letter grade
func calculateGrade(score, maxScore int) string {
	if maxScore <= 0 {
		return "F"
	}
	percentage := float64(score) / float64(maxScore) * 100

	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	case percentage >= 50:
		return "E"
	default:
		return "F"
	}
}
