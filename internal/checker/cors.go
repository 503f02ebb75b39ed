package checker

import (
	"strings"
)

// corsProbeOrigin is the foreign origin announced on the preflight probe.
const corsProbeOrigin = "https://example.com"

// CORSPolicy is the cross-origin policy advertised by a preflight response.
type CORSPolicy struct {
	AllowOrigin      []string
	AllowMethods     string
	AllowHeaders     string
	ExposeHeaders    string
	MaxAge           string
	AllowCredentials bool
	VaryOrigin       bool
	Issues           []string
}

// Enabled reports whether Access-Control-Allow-Origin was present.
func (p CORSPolicy) Enabled() bool { return len(p.AllowOrigin) > 0 }

// AssessCORS inspects CORS headers for insecure defaults (OWASP A5:2021).
func AssessCORS(h Headers) CORSPolicy {
	policy := CORSPolicy{
		AllowOrigin:      h.Values("Access-Control-Allow-Origin"),
		AllowMethods:     h.Get("Access-Control-Allow-Methods"),
		AllowHeaders:     h.Get("Access-Control-Allow-Headers"),
		ExposeHeaders:    h.Get("Access-Control-Expose-Headers"),
		MaxAge:           h.Get("Access-Control-Max-Age"),
		AllowCredentials: strings.EqualFold(strings.TrimSpace(h.Get("Access-Control-Allow-Credentials")), "true"),
		VaryOrigin:       varyIncludesOrigin(h.Values("Vary")),
	}
	if !policy.Enabled() {
		return policy
	}

	var wildcard, reflected bool
	for _, origin := range policy.AllowOrigin {
		switch strings.TrimSpace(origin) {
		case "*":
			wildcard = true
		case "null":
			policy.Issues = append(policy.Issues, "CORS allows the 'null' origin")
		case corsProbeOrigin:
			reflected = true
		}
	}

	if wildcard {
		policy.Issues = append(policy.Issues, "CORS allows any origin (*)")
		if policy.AllowCredentials {
			policy.Issues = append(policy.Issues, "Credentials allowed with wildcard origin (disallowed by browsers)")
		}
	}
	if reflected {
		policy.Issues = append(policy.Issues, "Arbitrary request origin is reflected in Access-Control-Allow-Origin")
		if policy.AllowCredentials {
			policy.Issues = append(policy.Issues, "Reflected origin combined with credentials exposes authenticated responses")
		}
	}
	if strings.Contains(policy.AllowHeaders, "*") {
		policy.Issues = append(policy.Issues, "Access-Control-Allow-Headers allows any header (*)")
	}
	if strings.Contains(policy.ExposeHeaders, "*") {
		policy.Issues = append(policy.Issues, "Access-Control-Expose-Headers exposes all headers (*)")
	}
	if !wildcard && !policy.VaryOrigin {
		policy.Issues = append(policy.Issues, "Vary: Origin header missing (responses may be cached incorrectly)")
	}
	return policy
}

func varyIncludesOrigin(values []string) bool {
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "origin") {
				return true
			}
		}
	}
	return false
}
