package checker

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// Target is a validated absolute http(s) URL. The zero value is not usable;
// build one with ParseTarget.
type Target struct {
	original string
	scheme   string
	host     string
	port     string
	path     string
	rawQuery string
}

// ParseTarget validates raw user input and returns an immutable Target.
// Accepted input formats:
//   - example.com (normalized to http://example.com)
//   - http://example.com
//   - https://example.com:8443/path?q=1
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, sharedErrors.ErrEmptyTarget
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		if u, ok := foreignScheme(raw); ok {
			return Target{}, validateHTTPURL(u)
		}
		candidate = "http://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidTarget, err)
	}
	if err := validateHTTPURL(parsed); err != nil {
		return Target{}, err
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	return Target{
		original: raw,
		scheme:   strings.ToLower(parsed.Scheme),
		host:     strings.ToLower(parsed.Hostname()),
		port:     parsed.Port(),
		path:     path,
		rawQuery: parsed.RawQuery,
	}, nil
}

// foreignScheme reports whether scheme-less looking input such as
// "mailto:a@b" or "file:/etc/passwd" actually names another scheme.
// host:port input ("localhost:8080/app") is not a scheme.
func foreignScheme(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if isPortPrefix(u.Opaque) {
		return nil, false
	}
	return u, true
}

// isPortPrefix reports whether s starts with a port number followed by
// the end of input or a path, query or fragment.
func isPortPrefix(s string) bool {
	end := strings.IndexAny(s, "/?#")
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return false
	}
	for _, r := range s[:end] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateHTTPURL enforces the strict http(s) rules shared by targets and redirect hops.
func validateHTTPURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %w: %q", sharedErrors.ErrInvalidTarget, sharedErrors.ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: %w", sharedErrors.ErrInvalidTarget, sharedErrors.ErrMissingHost)
	}
	return nil
}

// Original returns the input the target was parsed from.
func (t Target) Original() string { return t.original }

// Scheme returns "http" or "https".
func (t Target) Scheme() string { return t.scheme }

// Host returns the lower-cased hostname without port.
func (t Target) Host() string { return t.host }

// Port returns the explicit port, or "" when the URL carries none.
func (t Target) Port() string { return t.port }

// Path returns the escaped path, "/" at minimum.
func (t Target) Path() string { return t.path }

// IsHTTPS reports whether the target already uses the https scheme.
func (t Target) IsHTTPS() bool { return t.scheme == "https" }

// URL returns the normalized absolute URL.
func (t Target) URL() string {
	return t.build(t.scheme, t.hostPort())
}

func (t Target) String() string { return t.URL() }

// HTTPSEquivalent swaps the scheme to https, keeping host, path and query.
// An explicit port is kept unless it is the plain-HTTP default 80.
func (t Target) HTTPSEquivalent() string {
	hostPort := t.hostPort()
	if t.port == "80" {
		hostPort = hostForURL(t.host)
	}
	return t.build("https", hostPort)
}

// TLSEndpoint returns the host and port used for certificate inspection:
// the explicit port when present, 443 otherwise.
func (t Target) TLSEndpoint() (host, port string) {
	if t.port != "" {
		return t.host, t.port
	}
	return t.host, constants.DefaultTLSPort
}

func (t Target) hostPort() string {
	if t.port == "" {
		return hostForURL(t.host)
	}
	return net.JoinHostPort(t.host, t.port)
}

func (t Target) build(scheme, hostPort string) string {
	u := scheme + "://" + hostPort + t.path
	if t.rawQuery != "" {
		u += "?" + t.rawQuery
	}
	return u
}

// hostForURL brackets IPv6 literals.
func hostForURL(host string) string {
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
