package checker

import (
	"errors"
	"testing"

	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantErr error
	}{
		{name: "bare host", input: "example.com", wantURL: "http://example.com/"},
		{name: "https with path", input: "https://example.com/login?next=%2F", wantURL: "https://example.com/login?next=%2F"},
		{name: "explicit port", input: "http://Example.com:8080/app", wantURL: "http://example.com:8080/app"},
		{name: "surrounding spaces", input: "  https://example.com  ", wantURL: "https://example.com/"},
		{name: "ipv6", input: "http://[::1]:8080/", wantURL: "http://[::1]:8080/"},
		{name: "empty", input: "   ", wantErr: sharedErrors.ErrEmptyTarget},
		{name: "ftp scheme", input: "ftp://example.com", wantErr: sharedErrors.ErrUnsupportedScheme},
		{name: "javascript scheme", input: "javascript://alert(1)", wantErr: sharedErrors.ErrUnsupportedScheme},
		{name: "host and port", input: "localhost:8080/app", wantURL: "http://localhost:8080/app"},
		{name: "mailto scheme", input: "mailto:alice@example.com", wantErr: sharedErrors.ErrUnsupportedScheme},
		{name: "file scheme", input: "file:/etc/passwd", wantErr: sharedErrors.ErrUnsupportedScheme},
		{name: "missing host", input: "http:///path", wantErr: sharedErrors.ErrMissingHost},
		{name: "malformed", input: "http://exa mple.com", wantErr: sharedErrors.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseTarget(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) unexpected error: %v", tt.input, err)
			}
			if got.URL() != tt.wantURL {
				t.Errorf("URL() = %q, want %q", got.URL(), tt.wantURL)
			}
		})
	}
}

func TestParseTarget_InvalidTargetWrapsCause(t *testing.T) {
	_, err := ParseTarget("gopher://example.com")
	if !errors.Is(err, sharedErrors.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
	if !errors.Is(err, sharedErrors.ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestTarget_HTTPSEquivalent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://example.com", "https://example.com/"},
		{"http://example.com:80/a?b=c", "https://example.com/a?b=c"},
		{"http://example.com:8080/a", "https://example.com:8080/a"},
		{"https://example.com/x", "https://example.com/x"},
	}
	for _, tt := range tests {
		target := mustTarget(t, tt.input)
		if got := target.HTTPSEquivalent(); got != tt.want {
			t.Errorf("HTTPSEquivalent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTarget_TLSEndpoint(t *testing.T) {
	host, port := mustTarget(t, "https://example.com/").TLSEndpoint()
	if host != "example.com" || port != "443" {
		t.Errorf("TLSEndpoint() = %s:%s, want example.com:443", host, port)
	}

	host, port = mustTarget(t, "https://example.com:8443/").TLSEndpoint()
	if host != "example.com" || port != "8443" {
		t.Errorf("TLSEndpoint() = %s:%s, want example.com:8443", host, port)
	}
}

func TestTarget_Accessors(t *testing.T) {
	target := mustTarget(t, "HTTPS://Example.COM:8443/Path?q=1")
	if target.Scheme() != "https" || !target.IsHTTPS() {
		t.Errorf("expected https scheme, got %q", target.Scheme())
	}
	if target.Host() != "example.com" {
		t.Errorf("Host() = %q", target.Host())
	}
	if target.Port() != "8443" {
		t.Errorf("Port() = %q", target.Port())
	}
	if target.Path() != "/Path" {
		t.Errorf("Path() = %q", target.Path())
	}
	if target.Original() != "HTTPS://Example.COM:8443/Path?q=1" {
		t.Errorf("Original() = %q", target.Original())
	}
}
