package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrEmptyTarget       = errors.New("target cannot be empty")
	ErrInvalidTarget     = errors.New("invalid target URL")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme (only http and https are allowed)")
	ErrMissingHost       = errors.New("target URL has no host")

	// Probe errors
	ErrTooManyRedirects   = errors.New("too many redirects")
	ErrRedirectLoop       = errors.New("redirect loop detected")
	ErrDisallowedRedirect = errors.New("redirect to a non-http(s) location")
	ErrNoPeerCertificate  = errors.New("server presented no certificate")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
