package checker

import (
	"errors"
	"fmt"
	"net"
)

// ErrorKind tags the class of failure behind an Error finding.
type ErrorKind string

const (
	ErrorKindNetwork  ErrorKind = "network"
	ErrorKindRedirect ErrorKind = "redirect"
	ErrorKindTLS      ErrorKind = "tls"
	ErrorKindParse    ErrorKind = "parse"
	ErrorKindInternal ErrorKind = "internal"
)

// NetworkError covers DNS failures, refused connections, TLS handshake failures
// on content fetches, timeouts and other transport problems.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline expiry.
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RedirectError is returned when a redirect chain loops, is too long, or leaves http(s).
type RedirectError struct {
	URL string
	Err error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s: %v", e.URL, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// TLSError wraps failures of the raw certificate probe.
type TLSError struct {
	Op   string // dial, handshake or parse
	Addr string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// ParseError reports markup that could not be read at all. Missing elements are not errors.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// classifyError maps an error returned by a check onto its kind.
func classifyError(err error) ErrorKind {
	var (
		netErr      *NetworkError
		redirectErr *RedirectError
		tlsErr      *TLSError
		parseErr    *ParseError
	)
	switch {
	case errors.As(err, &redirectErr):
		return ErrorKindRedirect
	case errors.As(err, &tlsErr):
		return ErrorKindTLS
	case errors.As(err, &parseErr):
		return ErrorKindParse
	case errors.As(err, &netErr):
		return ErrorKindNetwork
	default:
		return ErrorKindInternal
	}
}
