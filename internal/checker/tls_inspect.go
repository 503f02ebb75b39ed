package checker

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// CertInspector retrieves certificate details for host:port.
type CertInspector interface {
	Inspect(ctx context.Context, host, port string) (*CertificateInfo, error)
}

// CertificateInspector opens a raw TLS connection to read the peer's leaf certificate.
// The handshake skips verification so expired, self-signed and mismatched
// certificates can still be described. Nothing is sent over the connection.
// Content fetches go through ProbeClient, which verifies.
type CertificateInspector struct {
	Timeout time.Duration
}

// NewCertificateInspector returns an inspector with the given handshake timeout.
func NewCertificateInspector(timeout time.Duration) *CertificateInspector {
	if timeout <= 0 {
		timeout = constants.DefaultTLSTimeout
	}
	return &CertificateInspector{Timeout: timeout}
}

// Inspect dials host:port, completes the handshake and returns the leaf certificate
// summary. The connection is closed on every return path.
func (i *CertificateInspector) Inspect(ctx context.Context, host, port string) (*CertificateInfo, error) {
	if port == "" {
		port = constants.DefaultTLSPort
	}
	addr := net.JoinHostPort(host, port)

	timeout := i.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTLSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TLSError{Op: "dial", Addr: addr, Err: err}
	}

	tlsConn := tls.Client(rawConn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true, // #nosec G402 -- handshake only, see type docs
	})
	defer tlsConn.Close()

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, &TLSError{Op: "handshake", Addr: addr, Err: err}
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, &TLSError{Op: "parse", Addr: addr, Err: sharedErrors.ErrNoPeerCertificate}
	}

	return newCertificateInfo(state.PeerCertificates[0], state), nil
}
