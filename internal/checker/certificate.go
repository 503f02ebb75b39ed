package checker

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
)

// versionSSL30 represents the legacy SSL 3.0 protocol version (0x0300).
// Defined locally so we can report SSL 3.0 without the deprecated tls.VersionSSL30.
const versionSSL30 uint16 = 0x0300

// notAvailable stands in for certificate fields the peer did not fill.
const notAvailable = "N/A"

// Weak cipher suites that should not be negotiated (PCI DSS 4.1)
var weakCipherSuites = map[uint16]string{
	tls.TLS_RSA_WITH_RC4_128_SHA:                "TLS_RSA_WITH_RC4_128_SHA",
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:           "TLS_RSA_WITH_3DES_EDE_CBC_SHA",
	tls.TLS_RSA_WITH_AES_128_CBC_SHA:            "TLS_RSA_WITH_AES_128_CBC_SHA",
	tls.TLS_RSA_WITH_AES_256_CBC_SHA:            "TLS_RSA_WITH_AES_256_CBC_SHA",
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA:        "TLS_ECDHE_ECDSA_WITH_RC4_128_SHA",
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA:          "TLS_ECDHE_RSA_WITH_RC4_128_SHA",
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA:     "TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA",
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256: "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256",
}

// IssuerInfo holds the issuer fields shown in the SSL finding.
type IssuerInfo struct {
	Country      string `json:"countryName"`
	Organization string `json:"organizationName"`
	CommonName   string `json:"commonName"`
}

// CertificateInfo is the subset of the peer's leaf certificate and session that the
// SSL check reports. It lives only for the duration of one check.
type CertificateInfo struct {
	SubjectCN          string
	Issuer             IssuerInfo
	NotBefore          time.Time
	NotAfter           time.Time
	CipherSuite        string
	TLSVersion         string
	SignatureAlgorithm string
	PublicKeyAlgorithm string
	KeySize            int
	DNSNames           []string
	SelfSigned         bool
	weakCipher         bool
	legacyProtocol     bool
}

// newCertificateInfo extracts what we report from the handshake state.
func newCertificateInfo(cert *x509.Certificate, state tls.ConnectionState) *CertificateInfo {
	_, weak := weakCipherSuites[state.CipherSuite]
	return &CertificateInfo{
		SubjectCN: orNotAvailable(cert.Subject.CommonName),
		Issuer: IssuerInfo{
			Country:      orNotAvailable(firstOf(cert.Issuer.Country)),
			Organization: orNotAvailable(firstOf(cert.Issuer.Organization)),
			CommonName:   orNotAvailable(cert.Issuer.CommonName),
		},
		NotBefore:          cert.NotBefore.UTC(),
		NotAfter:           cert.NotAfter.UTC(),
		CipherSuite:        cipherSuiteString(state.CipherSuite),
		TLSVersion:         tlsVersionString(state.Version),
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		KeySize:            publicKeyBits(cert.PublicKey),
		DNSNames:           append([]string(nil), cert.DNSNames...),
		SelfSigned:         cert.Subject.String() == cert.Issuer.String(),
		weakCipher:         weak,
		legacyProtocol:     state.Version < tls.VersionTLS12,
	}
}

// DaysUntilExpiry is negative once the certificate has expired.
func (c *CertificateInfo) DaysUntilExpiry(now time.Time) int {
	return int(c.NotAfter.Sub(now).Hours() / 24)
}

// Notes lists observations worth surfacing next to a passing SSL finding.
func (c *CertificateInfo) Notes(now time.Time) []string {
	var notes []string

	switch {
	case now.After(c.NotAfter):
		notes = append(notes, "certificate has expired")
	case c.NotAfter.Sub(now) < constants.TLSSoonExpiryWindow:
		notes = append(notes, fmt.Sprintf("certificate expires in %d days", c.DaysUntilExpiry(now)))
	}
	if now.Before(c.NotBefore) {
		notes = append(notes, "certificate is not yet valid")
	}
	if c.SelfSigned {
		notes = append(notes, "self-signed certificate")
	}
	if c.legacyProtocol {
		notes = append(notes, fmt.Sprintf("legacy protocol negotiated: %s", c.TLSVersion))
	}
	if c.weakCipher {
		notes = append(notes, fmt.Sprintf("weak cipher suite negotiated: %s", c.CipherSuite))
	}

	sigAlg := strings.ToLower(c.SignatureAlgorithm)
	if strings.Contains(sigAlg, "md5") || strings.Contains(sigAlg, "sha1") {
		notes = append(notes, fmt.Sprintf("weak signature algorithm: %s", c.SignatureAlgorithm))
	}
	if c.PublicKeyAlgorithm == "RSA" && c.KeySize > 0 && c.KeySize < 2048 {
		notes = append(notes, fmt.Sprintf("RSA key too small: %d bits", c.KeySize))
	}
	return notes
}

func publicKeyBits(pub any) int {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return key.N.BitLen()
	case *ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return 256
	default:
		return 0
	}
}

// tlsVersionString converts a TLS version constant to a label
func tlsVersionString(version uint16) string {
	switch version {
	case versionSSL30:
		return "SSL 3.0"
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

// cipherSuiteString converts a cipher suite constant to its IANA name
func cipherSuiteString(suite uint16) string {
	if name, ok := weakCipherSuites[suite]; ok {
		return name
	}
	return tls.CipherSuiteName(suite)
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
