package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	sslTimeLayout = "2006-01-02 15:04:05 MST"
	sslAdvice     = "Renew SSL certificates before expiry, and ensure the server supports modern, secure cipher suites."
)

// SSLCheck inspects the certificate presented on the target's TLS endpoint.
type SSLCheck struct {
	inspector CertInspector
	now       func() time.Time
}

func NewSSLCheck(inspector CertInspector) *SSLCheck {
	return &SSLCheck{inspector: inspector, now: time.Now}
}

func (c *SSLCheck) Name() CheckName { return CheckSSL }

func (c *SSLCheck) Run(ctx context.Context, target Target) (Finding, error) {
	host, port := target.TLSEndpoint()
	info, err := c.inspector.Inspect(ctx, host, port)
	if err != nil {
		return Finding{}, err
	}

	issuer, err := json.Marshal(info.Issuer)
	if err != nil {
		return Finding{}, fmt.Errorf("encode issuer: %w", err)
	}

	detail := fmt.Sprintf("Issued to: %s, Issued by: %s, Valid from: %s, Valid until: %s. Cipher: %s",
		info.SubjectCN,
		issuer,
		info.NotBefore.UTC().Format(sslTimeLayout),
		info.NotAfter.UTC().Format(sslTimeLayout),
		info.CipherSuite,
	)

	now := c.now()
	var ev evidence
	ev.add("subject_cn", info.SubjectCN)
	ev.add("issuer_country", info.Issuer.Country)
	ev.add("issuer_organization", info.Issuer.Organization)
	ev.add("issuer_common_name", info.Issuer.CommonName)
	ev.add("valid_from", info.NotBefore.UTC().Format(sslTimeLayout))
	ev.add("valid_until", info.NotAfter.UTC().Format(sslTimeLayout))
	ev.add("days_until_expiry", strconv.Itoa(info.DaysUntilExpiry(now)))
	ev.add("cipher_suite", info.CipherSuite)
	ev.add("tls_version", info.TLSVersion)
	ev.add("signature_algorithm", info.SignatureAlgorithm)
	ev.add("public_key_algorithm", info.PublicKeyAlgorithm)
	ev.add("key_size", strconv.Itoa(info.KeySize))
	if len(info.DNSNames) > 0 {
		ev.add("dns_names", strings.Join(info.DNSNames, ", "))
	}
	ev.add("self_signed", strconv.FormatBool(info.SelfSigned))
	for _, note := range info.Notes(now) {
		ev.add("note", note)
	}
	ev.add("advice", sslAdvice)

	return passFinding(CheckSSL, detail, ev), nil
}
