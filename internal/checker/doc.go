// Package checker implements the passive scan engine.
//
// Architecture overview:
//
//   - ParseTarget validates the single URL under test into an immutable Target.
//   - ProbeClient issues verified HTTP(S) requests with a bounded redirect chain,
//     a fixed User-Agent and optional pacing. CertificateInspector opens a raw TLS
//     connection, with verification disabled, only to read the peer certificate.
//   - Document wraps golang.org/x/net/html and goquery for CSS selector lookups.
//   - Each Check (HTTPS, HSTS, CSRF, CORS, Form Validation, Security Headers,
//     XSS Protection, SSL) returns a Finding or a typed error.
//   - Scanner fans the checks out with errgroup, turns errors and panics into
//     error findings and assembles a Report in fixed check order.
//
// Nothing here keeps state between scans.
package checker
