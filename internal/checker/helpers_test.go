package checker

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
)

// fetchFunc adapts a function to the Fetcher interface.
type fetchFunc func(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error)

func (f fetchFunc) Fetch(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
	return f(ctx, method, rawURL, headers)
}

type fetchCall struct {
	method  string
	url     string
	headers map[string]string
}

// recordingFetcher serves one canned response and remembers every call.
type recordingFetcher struct {
	mu    sync.Mutex
	calls []fetchCall
	resp  *Response
	err   error
}

func (r *recordingFetcher) Fetch(_ context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
	r.mu.Lock()
	r.calls = append(r.calls, fetchCall{method: method, url: rawURL, headers: headers})
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

func (r *recordingFetcher) lastCall(t *testing.T) fetchCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("expected at least one fetch")
	}
	return r.calls[len(r.calls)-1]
}

func pageResponse(body string, header http.Header) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{StatusCode: http.StatusOK, Headers: NewHeaders(header), Body: []byte(body)}
}

func mustTarget(t *testing.T, raw string) Target {
	t.Helper()
	target, err := ParseTarget(raw)
	if err != nil {
		t.Fatalf("ParseTarget(%q) error: %v", raw, err)
	}
	return target
}

// closedAddr returns a loopback address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}
	return addr
}

// stubInspector returns a fixed certificate or error.
type stubInspector struct {
	info *CertificateInfo
	err  error
	host string
	port string
}

func (s *stubInspector) Inspect(_ context.Context, host, port string) (*CertificateInfo, error) {
	s.host, s.port = host, port
	return s.info, s.err
}
