package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

func TestBuildServerRoutes(t *testing.T) {
	a := newTestApp(t, stubChecks(nil))
	a.logger = zap.NewNop().Sugar()

	handler, closeFn, err := a.buildServer()
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer closeFn()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out strings.Builder
	go func() {
		done <- a.serveUntilDone(ctx, &out, ln, handler)
	}()

	base := fmt.Sprintf("http://%s", ln.Addr())
	for _, path := range []string{"/healthz", "/metrics", "/"} {
		resp, err := http.Get(base + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, resp.StatusCode, body)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if !strings.Contains(out.String(), "Server shutdown complete") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestBuildServerWithoutMetrics(t *testing.T) {
	a := newTestApp(t, stubChecks(nil))
	a.config.Serve.Metrics = false

	handler, closeFn, err := a.buildServer()
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer closeFn()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = a.serveUntilDone(ctx, io.Discard, ln, handler)
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", ln.Addr()))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", resp.StatusCode)
	}
}

func TestBuildServerRejectsBadKey(t *testing.T) {
	a := newTestApp(t, stubChecks(nil))
	a.config.Serve.CSRFKey = "not-hex"
	if _, _, err := a.buildServer(); err == nil {
		t.Fatal("expected invalid key error")
	}
}

func TestServeCommandListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	a := newTestApp(t, stubChecks(nil))
	code, _, stderr := runCLI(t, a, "serve", "--addr", ln.Addr().String())
	if code != ExitUsage {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "failed to listen") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestBuildServerScannerPerRequest(t *testing.T) {
	a := newTestApp(t, nil)
	built := 0
	a.newScanner = func(_ ScanConfig, opts ...checker.ScannerOption) *checker.Scanner {
		built++
		return checker.NewScanner(stubChecks(nil), opts...)
	}

	_, closeFn, err := a.buildServer()
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer closeFn()
	if built != 0 {
		t.Fatalf("expected no scanner before the first scan, got %d", built)
	}

	scan := scanPerRequest(func() *checker.Scanner { return a.newScanner(a.config.Scan) })
	target, err := checker.ParseTarget("https://example.com")
	if err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}
	for i := 0; i < 2; i++ {
		if rep := scan.Scan(context.Background(), target); len(rep.Findings) != len(checker.CheckNames()) {
			t.Fatalf("expected %d findings, got %d", len(checker.CheckNames()), len(rep.Findings))
		}
	}
	if built != 2 {
		t.Fatalf("expected one scanner per scan, got %d", built)
	}
}

func TestResponseWriteTimeout(t *testing.T) {
	tests := []struct {
		name  string
		scan  time.Duration
		check time.Duration
		want  time.Duration
	}{
		{"scan timeout set", 2 * time.Minute, 45 * time.Second, 150 * time.Second},
		{"no scan timeout", 0, 45 * time.Second, 75 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := responseWriteTimeout(tt.scan, tt.check)
			if got != tt.want {
				t.Fatalf("responseWriteTimeout(%s, %s) = %s, want %s", tt.scan, tt.check, got, tt.want)
			}
			if got <= tt.check {
				t.Fatalf("write timeout %s does not cover a check of %s", got, tt.check)
			}
		})
	}
}
