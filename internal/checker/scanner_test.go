package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fakeCheck struct {
	name CheckName
	run  func(ctx context.Context, target Target) (Finding, error)
}

func (f fakeCheck) Name() CheckName { return f.name }

func (f fakeCheck) Run(ctx context.Context, target Target) (Finding, error) {
	return f.run(ctx, target)
}

func passingCheck(name CheckName, delay time.Duration) fakeCheck {
	return fakeCheck{name: name, run: func(ctx context.Context, _ Target) (Finding, error) {
		time.Sleep(delay)
		return passFinding(name, string(name)+" ok", nil), nil
	}}
}

func TestScanner_PreservesOrder(t *testing.T) {
	names := CheckNames()
	checks := make([]Check, len(names))
	for i, name := range names {
		// later checks finish first
		checks[i] = passingCheck(name, time.Duration(len(names)-i)*5*time.Millisecond)
	}

	report := NewScanner(checks, WithLogger(zaptest.NewLogger(t))).Scan(context.Background(), mustTarget(t, "https://example.com"))

	if len(report.Findings) != len(names) {
		t.Fatalf("expected %d findings, got %d", len(names), len(report.Findings))
	}
	for i, f := range report.Findings {
		if f.Name != names[i] {
			t.Errorf("finding %d = %s, want %s", i, f.Name, names[i])
		}
	}
	if report.Target != "https://example.com/" {
		t.Errorf("Target = %q", report.Target)
	}
	if report.CompletedAt.Before(report.StartedAt) {
		t.Error("CompletedAt before StartedAt")
	}
	if report.Counts().Pass != len(names) {
		t.Errorf("Counts = %+v", report.Counts())
	}
}

func TestScanner_ErrorsAndPanicsAreContained(t *testing.T) {
	checks := []Check{
		passingCheck(CheckHTTPS, 0),
		fakeCheck{name: CheckHSTS, run: func(context.Context, Target) (Finding, error) {
			return Finding{}, &NetworkError{Op: "GET", URL: "https://example.com/", Err: errors.New("connection refused")}
		}},
		fakeCheck{name: CheckCSRF, run: func(context.Context, Target) (Finding, error) {
			panic("markup exploded")
		}},
		fakeCheck{name: CheckCORS, run: func(context.Context, Target) (Finding, error) {
			return Finding{}, errors.New("plain failure")
		}},
		passingCheck(CheckSSL, 0),
	}

	report := NewScanner(checks).Scan(context.Background(), mustTarget(t, "https://example.com"))
	if len(report.Findings) != len(checks) {
		t.Fatalf("expected %d findings, got %d", len(checks), len(report.Findings))
	}

	hsts, _ := report.Finding(CheckHSTS)
	if hsts.Status != StatusError {
		t.Errorf("HSTS status = %s", hsts.Status)
	}
	if !strings.HasPrefix(hsts.Detail, "Error checking HSTS: ") || !strings.Contains(hsts.Detail, "connection refused") {
		t.Errorf("HSTS detail = %q", hsts.Detail)
	}
	if hsts.Remediation != "" {
		t.Errorf("error finding must not carry remediation, got %q", hsts.Remediation)
	}
	if kind, _ := hsts.EvidenceValue("error_kind"); kind != string(ErrorKindNetwork) {
		t.Errorf("error_kind = %q", kind)
	}

	csrf, _ := report.Finding(CheckCSRF)
	if csrf.Status != StatusError || !strings.Contains(csrf.Detail, "markup exploded") {
		t.Errorf("CSRF = %s %q", csrf.Status, csrf.Detail)
	}

	cors, _ := report.Finding(CheckCORS)
	if kind, _ := cors.EvidenceValue("error_kind"); kind != string(ErrorKindInternal) {
		t.Errorf("error_kind = %q", kind)
	}

	ssl, _ := report.Finding(CheckSSL)
	if ssl.Status != StatusPass {
		t.Errorf("SSL status = %s, other checks must not be affected", ssl.Status)
	}
	if !report.HasErrors() || report.HasFailures() {
		t.Errorf("HasErrors=%v HasFailures=%v", report.HasErrors(), report.HasFailures())
	}
}

func TestScanner_PerCheckTimeout(t *testing.T) {
	slow := fakeCheck{name: CheckCORS, run: func(ctx context.Context, _ Target) (Finding, error) {
		<-ctx.Done()
		return Finding{}, &NetworkError{Op: "OPTIONS", URL: "https://example.com/", Err: ctx.Err()}
	}}
	scanner := NewScanner([]Check{slow, passingCheck(CheckSSL, 0)}, WithCheckTimeout(20*time.Millisecond))

	start := time.Now()
	report := scanner.Scan(context.Background(), mustTarget(t, "https://example.com"))
	if time.Since(start) > 2*time.Second {
		t.Fatal("scan did not honour the check timeout")
	}

	f, _ := report.Finding(CheckCORS)
	if f.Status != StatusError {
		t.Errorf("status = %s", f.Status)
	}
	if kind, _ := f.EvidenceValue("error_kind"); kind != string(ErrorKindNetwork) {
		t.Errorf("error_kind = %q", kind)
	}
	if ssl, _ := report.Finding(CheckSSL); ssl.Status != StatusPass {
		t.Errorf("SSL status = %s", ssl.Status)
	}
}

func TestScanner_NormalizesFindings(t *testing.T) {
	sloppy := fakeCheck{name: CheckHTTPS, run: func(context.Context, Target) (Finding, error) {
		return Finding{Name: "wrong", Status: StatusPass, Detail: "ok", Remediation: "should vanish"}, nil
	}}
	report := NewScanner([]Check{sloppy}).Scan(context.Background(), mustTarget(t, "https://example.com"))

	f := report.Findings[0]
	if f.Name != CheckHTTPS {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Remediation != "" {
		t.Errorf("pass remediation = %q", f.Remediation)
	}
	if f.Duration <= 0 {
		t.Errorf("duration not recorded: %v", f.Duration)
	}
}

func TestScanner_Observer(t *testing.T) {
	var mu sync.Mutex
	seen := map[CheckName]Status{}
	observer := func(f Finding) {
		mu.Lock()
		defer mu.Unlock()
		seen[f.Name] = f.Status
	}

	checks := []Check{passingCheck(CheckHTTPS, 0), passingCheck(CheckHSTS, 0)}
	NewScanner(checks, WithObserver(observer)).Scan(context.Background(), mustTarget(t, "https://example.com"))

	if len(seen) != 2 || seen[CheckHTTPS] != StatusPass {
		t.Errorf("observer saw %v", seen)
	}
}

func TestScanner_DefaultChecksAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			return
		}
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<form method="post"><input type="hidden" name="csrf_token" value="x"><input name="email" type="email" required></form>`))
	}))
	defer server.Close()

	inspector := &stubInspector{err: &TLSError{Op: "handshake", Addr: "127.0.0.1:443", Err: errors.New("connection refused")}}
	fetcher := fetchFunc(func(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
		if strings.HasPrefix(rawURL, "https://") {
			return nil, &NetworkError{Op: method, URL: rawURL, Err: errors.New("no tls listener")}
		}
		return NewProbeClient(DefaultClientConfig()).Fetch(ctx, method, rawURL, headers)
	})

	scanner := NewScanner(DefaultChecks(fetcher, inspector), WithLogger(zaptest.NewLogger(t)))
	report := scanner.Scan(context.Background(), mustTarget(t, server.URL))

	want := map[CheckName]Status{
		CheckHTTPS:           StatusFail,
		CheckHSTS:            StatusFail,
		CheckCSRF:            StatusPass,
		CheckCORS:            StatusPass,
		CheckFormValidation:  StatusPass,
		CheckSecurityHeaders: StatusFail,
		CheckXSSProtection:   StatusFail,
		CheckSSL:             StatusError,
	}
	if len(report.Findings) != len(CheckNames()) {
		t.Fatalf("expected %d findings, got %d", len(CheckNames()), len(report.Findings))
	}
	for i, f := range report.Findings {
		if f.Name != CheckNames()[i] {
			t.Errorf("finding %d = %s", i, f.Name)
		}
		if f.Status != want[f.Name] {
			t.Errorf("%s status = %s, want %s (%s)", f.Name, f.Status, want[f.Name], f.Detail)
		}
	}

	https, _ := report.Finding(CheckHTTPS)
	if https.Detail != httpsUnavailableDetail {
		t.Errorf("HTTPS detail = %q", https.Detail)
	}
	ssl, _ := report.Finding(CheckSSL)
	if kind, _ := ssl.EvidenceValue("error_kind"); kind != string(ErrorKindTLS) {
		t.Errorf("SSL error_kind = %q", kind)
	}
}

func TestCheckName_Slug(t *testing.T) {
	if got := CheckFormValidation.Slug(); got != "form_validation" {
		t.Errorf("Slug() = %q", got)
	}
	if got := CheckSSL.Slug(); got != "ssl" {
		t.Errorf("Slug() = %q", got)
	}
}
