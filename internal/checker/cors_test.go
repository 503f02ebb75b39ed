package checker

import (
	"net/http"
	"strings"
	"testing"
)

func TestAssessCORS_AllowsAnyOrigin(t *testing.T) {
	policy := AssessCORS(NewHeaders(http.Header{
		"Access-Control-Allow-Origin":      []string{"*"},
		"Access-Control-Allow-Credentials": []string{"true"},
	}))

	if !policy.Enabled() {
		t.Fatal("expected CORS to be enabled")
	}
	if !policy.AllowCredentials {
		t.Error("expected AllowCredentials to be true")
	}
	issues := strings.Join(policy.Issues, "\n")
	if !strings.Contains(issues, "any origin") || !strings.Contains(issues, "wildcard origin") {
		t.Errorf("unexpected issues: %v", policy.Issues)
	}
}

func TestAssessCORS_Missing(t *testing.T) {
	policy := AssessCORS(NewHeaders(http.Header{}))
	if policy.Enabled() {
		t.Fatal("expected CORS to be disabled")
	}
	if len(policy.Issues) != 0 {
		t.Errorf("expected no issues without CORS, got %v", policy.Issues)
	}
}

func TestAssessCORS_ReflectedOrigin(t *testing.T) {
	policy := AssessCORS(NewHeaders(http.Header{
		"Access-Control-Allow-Origin":      []string{corsProbeOrigin},
		"Access-Control-Allow-Credentials": []string{"true"},
	}))
	issues := strings.Join(policy.Issues, "\n")
	if !strings.Contains(issues, "reflected") {
		t.Errorf("expected reflected origin issue, got %v", policy.Issues)
	}
	if !strings.Contains(issues, "Vary: Origin") {
		t.Errorf("expected Vary issue, got %v", policy.Issues)
	}
}

func TestAssessCORS_NoIssues(t *testing.T) {
	policy := AssessCORS(NewHeaders(http.Header{
		"Access-Control-Allow-Origin": []string{"https://app.example.org"},
		"Vary":                        []string{"Accept-Encoding, Origin"},
	}))
	if len(policy.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", policy.Issues)
	}
}
