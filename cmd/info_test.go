package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfoCommand(t *testing.T) {
	a := newTestApp(t, nil)
	code, stdout, _ := runCLI(t, a, "info")
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	expectedSections := []string{
		"seca-scan System Information",
		"Platform:",
		"Configuration File:",
		"(using defaults)",
		"Log File:           stderr only",
		"Scan Settings:",
		"Max Redirects:    5",
		"Serve Settings:",
		"Address:          127.0.0.1:8080",
	}
	for _, section := range expectedSections {
		if !strings.Contains(stdout, section) {
			t.Fatalf("expected output to contain %q, got:\n%s", section, stdout)
		}
	}
}

func TestInfoCommandWithConfigFile(t *testing.T) {
	a := newTestApp(t, nil)
	home := os.Getenv("HOME")
	cfgPath := filepath.Join(home, configBaseName+".yaml")
	if err := os.WriteFile(cfgPath, []byte("serve:\n  addr: 0.0.0.0:9999\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	code, stdout, _ := runCLI(t, a, "info")
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout, cfgPath+" ✓ (loaded)") {
		t.Fatalf("expected loaded config file, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "0.0.0.0:9999") {
		t.Fatalf("expected configured address, got:\n%s", stdout)
	}
}
