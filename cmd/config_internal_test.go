package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-redirects", 0, "")

	var applied int
	applyIntDefault(flags, "max-redirects", 15, func(v int) {
		applied = v
	})
	if applied != 15 {
		t.Fatalf("expected setter to receive 15, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("max-redirects", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "max-redirects", 20, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyBoolDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("progress", false, "")

	applied := false
	applyBoolDefault(flags, "progress", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatal("expected setter to run with true")
	}

	if err := flags.Set("progress", "false"); err != nil {
		t.Fatalf("failed to set bool flag: %v", err)
	}
	applied = true
	applyBoolDefault(flags, "progress", false, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatalf("setter should not change value when flag already set")
	}
}

func TestApplyStringDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")

	got := ""
	applyStringDefault(flags, "format", "json", func(s string) { got = s })
	if got != "json" {
		t.Fatalf("expected json, got %q", got)
	}

	if err := flags.Set("format", "yaml"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	got = ""
	applyStringDefault(flags, "format", "md", func(s string) { got = s })
	if got != "" {
		t.Fatalf("setter should not run when flag overridden, got %q", got)
	}

	// nil flag sets are ignored
	applyStringDefault(nil, "format", "md", func(s string) { got = s })
	if got != "" {
		t.Fatalf("expected no change for nil flags, got %q", got)
	}
}

func TestParseDurationSetting(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "10s", want: 10 * time.Second},
		{raw: "1m30s", want: 90 * time.Second},
		{raw: "15", want: 15 * time.Second},
		{raw: " 2m ", want: 2 * time.Minute},
		{raw: "soon", want: 0},
		{raw: "", want: 0},
	}
	for _, tt := range tests {
		if got := parseDurationSetting(tt.raw); got != tt.want {
			t.Fatalf("parseDurationSetting(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	v := viper.New()
	v.Set("scan.timeout", "12s")
	v.Set("scan.tls_timeout", 7)
	v.Set("scan.max_redirects", 2)
	v.Set("scan.format", "json")
	v.Set("scan.rate_limit", 1.5)
	v.Set("serve.addr", "0.0.0.0:9000")
	v.Set("serve.metrics", false)
	v.Set("log.level", "debug")
	v.Set("log.max_backups", 9)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")
	flags.Duration("timeout", 0, "")
	if err := flags.Set("format", "yaml"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	cfg := newCLIConfig()
	cfg.Scan.Format = "yaml"
	applyConfigDefaults(v, flags, cfg)

	if cfg.Scan.Timeout != 12*time.Second {
		t.Fatalf("expected timeout 12s, got %v", cfg.Scan.Timeout)
	}
	if cfg.Scan.TLSTimeout != 7*time.Second {
		t.Fatalf("expected integer seconds for tls timeout, got %v", cfg.Scan.TLSTimeout)
	}
	if cfg.Scan.MaxRedirects != 2 {
		t.Fatalf("expected max redirects 2, got %d", cfg.Scan.MaxRedirects)
	}
	if cfg.Scan.Format != "yaml" {
		t.Fatalf("explicit flag must win over config, got %q", cfg.Scan.Format)
	}
	if cfg.Scan.RateLimit != 1.5 {
		t.Fatalf("expected rate limit 1.5, got %v", cfg.Scan.RateLimit)
	}
	if cfg.Serve.Addr != "0.0.0.0:9000" || cfg.Serve.Metrics {
		t.Fatalf("unexpected serve config %+v", cfg.Serve)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 9 {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestCLIConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
	}{
		{name: "zero timeout", mutate: func(c *CLIConfig) { c.Scan.Timeout = 0 }},
		{name: "zero tls timeout", mutate: func(c *CLIConfig) { c.Scan.TLSTimeout = 0 }},
		{name: "zero check timeout", mutate: func(c *CLIConfig) { c.Scan.CheckTimeout = 0 }},
		{name: "negative redirects", mutate: func(c *CLIConfig) { c.Scan.MaxRedirects = -1 }},
		{name: "negative scan rate", mutate: func(c *CLIConfig) { c.Scan.RateLimit = -1 }},
		{name: "negative serve rate", mutate: func(c *CLIConfig) { c.Serve.RateLimit = -1 }},
		{name: "unknown format", mutate: func(c *CLIConfig) { c.Scan.Format = "docx" }},
		{name: "short csrf key", mutate: func(c *CLIConfig) { c.Serve.CSRFKey = "abcd" }},
	}

	if err := newCLIConfig().validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newCLIConfig()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestServeConfigCSRFKeyBytes(t *testing.T) {
	cfg := ServeConfig{}
	key, err := cfg.CSRFKeyBytes()
	if err != nil || key != nil {
		t.Fatalf("expected nil key for empty config, got %v, %v", key, err)
	}

	cfg.CSRFKey = strings.Repeat("ab", 32)
	key, err = cfg.CSRFKeyBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(key))
	}

	cfg.CSRFKey = strings.Repeat("zz", 32)
	if _, err := cfg.CSRFKeyBytes(); !errors.Is(err, sharedErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScanConfigClientConfig(t *testing.T) {
	cfg := newCLIConfig().Scan
	cfg.MaxRedirects = 0
	cfg.UserAgent = "probe/1.0"

	cc := cfg.ClientConfig()
	if cc.MaxRedirects != 0 || cc.UserAgent != "probe/1.0" || cc.Timeout != cfg.Timeout {
		t.Fatalf("unexpected client config %+v", cc)
	}
}

func TestConfigFileAndEnvironment(t *testing.T) {
	a := newTestApp(t, stubChecks(nil))
	cfgPath := filepath.Join(t.TempDir(), "seca.yaml")
	content := "scan:\n  format: json\n  timeout: 9s\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SECA_SCAN_MAX_REDIRECTS", "1")

	code, stdout, stderr := runCLI(t, a, "--config", cfgPath, "scan", "https://example.com")
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if a.config.Scan.Format != "json" || a.config.Scan.Timeout != 9*time.Second {
		t.Fatalf("config file not applied: %+v", a.config.Scan)
	}
	if a.config.Scan.MaxRedirects != 1 {
		t.Fatalf("environment not applied, max redirects = %d", a.config.Scan.MaxRedirects)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Fatalf("expected JSON output, got %q", stdout)
	}
}

func TestMissingExplicitConfigFile(t *testing.T) {
	a := newTestApp(t, stubChecks(nil))
	code, _, stderr := runCLI(t, a, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	if code != ExitUsage {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "failed to read config") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}
