package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/report"
	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// CLIConfig captures runtime configuration shared across commands. Flags write
// into it directly; config file and environment values fill whatever the user
// did not set on the command line.
type CLIConfig struct {
	Scan  ScanConfig
	Serve ServeConfig
	Log   LogConfig
}

// ScanConfig drives the probe client and the scan command output.
type ScanConfig struct {
	Timeout        time.Duration
	TLSTimeout     time.Duration
	CheckTimeout   time.Duration
	MaxRedirects   int
	UserAgent      string
	RateLimit      float64
	MaxBodyBytes   int64
	Format         string
	Output         string
	OutputDir      string
	Evidence       bool
	FailOnFindings bool
	Progress       bool
}

// ServeConfig drives the web form server.
type ServeConfig struct {
	Addr            string
	CSRFKey         string // 64 hex characters
	SecureCookie    bool
	ShutdownTimeout time.Duration
	ScanTimeout     time.Duration
	RateLimit       int
	RateBurst       int
	TrustProxy      bool
	Metrics         bool
}

// LogConfig selects log level and optional rotated file output.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanConfig{
			Timeout:      constants.DefaultProbeTimeout,
			TLSTimeout:   constants.DefaultTLSTimeout,
			CheckTimeout: constants.DefaultCheckTimeout,
			MaxRedirects: constants.DefaultMaxRedirects,
			UserAgent:    constants.DefaultUserAgent,
			MaxBodyBytes: constants.DefaultMaxBodyBytes,
			Format:       string(report.FormatText),
		},
		Serve: ServeConfig{
			Addr:            constants.DefaultServeAddr,
			ShutdownTimeout: constants.DefaultShutdownTimeout,
			ScanTimeout:     constants.DefaultScanRequestTimeout,
			RateLimit:       constants.DefaultServeRateLimit,
			RateBurst:       constants.DefaultServeRateBurst,
			Metrics:         true,
		},
		Log: LogConfig{
			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
			MaxAgeDays: constants.DefaultLogMaxAgeDays,
		},
	}
}

// ClientConfig freezes the probe settings for one scan.
func (c ScanConfig) ClientConfig() checker.ClientConfig {
	return checker.ClientConfig{
		Timeout:      c.Timeout,
		MaxRedirects: c.MaxRedirects,
		UserAgent:    c.UserAgent,
		MaxBodyBytes: c.MaxBodyBytes,
		RateLimit:    c.RateLimit,
	}
}

// CSRFKeyBytes decodes the configured key; nil means a per-process random key.
func (c ServeConfig) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimSpace(c.CSRFKey))
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: serve.csrf_key must be 64 hex characters", sharedErrors.ErrInvalidInput)
	}
	return key, nil
}

func (c *CLIConfig) validate() error {
	switch {
	case c.Scan.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", sharedErrors.ErrInvalidInput)
	case c.Scan.TLSTimeout <= 0:
		return fmt.Errorf("%w: tls timeout must be positive", sharedErrors.ErrInvalidInput)
	case c.Scan.CheckTimeout <= 0:
		return fmt.Errorf("%w: check timeout must be positive", sharedErrors.ErrInvalidInput)
	case c.Scan.MaxRedirects < 0:
		return fmt.Errorf("%w: max-redirects cannot be negative", sharedErrors.ErrInvalidInput)
	case c.Scan.RateLimit < 0:
		return fmt.Errorf("%w: scan rate limit cannot be negative", sharedErrors.ErrInvalidInput)
	case c.Serve.RateLimit < 0 || c.Serve.RateBurst < 0:
		return fmt.Errorf("%w: rate limits cannot be negative", sharedErrors.ErrInvalidInput)
	}
	if _, err := report.ParseFormat(c.Scan.Format); err != nil {
		return err
	}
	if _, err := c.Serve.CSRFKeyBytes(); err != nil {
		return err
	}
	return nil
}

// applyConfigDefaults merges config file and environment values into cfg for
// every setting whose flag was not explicitly given.
func applyConfigDefaults(v *viper.Viper, flags *pflag.FlagSet, cfg *CLIConfig) {
	// scan
	applyDurationDefault(v, flags, "scan.timeout", "timeout", func(d time.Duration) { cfg.Scan.Timeout = d })
	applyDurationDefault(v, flags, "scan.tls_timeout", "tls-timeout", func(d time.Duration) { cfg.Scan.TLSTimeout = d })
	applyDurationDefault(v, flags, "scan.check_timeout", "check-timeout", func(d time.Duration) { cfg.Scan.CheckTimeout = d })
	if v.IsSet("scan.max_redirects") {
		applyIntDefault(flags, "max-redirects", v.GetInt("scan.max_redirects"), func(n int) { cfg.Scan.MaxRedirects = n })
	}
	if v.IsSet("scan.user_agent") {
		applyStringDefault(flags, "user-agent", v.GetString("scan.user_agent"), func(s string) { cfg.Scan.UserAgent = s })
	}
	if v.IsSet("scan.rate_limit") {
		cfg.Scan.RateLimit = v.GetFloat64("scan.rate_limit")
	}
	if v.IsSet("scan.max_body_bytes") {
		cfg.Scan.MaxBodyBytes = v.GetInt64("scan.max_body_bytes")
	}
	if v.IsSet("scan.format") {
		applyStringDefault(flags, "format", v.GetString("scan.format"), func(s string) { cfg.Scan.Format = s })
	}
	if v.IsSet("scan.output_dir") {
		applyStringDefault(flags, "output-dir", v.GetString("scan.output_dir"), func(s string) { cfg.Scan.OutputDir = s })
	}
	if v.IsSet("scan.progress") {
		applyBoolDefault(flags, "progress", v.GetBool("scan.progress"), func(b bool) { cfg.Scan.Progress = b })
	}

	// serve
	if v.IsSet("serve.addr") {
		applyStringDefault(flags, "addr", v.GetString("serve.addr"), func(s string) { cfg.Serve.Addr = s })
	}
	if v.IsSet("serve.csrf_key") {
		cfg.Serve.CSRFKey = v.GetString("serve.csrf_key")
	}
	if v.IsSet("serve.secure_cookie") {
		applyBoolDefault(flags, "secure-cookie", v.GetBool("serve.secure_cookie"), func(b bool) { cfg.Serve.SecureCookie = b })
	}
	applyDurationDefault(v, flags, "serve.shutdown_timeout", "shutdown-timeout", func(d time.Duration) { cfg.Serve.ShutdownTimeout = d })
	applyDurationDefault(v, flags, "serve.scan_timeout", "scan-timeout", func(d time.Duration) { cfg.Serve.ScanTimeout = d })
	if v.IsSet("serve.rate_limit") {
		applyIntDefault(flags, "rate-limit", v.GetInt("serve.rate_limit"), func(n int) { cfg.Serve.RateLimit = n })
	}
	if v.IsSet("serve.rate_burst") {
		applyIntDefault(flags, "rate-burst", v.GetInt("serve.rate_burst"), func(n int) { cfg.Serve.RateBurst = n })
	}
	if v.IsSet("serve.trust_proxy") {
		applyBoolDefault(flags, "trust-proxy", v.GetBool("serve.trust_proxy"), func(b bool) { cfg.Serve.TrustProxy = b })
	}
	if v.IsSet("serve.metrics") {
		applyBoolDefault(flags, "metrics", v.GetBool("serve.metrics"), func(b bool) { cfg.Serve.Metrics = b })
	}

	// log
	if v.IsSet("log.level") {
		applyStringDefault(flags, "log-level", v.GetString("log.level"), func(s string) { cfg.Log.Level = s })
	}
	if v.IsSet("log.file") {
		applyStringDefault(flags, "log-file", v.GetString("log.file"), func(s string) { cfg.Log.File = s })
	}
	if v.IsSet("log.max_size_mb") {
		cfg.Log.MaxSizeMB = v.GetInt("log.max_size_mb")
	}
	if v.IsSet("log.max_backups") {
		cfg.Log.MaxBackups = v.GetInt("log.max_backups")
	}
	if v.IsSet("log.max_age_days") {
		cfg.Log.MaxAgeDays = v.GetInt("log.max_age_days")
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

// applyDurationDefault accepts "30s"-style strings or plain integers as seconds.
func applyDurationDefault(v *viper.Viper, flags *pflag.FlagSet, key, name string, setter func(time.Duration)) {
	if !v.IsSet(key) || flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(parseDurationSetting(v.GetString(key)))
}

func parseDurationSetting(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	// rejected by validate
	return 0
}
