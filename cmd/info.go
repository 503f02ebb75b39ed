package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show configuration and platform information",
		Long: `Display seca-scan configuration information including:
  - Configuration file in use
  - Effective scan and serve settings
  - Log destination
  - Platform information`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			out := cmd.OutOrStdout()

			configFile := a.v.ConfigFileUsed()
			configStatus := "✓ (loaded)"
			if configFile == "" {
				configStatus = "✗ (using defaults)"
				if home, err := os.UserHomeDir(); err == nil {
					configFile = filepath.Join(home, configBaseName+".yaml")
				}
			}

			logFile := cfg.Log.File
			if logFile == "" {
				logFile = "stderr only"
			}

			fmt.Fprintln(out, "seca-scan System Information")
			fmt.Fprintln(out, "============================")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Version:            %s\n", Version)
			fmt.Fprintf(out, "Platform:           %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
			fmt.Fprintf(out, "Configuration File: %s %s\n", configFile, configStatus)
			fmt.Fprintf(out, "Log File:           %s\n", logFile)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Scan Settings:")
			fmt.Fprintf(out, "  Timeout:          %s\n", cfg.Scan.Timeout)
			fmt.Fprintf(out, "  TLS Timeout:      %s\n", cfg.Scan.TLSTimeout)
			fmt.Fprintf(out, "  Check Timeout:    %s\n", cfg.Scan.CheckTimeout)
			fmt.Fprintf(out, "  Max Redirects:    %d\n", cfg.Scan.MaxRedirects)
			fmt.Fprintf(out, "  Max Body Bytes:   %d\n", cfg.Scan.MaxBodyBytes)
			fmt.Fprintf(out, "  Default Format:   %s\n", cfg.Scan.Format)
			fmt.Fprintf(out, "  User-Agent:       %s\n", cfg.Scan.UserAgent)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Serve Settings:")
			fmt.Fprintf(out, "  Address:          %s\n", cfg.Serve.Addr)
			fmt.Fprintf(out, "  Rate Limit:       %d/s (burst %d)\n", cfg.Serve.RateLimit, cfg.Serve.RateBurst)
			fmt.Fprintf(out, "  Scan Timeout:     %s\n", cfg.Serve.ScanTimeout)
			fmt.Fprintf(out, "  Metrics:          %t\n", cfg.Serve.Metrics)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Settings can be overridden in the config file or with SECA_* variables,")
			fmt.Fprintln(out, "for example SECA_SCAN_TIMEOUT=10s or:")
			fmt.Fprintln(out, "  scan:")
			fmt.Fprintln(out, "    timeout: 10s")
			fmt.Fprintln(out, "    format: json")

			return nil
		},
	}
}
