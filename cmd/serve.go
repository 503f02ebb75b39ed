package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/seca-scan/internal/api"
	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	cfg := &a.config.Serve
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form for scanning URLs from a browser",
		Long: `Serve a small web application: GET / shows a URL form and
POST /check-url runs a scan and renders the HTML report.
/healthz reports liveness and /metrics exposes Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	flags := serveCmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address for the web server")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	flags.DurationVar(&cfg.ScanTimeout, "scan-timeout", cfg.ScanTimeout, "upper bound for one scan submitted through the form")
	flags.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "rate limit per IP (requests/second, 0 = disabled)")
	flags.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "rate limit burst size")
	flags.BoolVar(&cfg.SecureCookie, "secure-cookie", false, "mark the CSRF cookie Secure (behind TLS)")
	flags.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "take client IPs from X-Forwarded-For")
	flags.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "expose Prometheus metrics on /metrics")

	return serveCmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	handler, closeServer, err := a.buildServer()
	if err != nil {
		return err
	}
	defer closeServer()

	ln, err := net.Listen("tcp", a.config.Serve.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Serve.Addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.serveUntilDone(ctx, cmd.OutOrStdout(), ln, handler)
}

// buildServer wires scanner, metrics and the HTTP handler from the serve config.
func (a *app) buildServer() (http.Handler, func(), error) {
	cfg := a.config.Serve

	key, err := cfg.CSRFKeyBytes()
	if err != nil {
		return nil, nil, err
	}

	var recorder *metrics.Recorder
	opts := []checker.ScannerOption{
		checker.WithLogger(a.logger.Desugar()),
		checker.WithCheckTimeout(a.config.Scan.CheckTimeout),
	}
	if cfg.Metrics {
		recorder = metrics.NewRecorder()
		opts = append(opts, checker.WithObserver(recorder.Observer()))
	}

	scanCfg := a.config.Scan
	server, err := api.NewServer(api.Config{
		Scanner: scanPerRequest(func() *checker.Scanner {
			return a.newScanner(scanCfg, opts...)
		}),
		Metrics:      recorder,
		Logger:       a.logger.Desugar(),
		CSRFKey:      key,
		SecureCookie: cfg.SecureCookie,
		ScanTimeout:  cfg.ScanTimeout,
		TrustProxy:   cfg.TrustProxy,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	})
	if err != nil {
		return nil, nil, err
	}
	if key == nil {
		a.logger.Warnw("no serve.csrf_key configured, form sessions will not survive a restart")
	}
	return server, server.Close, nil
}

// scanPerRequest builds a fresh scanner for every form submission, so each
// scan has its own probe client and request rate limit.
type scanPerRequest func() *checker.Scanner

func (f scanPerRequest) Scan(ctx context.Context, target checker.Target) *checker.Report {
	return f().Scan(ctx, target)
}

// responseWriteTimeout covers a whole scan plus rendering. Without a scan
// timeout a scan is bounded by the per-check timeout.
func responseWriteTimeout(scanTimeout, checkTimeout time.Duration) time.Duration {
	budget := scanTimeout
	if budget <= 0 {
		budget = checkTimeout
	}
	return budget + 30*time.Second
}

// serveUntilDone serves on ln until ctx is cancelled or the server fails,
// then shuts down gracefully within the configured timeout.
func (a *app) serveUntilDone(ctx context.Context, out io.Writer, ln net.Listener, handler http.Handler) error {
	cfg := a.config.Serve
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      responseWriteTimeout(cfg.ScanTimeout, a.config.Scan.CheckTimeout),
		IdleTimeout:       120 * time.Second,
	}

	fmt.Fprintf(out, "%s Web form listening on http://%s\n", colorInfo("→"), ln.Addr())
	fmt.Fprintf(out, "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
	a.logger.Infow("server started", "addr", ln.Addr().String(), "metrics", cfg.Metrics)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		fmt.Fprintf(out, "\n%s Shutting down...\n", colorInfo("→"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		if closeErr := httpServer.Close(); closeErr != nil {
			return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
		}
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}

	a.logger.Infow("server stopped")
	fmt.Fprintf(out, "%s Server shutdown complete\n", colorInfo("✓"))
	return nil
}
