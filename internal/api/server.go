package api

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/seca-scan/internal/api/middleware"
	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/metrics"
	"github.com/khanhnv2901/seca-scan/internal/report"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

const (
	csrfFieldName   = "_token"
	csrfKeyLength   = 32
	maxFormBytes    = 1 << 20
	limiterIdleTTL  = 5 * time.Minute
	limiterSweepInt = time.Minute
)

//go:embed templates/home.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html"))

// Scanner runs a full scan of one target.
type Scanner interface {
	Scan(ctx context.Context, target checker.Target) *checker.Report
}

type Config struct {
	Scanner      Scanner
	Metrics      *metrics.Recorder // nil disables /metrics
	Logger       *zap.Logger
	CSRFKey      []byte        // 32 bytes; a random key is generated when empty
	SecureCookie bool          // mark the CSRF cookie Secure
	ScanTimeout  time.Duration // upper bound for one POST /check-url, 0 = none
	TrustProxy   bool          // take the client IP from X-Forwarded-For
	RateLimit    int           // Requests per second per IP (0 = disabled)
	RateBurst    int           // Burst size for rate limiter
}

type Server struct {
	cfg      Config
	router   *mux.Router
	handler  http.Handler
	limiters *rateLimiterMap
}

// NewServer wires routes and middleware. Call Close to stop background work.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, fmt.Errorf("api: scanner: %w", sharedErrors.ErrMissingRequired)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.CSRFKey) == 0 {
		key := make([]byte, csrfKeyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("api: generate csrf key: %w", err)
		}
		cfg.CSRFKey = key
	}
	if len(cfg.CSRFKey) != csrfKeyLength {
		return nil, fmt.Errorf("api: csrf key must be %d bytes, got %d", csrfKeyLength, len(cfg.CSRFKey))
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = cfg.RateLimit
	}

	srv := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		limiters: newRateLimiterMap(limiterIdleTTL, limiterSweepInt),
	}
	srv.routes()
	// RequestID -> Logging -> RateLimit -> body limit -> security headers -> router
	srv.handler = middleware.RequestID(srv.withLogging(srv.withRateLimit(srv.withBodyLimit(srv.withSecurityHeaders(srv.router)))))
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops the limiter cleanup goroutine.
func (s *Server) Close() {
	s.limiters.stop()
}

func (s *Server) routes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, errors.New("not found"))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	s.router.Use(s.withMetrics)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.cfg.Metrics != nil {
		s.router.Handle("/metrics", s.cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	protect := csrf.Protect(s.cfg.CSRFKey,
		csrf.Secure(s.cfg.SecureCookie),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(s.handleCSRFFailure)),
	)
	pages := s.router.NewRoute().Subrouter()
	pages.Use(markPlaintext, protect)
	pages.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	pages.HandleFunc("/check-url", s.handleCheckURL).Methods(http.MethodPost)
}

// markPlaintext tells the CSRF layer which requests arrived without TLS.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type homeData struct {
	CSRFField template.HTML
	URL       string
	Error     string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, http.StatusOK, "", "")
}

func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, status int, rawURL, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := homeData{
		CSRFField: csrf.TemplateField(r),
		URL:       rawURL,
		Error:     message,
	}
	if err := homeTemplate.Execute(w, data); err != nil {
		s.requestLogger(r).Error("failed to render home page", zap.Error(err))
	}
}

func (s *Server) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.PostFormValue("url")
	target, err := checker.ParseTarget(rawURL)
	if err != nil {
		s.renderHome(w, r, http.StatusBadRequest, rawURL, "Please enter a valid http(s) URL: "+err.Error())
		return
	}

	ctx := r.Context()
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	logger := s.requestLogger(r)
	logger.Info("scan requested", zap.String("target", target.URL()))
	rep := s.cfg.Scanner.Scan(ctx, target)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveReport(rep)
	}
	counts := rep.Counts()
	logger.Info("scan finished",
		zap.String("scan_id", rep.ID.String()),
		zap.Int("pass", counts.Pass),
		zap.Int("fail", counts.Fail),
		zap.Int("error", counts.Error),
	)

	body, err := report.Bytes(rep, report.FormatHTML, report.Options{HomeURL: "/"})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

func (s *Server) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(r).Warn("csrf_rejected", zap.Error(csrf.FailureReason(r)))
	s.renderHome(w, r, http.StatusForbidden, "", "Your form session expired. Please submit the URL again.")
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip rate limiting if disabled
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := s.clientIP(r)
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded",
				zap.String("client_ip", clientIP),
			)
			w.Header().Set("Retry-After", "1")
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the remote host, or the first X-Forwarded-For hop behind a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders sets the headers this tool checks other sites for.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'; form-action 'self'; base-uri 'none'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("X-XSS-Protection", "0")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		s.cfg.Logger.Info("http_request",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", lrw.bytesWritten),
		)
	})
}

// withMetrics counts matched routes by path template.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		s.cfg.Metrics.ObserveRequest(route, lrw.statusCode)
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()

	// 5xx details stay in the log
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = "internal server error"
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// rateLimiterMap manages per-IP rate limiters with automatic cleanup
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	idleTTL  time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap(idleTTL, sweepInterval time.Duration) *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
		idleTTL:  idleTTL,
		done:     make(chan struct{}),
	}
	go m.cleanupLoop(sweepInterval)
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.limiters[ip]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (m *rateLimiterMap) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

// sweep removes limiters idle for longer than idleTTL.
func (m *rateLimiterMap) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, entry := range m.limiters {
		if now.Sub(entry.lastSeen) > m.idleTTL {
			delete(m.limiters, ip)
		}
	}
}

func (m *rateLimiterMap) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.sweep(now)
		case <-m.done:
			return
		}
	}
}

func (m *rateLimiterMap) stop() {
	m.stopOnce.Do(func() { close(m.done) })
}
