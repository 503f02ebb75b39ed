package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/khanhnv2901/seca-scan/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
	"golang.org/x/time/rate"
)

// ClientConfig is the immutable probe configuration. It is passed by value into
// every check; nothing mutates it once a scan starts.
type ClientConfig struct {
	Timeout      time.Duration // per-request ceiling (dial, TLS, headers, body)
	MaxRedirects int           // hops followed before giving up
	UserAgent    string        // sent on every request
	MaxBodyBytes int64         // response bodies are truncated to this size
	RateLimit    float64       // requests per second across a scan, 0 disables pacing
}

// DefaultClientConfig returns the stock probe configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      constants.DefaultProbeTimeout,
		MaxRedirects: constants.DefaultMaxRedirects,
		UserAgent:    constants.DefaultUserAgent,
		MaxBodyBytes: constants.DefaultMaxBodyBytes,
	}
}

// withDefaults fills zero Timeout, UserAgent and MaxBodyBytes from DefaultClientConfig.
// MaxRedirects is taken as given: zero disables redirects.
func (c ClientConfig) withDefaults() ClientConfig {
	def := DefaultClientConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRedirects < 0 {
		c.MaxRedirects = 0
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	return c
}

// Response is the subset of an HTTP response the checks look at.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       []byte
	FinalURL   string
}

// Fetcher issues one HTTP request. ProbeClient is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error)
}

// ProbeClient performs verified HTTP(S) requests with bounded redirects.
// It is safe for concurrent use by all checks of a scan.
type ProbeClient struct {
	cfg     ClientConfig
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption customizes a ProbeClient.
type ClientOption func(*ProbeClient)

// WithTransport replaces the default transport, e.g. to pin test certificates.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(p *ProbeClient) {
		if rt != nil {
			p.client.Transport = rt
		}
	}
}

// NewProbeClient builds a client from cfg. Start from DefaultClientConfig to keep
// the stock redirect limit.
func NewProbeClient(cfg ClientConfig, opts ...ClientOption) *ProbeClient {
	cfg = cfg.withDefaults()

	p := &ProbeClient{cfg: cfg}
	p.client = &http.Client{
		Timeout:       cfg.Timeout,
		Transport:     newProbeTransport(cfg),
		CheckRedirect: p.checkRedirect,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newProbeTransport(cfg ClientConfig) *http.Transport {
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: false},
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		// every check owns its connection
		DisableKeepAlives: true,
	}
}

// Config returns a copy of the client's configuration.
func (p *ProbeClient) Config() ClientConfig { return p.cfg }

// Fetch issues method against rawURL with the configured User-Agent plus headers.
// Transport failures come back as *NetworkError, redirect violations as *RedirectError.
func (p *ProbeClient) Fetch(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: method, URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		var redirectErr *RedirectError
		if errors.As(err, &redirectErr) {
			return nil, redirectErr
		}
		return nil, &NetworkError{Op: method, URL: rawURL, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: "read body", URL: rawURL, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    NewHeaders(resp.Header),
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// checkRedirect re-validates every hop as a strict http(s) URL and stops loops.
func (p *ProbeClient) checkRedirect(req *http.Request, via []*http.Request) error {
	next := req.URL.String()
	if len(via) > p.cfg.MaxRedirects {
		return &RedirectError{URL: next, Err: sharedErrors.ErrTooManyRedirects}
	}
	if err := validateHTTPURL(req.URL); err != nil {
		return &RedirectError{URL: next, Err: fmt.Errorf("%w: %v", sharedErrors.ErrDisallowedRedirect, err)}
	}
	for _, prev := range via {
		if prev.URL.String() == next {
			return &RedirectError{URL: next, Err: sharedErrors.ErrRedirectLoop}
		}
	}
	return nil
}

// unwrapURLError drops the *url.Error envelope; NetworkError already carries op and URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
