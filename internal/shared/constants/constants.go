package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when writing exported reports.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultProbeTimeout bounds every HTTP fetch made by a check.
	DefaultProbeTimeout = 30 * time.Second
	// DefaultTLSTimeout bounds the raw TLS handshake used for certificate inspection.
	DefaultTLSTimeout = 30 * time.Second
	// DefaultCheckTimeout is the outer deadline of a single check. It sits above the
	// network timeouts so that those surface first as typed errors.
	DefaultCheckTimeout = 45 * time.Second
	// DefaultMaxRedirects caps how many redirect hops a probe follows.
	DefaultMaxRedirects = 5
	// DefaultMaxBodyBytes caps how much of a response body is read for markup analysis.
	DefaultMaxBodyBytes int64 = 5 << 20
	// DefaultTLSPort is used for certificate inspection when the target has no explicit port.
	DefaultTLSPort = "443"
	// DefaultUserAgent identifies probes as a regular desktop browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// TLSSoonExpiryWindow flags certificates that expire inside this window.
	TLSSoonExpiryWindow = 14 * 24 * time.Hour
)

const (
	// DefaultServeAddr is the listen address of the web form.
	DefaultServeAddr = "127.0.0.1:8080"
	// DefaultShutdownTimeout bounds graceful shutdown of the web server.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultServeRateLimit is the per-IP request rate of the web server.
	DefaultServeRateLimit = 2
	// DefaultServeRateBurst is the per-IP burst of the web server.
	DefaultServeRateBurst = 5
	// DefaultScanRequestTimeout bounds one scan submitted through the web form.
	DefaultScanRequestTimeout = 2 * time.Minute
)

const (
	// DefaultLogMaxSizeMB rotates the log file once it reaches this size.
	DefaultLogMaxSizeMB = 50
	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 5
	// DefaultLogMaxAgeDays removes rotated log files older than this.
	DefaultLogMaxAgeDays = 28
)
