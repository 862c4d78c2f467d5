package constants

import "time"

// Timeout constants
const (
	// DefaultRequestTimeout is the standard timeout for API requests
	DefaultRequestTimeout = 15 * time.Second

	// ClusterDetectionTimeout is the maximum time allowed for cluster type detection
	ClusterDetectionTimeout = 15 * time.Second

	// WebSocketHandshakeTimeout bounds the shell and log stream handshake
	WebSocketHandshakeTimeout = 10 * time.Second

	// MetricsShutdownTimeout bounds the metrics listener shutdown
	MetricsShutdownTimeout = 5 * time.Second
)

// Interval constants
const (
	// DefaultRefreshInterval is the time between automatic list refreshes
	DefaultRefreshInterval = 10 * time.Second

	// MinRefreshInterval is the lowest accepted refresh interval
	MinRefreshInterval = time.Second

	// ToastDuration is how long a notification stays visible
	ToastDuration = 5 * time.Second

	// LogBatchInterval is how often buffered log lines are flushed to the view
	LogBatchInterval = 100 * time.Millisecond
)

// Cache duration constants
const (
	// DefaultStaleTime is the age after which cached data is revalidated in the background
	DefaultStaleTime = 5 * time.Second

	// DefaultCacheTime is how long unused cache entries are kept
	DefaultCacheTime = 5 * time.Minute

	// DefaultClusterCacheTime is how long cluster detection results are cached
	DefaultClusterCacheTime = 10 * time.Minute

	// CertExpiryWarning is the window before NotAfter in which a certificate is flagged
	CertExpiryWarning = 30 * 24 * time.Hour
)

// Backoff configuration constants
const (
	// DefaultInitialDelay is the initial retry delay
	DefaultInitialDelay = 1 * time.Second

	// DefaultMaxDelay is the maximum retry delay
	DefaultMaxDelay = 30 * time.Second

	// DefaultBackoffFactor is the multiplier for rate-limited retries
	DefaultBackoffFactor = 2.0
)
