package constants

// Console API paths
const (
	// APIBasePath is the prefix of every console REST endpoint
	APIBasePath = "/api/v1"

	// ClustersPath lists clusters and prefixes per-cluster resource paths
	ClustersPath = APIBasePath + "/clusters"

	// UsersPath is the user administration endpoint
	UsersPath = APIBasePath + "/users"

	// GroupsPath is the group administration endpoint
	GroupsPath = APIBasePath + "/groups"

	// AuditSettingsPath is the audit settings endpoint
	AuditSettingsPath = APIBasePath + "/audit/settings"

	// SearchPath is the global search endpoint
	SearchPath = APIBasePath + "/search"

	// MetricsEndpoint is where the metrics listener serves Prometheus metrics
	MetricsEndpoint = "/metrics"
)

// WebSocket frame types exchanged with shell and log sessions
const (
	FrameStdin  = "stdin"
	FrameResize = "resize"
	FrameStdout = "stdout"
	FrameStderr = "stderr"
	FrameLog    = "log"
	FrameError  = "error"
	FrameExit   = "exit"
)
