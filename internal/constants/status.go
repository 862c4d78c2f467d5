package constants

// Connection status constants
const (
	// StatusConnecting indicates the first cluster list request is in flight
	StatusConnecting = "Connecting"

	// StatusRefreshing indicates data is being refreshed
	StatusRefreshing = "Refreshing"

	// StatusConnected indicates the backend answered
	StatusConnected = "Connected"

	// StatusFailed indicates the backend could not be reached
	StatusFailed = "Failed"

	// StatusUnknown is shown before the first health check
	StatusUnknown = "Unknown"
)

// Pod status constants
const (
	PodStatusRunning          = "Running"
	PodStatusPending          = "Pending"
	PodStatusFailed           = "Failed"
	PodStatusSucceeded        = "Succeeded"
	PodStatusUnknown          = "Unknown"
	PodStatusTerminating      = "Terminating"
	PodStatusCompleted        = "Completed"
	PodStatusCrashLoopBackOff = "CrashLoopBackOff"
	PodStatusError            = "Error"
)

// Node status constants
const (
	NodeStatusReady              = "Ready"
	NodeStatusNotReady           = "NotReady"
	NodeStatusSchedulingDisabled = "SchedulingDisabled"
)

// Certificate status constants
const (
	CertStatusValid    = "Valid"
	CertStatusExpiring = "Expiring"
	CertStatusExpired  = "Expired"
)
