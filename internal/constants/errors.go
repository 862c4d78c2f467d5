package constants

// Error message constants
const (
	// ErrNoKubeconfigPath is returned when no kubeconfig path is found
	ErrNoKubeconfigPath = "no kubeconfig path found"

	// ErrUnknownCluster is returned when a cluster name has no kubeconfig context
	ErrUnknownCluster = "unknown cluster"

	// ErrUnknownResource is returned when a resource name is not in the registry
	ErrUnknownResource = "unknown resource type"

	// ErrNotScalable is returned when scaling a kind without replicas
	ErrNotScalable = "resource kind cannot be scaled"

	// ErrNotRestartable is returned when restarting a kind without a pod template
	ErrNotRestartable = "resource kind cannot be restarted"

	// ErrUnsupportedDirect is returned by operations the direct backend does not offer
	ErrUnsupportedDirect = "not available when reading clusters directly from kubeconfig"

	// ErrSessionClosed is returned when writing to a closed shell session
	ErrSessionClosed = "session closed"
)

// Error detection keywords for error mapping
const (
	ErrKeywordTimeout  = "timeout"
	ErrKeywordDeadline = "deadline exceeded"

	ErrKeywordUnauthorized   = "unauthorized"
	ErrKeywordAuthentication = "authentication"
	ErrKeywordToken          = "token"
	ErrKeywordExpired        = "expired"

	ErrKeywordForbidden    = "forbidden"
	ErrKeywordAccessDenied = "access denied"

	ErrKeywordConnectionRefused = "connection refused"
	ErrKeywordNoSuchHost        = "no such host"

	ErrKeywordKubeconfig = "kubeconfig"

	ErrKeywordCertificate = "certificate"
	ErrKeywordX509        = "x509"
)
