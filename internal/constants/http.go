package constants

// HTTP headers and content types used by the API client
const (
	// HeaderAuthorization carries the bearer token
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the request body content type header
	HeaderContentType = "Content-Type"

	// HeaderAccept is the accepted response content type header
	HeaderAccept = "Accept"

	// ContentTypeJSON is used for every JSON request body
	ContentTypeJSON = "application/json"

	// ContentTypeMergePatch is used for scale and cordon patches
	ContentTypeMergePatch = "application/merge-patch+json"

	// BearerPrefix prefixes the token in the Authorization header
	BearerPrefix = "Bearer "
)

// HTTP status codes treated as transient
const (
	HTTPStatusRequestTimeout      = 408
	HTTPStatusTooManyRequests     = 429
	HTTPStatusInternalServerError = 500
	HTTPStatusBadGateway          = 502
	HTTPStatusServiceUnavailable  = 503
	HTTPStatusGatewayTimeout      = 504
)
