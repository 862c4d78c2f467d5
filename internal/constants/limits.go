package constants

// List and pagination limits
const (
	// DefaultListLimit is the default number of items to retrieve in list operations
	DefaultListLimit = 500

	// DefaultPageSize is the default number of rows per table page
	DefaultPageSize = 20

	// DefaultSearchLimit caps global search results
	DefaultSearchLimit = 50

	// DefaultConcurrency bounds parallel requests during cluster fan-out
	DefaultConcurrency = 8
)

// PageSizes are the selectable table page sizes
var PageSizes = []int{10, 20, 50, 100}

// Column sizing
const (
	// MinColumnWidth is the narrowest a table column can be resized to
	MinColumnWidth = 4

	// ColumnResizeStep is the width change per resize key press
	ColumnResizeStep = 2
)

// Buffer and channel sizes
const (
	// LogChannelBufferSize is the buffer size for log streaming channels
	LogChannelBufferSize = 100

	// MaxLogLines is the maximum number of log lines kept in the log view
	MaxLogLines = 1000

	// MaxTerminalLines is the maximum number of lines kept in the terminal view
	MaxTerminalLines = 2000

	// MaxVisibleToasts is how many notifications are shown at once
	MaxVisibleToasts = 5

	// MaxHistoryEntries caps the navigation history
	MaxHistoryEntries = 50

	// MaxResponseBytes caps the size of a decoded API response body (bytes)
	MaxResponseBytes = 64 << 20
)

// Retry configuration
const (
	// DefaultRetryAttempts is the number of retries for idempotent reads
	DefaultRetryAttempts = 2

	// MinOpenShiftAPIsThreshold is the minimum number of OpenShift APIs required for detection
	MinOpenShiftAPIsThreshold = 3
)
