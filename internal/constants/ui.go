package constants

import "time"

// UI theme and display constants
const (
	// DefaultTheme is the default UI theme
	DefaultTheme = "dark"

	// DefaultNamespace is the namespace used by create templates when none is selected
	DefaultNamespace = "default"

	// AllNamespaces is the label shown when listing across namespaces
	AllNamespaces = "all namespaces"
)

// UI dimensions
const (
	// MinTerminalWidth is the minimum terminal width required
	MinTerminalWidth = 80

	// MinTerminalHeight is the minimum terminal height required
	MinTerminalHeight = 24

	// HeaderHeight is the height of the header in lines
	HeaderHeight = 2

	// StatusBarHeight is the height of the status bar in lines
	StatusBarHeight = 1

	// SidebarWidth is the width of the resource sidebar
	SidebarWidth = 24

	// ModalWidth is the default width of modal dialogs
	ModalWidth = 72

	// EditorModalHeight is the height of the YAML editor modal
	EditorModalHeight = 24

	// ToastWidth is the width of a notification box
	ToastWidth = 44
)

// UI messages
const (
	InitializingMessage = "Initializing kconsole..."
	LoadingMessage      = "Loading..."
	EmptyListMessage    = "No resources found"
	NoLogsMessage       = "No logs available"
	MaskedValue         = "********"
)

// Animation constants
const (
	// SpinnerAnimationInterval is the interval for spinner animation
	SpinnerAnimationInterval = 100 * time.Millisecond
)

// DefaultPodLogTailLines is the default number of lines to tail from pod logs
const DefaultPodLogTailLines = 200
