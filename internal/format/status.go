package format

import "strings"

// Level groups statuses by how they should be colored
type Level int

const (
	LevelMuted Level = iota
	LevelSuccess
	LevelWarning
	LevelError
	LevelInfo
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	default:
		return "muted"
	}
}

var statusLevels = map[string]Level{
	"running":     LevelSuccess,
	"ready":       LevelSuccess,
	"active":      LevelSuccess,
	"bound":       LevelSuccess,
	"available":   LevelSuccess,
	"succeeded":   LevelSuccess,
	"completed":   LevelSuccess,
	"complete":    LevelSuccess,
	"true":        LevelSuccess,
	"healthy":     LevelSuccess,
	"established": LevelSuccess,
	"valid":       LevelSuccess,
	"normal":      LevelSuccess,

	"pending":           LevelWarning,
	"containercreating": LevelWarning,
	"podinitializing":   LevelWarning,
	"terminating":       LevelWarning,
	"progressing":       LevelWarning,
	"suspended":         LevelWarning,
	"expiring":          LevelWarning,
	"warning":           LevelWarning,
	"installing":        LevelWarning,

	"failed":                     LevelError,
	"error":                      LevelError,
	"crashloopbackoff":           LevelError,
	"imagepullbackoff":           LevelError,
	"errimagepull":               LevelError,
	"oomkilled":                  LevelError,
	"createcontainerconfigerror": LevelError,
	"lost":                       LevelError,
	"notready":                   LevelError,
	"false":                      LevelError,
	"evicted":                    LevelError,
	"expired":                    LevelError,

	"released":           LevelInfo,
	"scheduled":          LevelInfo,
	"schedulingdisabled": LevelInfo,
}

var statusTexts = map[string]string{
	"crashloopbackoff":  "CrashLoopBackOff",
	"imagepullbackoff":  "ImagePullBackOff",
	"errimagepull":      "ErrImagePull",
	"containercreating": "ContainerCreating",
	"podinitializing":   "PodInitializing",
	"oomkilled":         "OOMKilled",
	"notready":          "NotReady",
	"true":              "True",
	"false":             "False",
}

// StatusLevel maps a status string to a color level. Compound statuses such
// as "Ready,SchedulingDisabled" take the level of their first part.
func StatusLevel(status string) Level {
	key := normalize(status)
	if level, ok := statusLevels[key]; ok {
		return level
	}
	return LevelMuted
}

// StatusText returns the canonical display text for a status
func StatusText(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return "Unknown"
	}
	if text, ok := statusTexts[strings.ToLower(s)]; ok {
		return text
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func normalize(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return s
}

// Truncate shortens s to max runes, ending with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
