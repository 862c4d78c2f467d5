package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/ui/styles"
)

// Toast is one notification
type Toast struct {
	ID      int
	Level   format.Level
	Title   string
	Message string
	Expires time.Time
}

// Notifier is the toast queue
type Notifier struct {
	toasts []Toast
	ttl    time.Duration
	max    int
	nextID int
}

// NewNotifier keeps toasts for ttl and shows at most max at once
func NewNotifier(ttl time.Duration, max int) *Notifier {
	if ttl <= 0 {
		ttl = constants.ToastDuration
	}
	if max <= 0 {
		max = constants.MaxVisibleToasts
	}
	return &Notifier{ttl: ttl, max: max}
}

// Push queues a toast expiring ttl after now
func (n *Notifier) Push(level format.Level, title, message string, now time.Time) Toast {
	n.nextID++
	t := Toast{ID: n.nextID, Level: level, Title: title, Message: message, Expires: now.Add(n.ttl)}
	n.toasts = append(n.toasts, t)
	return t
}

// Prune drops expired toasts and returns how many were dropped
func (n *Notifier) Prune(now time.Time) int {
	kept := n.toasts[:0]
	for _, t := range n.toasts {
		if now.Before(t.Expires) {
			kept = append(kept, t)
		}
	}
	dropped := len(n.toasts) - len(kept)
	n.toasts = kept
	return dropped
}

// Visible returns the newest unexpired toasts, oldest first
func (n *Notifier) Visible(now time.Time) []Toast {
	var live []Toast
	for _, t := range n.toasts {
		if now.Before(t.Expires) {
			live = append(live, t)
		}
	}
	if len(live) > n.max {
		live = live[len(live)-n.max:]
	}
	return live
}

// Dismiss removes the oldest toast
func (n *Notifier) Dismiss() {
	if len(n.toasts) > 0 {
		n.toasts = n.toasts[1:]
	}
}

// Len is the number of queued toasts
func (n *Notifier) Len() int {
	return len(n.toasts)
}

func renderToasts(sm *styles.StyleManager, toasts []Toast) string {
	if len(toasts) == 0 {
		return ""
	}
	theme := sm.GetTheme()
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		title := lipgloss.NewStyle().Bold(true).Foreground(styles.LevelColor(theme, t.Level)).Render(t.Title)
		body := title
		if t.Message != "" {
			body += "\n" + format.Truncate(strings.TrimSpace(t.Message), constants.ToastWidth*3)
		}
		boxes = append(boxes, sm.ToastStyle(t.Level).Width(constants.ToastWidth).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}
