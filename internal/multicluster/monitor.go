package multicluster

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
)

// EventType classifies a cluster health change
type EventType int

const (
	EventConnected EventType = iota
	EventDisconnected
	EventError
)

func (e EventType) String() string {
	switch e {
	case EventConnected:
		return "Connected"
	case EventDisconnected:
		return "Disconnected"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is a change in a cluster's reachability. Cluster is empty when the
// backend itself could not be reached.
type Event struct {
	Type      EventType
	Cluster   string
	Timestamp time.Time
	Message   string
	Error     string
}

// MonitorConfig controls the health check loop
type MonitorConfig struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	MaxEvents      int
}

// Monitor polls the cluster list and reports reachability changes
type Monitor struct {
	backend resources.ResourceBackend
	config  MonitorConfig
	now     func() time.Time

	mu        sync.RWMutex
	status    map[string]resources.Cluster
	events    []Event
	listeners []func(Event)
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewMonitor creates a monitor checking every interval
func NewMonitor(backend resources.ResourceBackend, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = constants.DefaultRefreshInterval
	}
	return &Monitor{
		backend: backend,
		config: MonitorConfig{
			Interval:       interval,
			RequestTimeout: constants.DefaultRequestTimeout,
			MaxEvents:      100,
		},
		now:    time.Now,
		status: make(map[string]resources.Cluster),
	}
}

// Start runs an immediate check and then one per interval until Stop or
// ctx is cancelled
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return fmt.Errorf("monitor already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.config.Interval)
		defer ticker.Stop()
		m.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
	return nil
}

// Stop ends the check loop and waits for it to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Check lists clusters once and returns the events it produced
func (m *Monitor) Check(ctx context.Context) []Event {
	ctx, cancel := context.WithTimeout(ctx, m.config.RequestTimeout)
	defer cancel()

	clusters, err := m.backend.ListClusters(ctx)
	now := m.now()

	var events []Event
	m.mu.Lock()
	if err != nil {
		events = append(events, Event{
			Type:      EventError,
			Timestamp: now,
			Message:   "Cluster list unavailable",
			Error:     err.Error(),
		})
	} else {
		for _, c := range clusters {
			prev, known := m.status[c.Name]
			failed := c.Status == constants.StatusFailed
			switch {
			case failed && (!known || prev.Status != constants.StatusFailed):
				typ := EventError
				if known {
					typ = EventDisconnected
				}
				events = append(events, Event{
					Type:      typ,
					Cluster:   c.Name,
					Timestamp: now,
					Message:   fmt.Sprintf("Cluster %s is unreachable", c.Name),
					Error:     c.Error,
				})
			case !failed && known && prev.Status == constants.StatusFailed:
				events = append(events, Event{
					Type:      EventConnected,
					Cluster:   c.Name,
					Timestamp: now,
					Message:   fmt.Sprintf("Cluster %s is reachable again", c.Name),
				})
			}
			m.status[c.Name] = c
		}
	}
	for _, e := range events {
		m.addEventLocked(e)
	}
	listeners := append([]func(Event){}, m.listeners...)
	m.mu.Unlock()

	for _, e := range events {
		log.Info().Str("cluster", e.Cluster).Str("event", e.Type.String()).Msg(e.Message)
		for _, l := range listeners {
			l(e)
		}
	}
	return events
}

func (m *Monitor) addEventLocked(e Event) {
	m.events = append(m.events, e)
	if len(m.events) > m.config.MaxEvents {
		m.events = m.events[len(m.events)-m.config.MaxEvents:]
	}
}

// Status returns the last known state of every cluster, sorted by name
func (m *Monitor) Status() []resources.Cluster {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]resources.Cluster, 0, len(m.status))
	for _, c := range m.status {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Events returns up to limit of the most recent events, oldest first
func (m *Monitor) Events(limit int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := 0
	if limit > 0 && len(m.events) > limit {
		start = len(m.events) - limit
	}
	return append([]Event(nil), m.events[start:]...)
}

// AddListener registers fn to be called for each new event
func (m *Monitor) AddListener(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// IsHealthy reports whether the cluster answered the last check
func (m *Monitor) IsHealthy(cluster string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.status[cluster]
	return ok && c.Status != constants.StatusFailed
}
