package ui

import (
	"context"
	"time"

	"github.com/katyella/kconsole/internal/config"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/query"
	"github.com/katyella/kconsole/internal/ui/styles"
)

// Env is what every view shares: data access, styles and settings
type Env struct {
	Backend    resources.Backend
	Cache      *query.Cache
	Aggregator *multicluster.Aggregator
	// Monitor is optional
	Monitor *multicluster.Monitor
	Styles  *styles.StyleManager
	Keys    KeyMap
	Config  config.Config
	Now     func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// requestContext bounds one backend call
func (e *Env) requestContext() (context.Context, context.CancelFunc) {
	timeout := e.Config.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (e *Env) pageSize() int {
	if e.Config.PageSize > 0 {
		return e.Config.PageSize
	}
	return constants.DefaultPageSize
}

func (e *Env) refreshInterval() time.Duration {
	if e.Config.RefreshInterval > 0 {
		return e.Config.RefreshInterval
	}
	return constants.DefaultRefreshInterval
}
