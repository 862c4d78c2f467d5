package main

import (
	"context"
	"fmt"

	"github.com/katyella/kconsole/internal/api"
	"github.com/katyella/kconsole/internal/config"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
)

// backendFactory builds the data source for a configuration
type backendFactory func(cfg config.Config) (resources.Backend, error)

// newBackend opens the console API client or the kubeconfig backend,
// wrapped with metrics and read retries
func newBackend(cfg config.Config) (resources.Backend, error) {
	var backend resources.Backend
	switch cfg.Mode {
	case config.ModeDirect:
		path, err := cfg.KubeconfigPath()
		if err != nil {
			return nil, err
		}
		factory, err := k8s.NewClientFactory(path)
		if err != nil {
			return nil, err
		}
		backend = k8s.NewBackend(factory, cfg.Concurrency)
		log.Debug().Str("kubeconfig", path).Strs("contexts", factory.Contexts()).Msg("Using direct backend")
	default:
		client, err := api.NewClient(cfg.APIURL,
			api.WithToken(cfg.Token),
			api.WithTimeout(cfg.RequestTimeout),
			api.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		)
		if err != nil {
			return nil, err
		}
		backend = client
		log.Debug().Str("url", client.BaseURL()).Bool("token", cfg.Token != "").Msg("Using console API")
	}

	instrumented := resources.Backend(resources.NewInstrumentedBackend(backend))
	if cfg.RetryAttempts > 0 {
		return resources.NewRetryBackend(instrumented, cfg.RetryAttempts), nil
	}
	return instrumented, nil
}

// resolveCluster returns name, or the backend's default cluster when empty
func resolveCluster(ctx context.Context, backend resources.Backend, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	clusters, err := backend.ListClusters(ctx)
	if err != nil {
		return "", fmt.Errorf("list clusters: %w", err)
	}
	if len(clusters) == 0 {
		return "", errors.NewNotFoundError("no clusters configured")
	}
	for _, c := range clusters {
		if c.Default {
			return c.Name, nil
		}
	}
	return clusters[0].Name, nil
}

// lookupType resolves a plural, singular, short name or plural.group
func lookupType(name string) (resources.ResourceType, error) {
	rt, ok := resources.Lookup(name)
	if !ok {
		return resources.ResourceType{}, errors.NewValidationError(fmt.Sprintf("unknown resource type %q", name), nil)
	}
	return rt, nil
}
