// Package multicluster fans requests out over several clusters.
package multicluster

import (
	"context"
	"sort"
	"sync"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Item is one object and the cluster it came from
type Item struct {
	Cluster string
	Object  unstructured.Unstructured
}

// Aggregate is the merged result of a fan-out. A cluster that failed is
// listed in Errors and contributes no items.
type Aggregate struct {
	Items  []Item
	Errors map[string]error
}

// Failed returns the failed cluster names, sorted
func (a Aggregate) Failed() []string {
	names := make([]string, 0, len(a.Errors))
	for name := range a.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregator lists resources across clusters in parallel
type Aggregator struct {
	backend     resources.ResourceBackend
	concurrency int
}

// NewAggregator creates an aggregator with at most concurrency requests in flight
func NewAggregator(backend resources.ResourceBackend, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}
	return &Aggregator{backend: backend, concurrency: concurrency}
}

// Clusters returns the clusters known to the backend
func (a *Aggregator) Clusters(ctx context.Context) ([]resources.Cluster, error) {
	return a.backend.ListClusters(ctx)
}

// List lists rt in every cluster. Per-cluster failures are collected in the
// aggregate. Only cancellation of ctx fails the whole call.
func (a *Aggregator) List(ctx context.Context, clusters []string, rt resources.ResourceType, opts resources.ListOptions) (Aggregate, error) {
	agg := Aggregate{Errors: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	seen := make(map[string]bool, len(clusters))
	for _, cluster := range clusters {
		if cluster == "" || seen[cluster] {
			continue
		}
		seen[cluster] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			list, err := a.backend.List(gctx, cluster, rt, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("cluster", cluster).Str("resource", rt.Name).Msg("Cluster list failed")
				metrics.FanoutFailure(cluster)
				agg.Errors[cluster] = err
				return nil
			}
			for _, obj := range list.Items {
				agg.Items = append(agg.Items, Item{Cluster: cluster, Object: obj})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Aggregate{}, err
	}

	sort.SliceStable(agg.Items, func(i, j int) bool {
		x, y := agg.Items[i], agg.Items[j]
		if x.Cluster != y.Cluster {
			return x.Cluster < y.Cluster
		}
		if x.Object.GetNamespace() != y.Object.GetNamespace() {
			return x.Object.GetNamespace() < y.Object.GetNamespace()
		}
		return x.Object.GetName() < y.Object.GetName()
	})
	return agg, nil
}
