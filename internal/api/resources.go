package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ListClusters returns every cluster the console manages
func (c *Client) ListClusters(ctx context.Context) ([]resources.Cluster, error) {
	var clusters []resources.Cluster
	if err := c.do(ctx, http.MethodGet, constants.ClustersPath, nil, nil, &clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// List returns one page of objects. Items missing apiVersion or kind, as
// typed list responses omit them, are filled in from rt.
func (c *Client) List(ctx context.Context, cluster string, rt resources.ResourceType, opts resources.ListOptions) (*resources.List, error) {
	// Decoded as a map so integers stay int64 the way unstructured expects
	var raw map[string]interface{}
	path := collectionPath(cluster, rt, opts.Namespace)
	if err := c.do(ctx, http.MethodGet, path, typeQuery(rt, opts.Query()), nil, &raw); err != nil {
		return nil, err
	}

	items, _ := raw["items"].([]interface{})
	list := &resources.List{Items: make([]unstructured.Unstructured, 0, len(items))}
	list.Continue, _, _ = unstructured.NestedString(raw, "metadata", "continue")
	list.ResourceVersion, _, _ = unstructured.NestedString(raw, "metadata", "resourceVersion")

	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		obj := unstructured.Unstructured{Object: m}
		fillTypeMeta(&obj, rt)
		list.Items = append(list.Items, obj)
	}
	return list, nil
}

// Get returns a single object
func (c *Client) Get(ctx context.Context, ref resources.Ref) (*unstructured.Unstructured, error) {
	return c.object(ctx, http.MethodGet, itemPath(ref), ref.Type, nil)
}

// Create posts obj to the collection
func (c *Client) Create(ctx context.Context, cluster string, rt resources.ResourceType, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return c.object(ctx, http.MethodPost, collectionPath(cluster, rt, obj.GetNamespace()), rt, obj.Object)
}

// Update replaces the object at ref with obj
func (c *Client) Update(ctx context.Context, ref resources.Ref, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return c.object(ctx, http.MethodPut, itemPath(ref), ref.Type, obj.Object)
}

// Delete removes the object at ref
func (c *Client) Delete(ctx context.Context, ref resources.Ref) error {
	return c.do(ctx, http.MethodDelete, itemPath(ref), typeQuery(ref.Type, nil), nil, nil)
}

func (c *Client) object(ctx context.Context, method, path string, rt resources.ResourceType, body map[string]interface{}) (*unstructured.Unstructured, error) {
	var out map[string]interface{}
	var payload any
	if body != nil {
		payload = body
	}
	if err := c.do(ctx, method, path, typeQuery(rt, nil), payload, &out); err != nil {
		return nil, err
	}
	obj := &unstructured.Unstructured{Object: out}
	if out == nil {
		obj.Object = map[string]interface{}{}
	}
	fillTypeMeta(obj, rt)
	return obj, nil
}

func fillTypeMeta(obj *unstructured.Unstructured, rt resources.ResourceType) {
	if obj.GetAPIVersion() == "" && rt.Version != "" {
		obj.SetAPIVersion(rt.APIVersion())
	}
	if obj.GetKind() == "" && rt.Kind != "" {
		obj.SetKind(rt.Kind)
	}
}

// Scale sets the replica count of a deployment, statefulset or replicaset
func (c *Client) Scale(ctx context.Context, ref resources.Ref, replicas int32) error {
	body := map[string]int32{"replicas": replicas}
	return c.doWithType(ctx, http.MethodPatch, itemPath(ref)+"/scale", nil, body, constants.ContentTypeMergePatch, nil)
}

// Restart triggers a rolling restart of a workload
func (c *Client) Restart(ctx context.Context, ref resources.Ref) error {
	return c.do(ctx, http.MethodPost, itemPath(ref)+"/restart", nil, nil, nil)
}

// Cordon marks a node (un)schedulable
func (c *Client) Cordon(ctx context.Context, cluster, node string, unschedulable bool) error {
	body := map[string]bool{"unschedulable": unschedulable}
	return c.do(ctx, http.MethodPost, nodePath(cluster, node)+"/cordon", nil, body, nil)
}

// Search runs a global name search
func (c *Client) Search(ctx context.Context, q resources.SearchQuery) ([]resources.SearchResult, error) {
	query := url.Values{"q": {q.Query}}
	if q.Cluster != "" {
		query.Set("cluster", q.Cluster)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	var results []resources.SearchResult
	if err := c.do(ctx, http.MethodGet, constants.SearchPath, query, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Logs returns pod logs. Followed logs are streamed over a WebSocket, others
// are a plain text download.
func (c *Client) Logs(ctx context.Context, ref resources.Ref, opts resources.LogOptions) (io.ReadCloser, error) {
	if opts.Follow {
		return c.dialStream(ctx, itemPath(ref)+"/logs/ws", opts.Query())
	}
	return c.streamBody(ctx, itemPath(ref)+"/logs", opts.Query())
}

var _ resources.Backend = (*Client)(nil)
