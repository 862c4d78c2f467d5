package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// RestartAnnotation is bumped on the pod template to roll a workload
const RestartAnnotation = "kubectl.kubernetes.io/restartedAt"

// searchTypes are the resource types scanned by Search
var searchTypes = []string{
	"pods", "deployments", "statefulsets", "daemonsets", "services",
	"configmaps", "secrets", "namespaces", "nodes", "ingresses",
}

// Backend talks to clusters directly using kubeconfig credentials
type Backend struct {
	factory     *ClientFactory
	concurrency int
	now         func() time.Time
}

// NewBackend creates a direct backend over the factory's contexts
func NewBackend(factory *ClientFactory, concurrency int) *Backend {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}
	return &Backend{factory: factory, concurrency: concurrency, now: time.Now}
}

var _ resources.Backend = (*Backend)(nil)

func (b *Backend) Name() string { return "direct" }

// ListClusters probes every context in parallel. Unreachable contexts are
// reported with a failed status rather than an error.
func (b *Backend) ListClusters(ctx context.Context) ([]resources.Cluster, error) {
	names := b.factory.Contexts()
	out := make([]resources.Cluster, len(names))
	current := b.factory.CurrentContext()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, name := range names {
		g.Go(func() error {
			cluster := resources.Cluster{Name: name, Default: name == current}
			info, err := b.probe(gctx, name)
			if err != nil {
				log.Debug().Err(err).Str("cluster", name).Msg("Cluster probe failed")
				cluster.Status = constants.StatusFailed
				cluster.Error = err.Error()
			} else {
				cluster.Status = constants.StatusConnected
				cluster.Version = info.ServerVersion
			}
			out[i] = cluster
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) probe(ctx context.Context, name string) (*ClusterInfo, error) {
	c, err := b.factory.For(name)
	if err != nil {
		return nil, err
	}
	return c.Detector.DetectClusterType(ctx)
}

func (b *Backend) resource(c *ClusterClients, rt resources.ResourceType, namespace string) dynamic.ResourceInterface {
	ri := c.Dynamic.Resource(rt.GVR())
	if rt.Namespaced && namespace != "" {
		return ri.Namespace(namespace)
	}
	return ri
}

func (b *Backend) List(ctx context.Context, cluster string, rt resources.ResourceType, opts resources.ListOptions) (*resources.List, error) {
	c, err := b.factory.For(cluster)
	if err != nil {
		return nil, err
	}

	if rt.Name == "namespaces" && c.Projects != nil && c.Detector != nil {
		if ok, _ := c.Detector.SupportsProjects(ctx); ok {
			return b.listProjects(ctx, c, opts)
		}
	}

	list, err := b.resource(c, rt, opts.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: opts.LabelSelector,
		FieldSelector: opts.FieldSelector,
		Limit:         opts.Limit,
		Continue:      opts.Continue,
	})
	if err != nil {
		return nil, errors.FromKubernetes(fmt.Sprintf("list %s", rt.Name), err)
	}
	for i := range list.Items {
		if list.Items[i].GetKind() == "" {
			list.Items[i].SetAPIVersion(rt.APIVersion())
			list.Items[i].SetKind(rt.Kind)
		}
	}
	return &resources.List{
		Items:           list.Items,
		Continue:        list.GetContinue(),
		ResourceVersion: list.GetResourceVersion(),
	}, nil
}

func (b *Backend) Get(ctx context.Context, ref resources.Ref) (*unstructured.Unstructured, error) {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return nil, err
	}
	obj, err := b.resource(c, ref.Type, ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, errors.FromKubernetes(fmt.Sprintf("get %s", ref), err)
	}
	return obj, nil
}

func (b *Backend) Create(ctx context.Context, cluster string, rt resources.ResourceType, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	c, err := b.factory.For(cluster)
	if err != nil {
		return nil, err
	}
	if obj.GetKind() == "" {
		obj.SetAPIVersion(rt.APIVersion())
		obj.SetKind(rt.Kind)
	}
	namespace := obj.GetNamespace()
	if rt.Namespaced && namespace == "" {
		namespace = c.Namespace
		obj.SetNamespace(namespace)
	}
	created, err := b.resource(c, rt, namespace).Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return nil, errors.FromKubernetes(fmt.Sprintf("create %s %s", rt.Singular, obj.GetName()), err)
	}
	return created, nil
}

func (b *Backend) Update(ctx context.Context, ref resources.Ref, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return nil, err
	}
	if obj.GetName() != ref.Name {
		return nil, errors.NewValidationError(fmt.Sprintf("object name %q does not match %q", obj.GetName(), ref.Name), nil)
	}
	updated, err := b.resource(c, ref.Type, ref.Namespace).Update(ctx, obj, metav1.UpdateOptions{})
	if err != nil {
		return nil, errors.FromKubernetes(fmt.Sprintf("update %s", ref), err)
	}
	return updated, nil
}

func (b *Backend) Delete(ctx context.Context, ref resources.Ref) error {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return err
	}
	propagation := metav1.DeletePropagationBackground
	err = b.resource(c, ref.Type, ref.Namespace).Delete(ctx, ref.Name, metav1.DeleteOptions{
		PropagationPolicy: &propagation,
	})
	if err != nil {
		return errors.FromKubernetes(fmt.Sprintf("delete %s", ref), err)
	}
	return nil
}

func (b *Backend) patch(ctx context.Context, ref resources.Ref, patch map[string]any) error {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return err
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	_, err = b.resource(c, ref.Type, ref.Namespace).Patch(ctx, ref.Name, types.MergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return errors.FromKubernetes(fmt.Sprintf("patch %s", ref), err)
	}
	return nil
}

func (b *Backend) Scale(ctx context.Context, ref resources.Ref, replicas int32) error {
	if !ref.Type.Scalable() {
		return errors.NewValidationError(fmt.Sprintf("%s: %s", constants.ErrNotScalable, ref.Type.Name), nil)
	}
	if replicas < 0 {
		return errors.NewValidationError("replicas must not be negative", nil)
	}
	return b.patch(ctx, ref, map[string]any{
		"spec": map[string]any{"replicas": replicas},
	})
}

func (b *Backend) Restart(ctx context.Context, ref resources.Ref) error {
	if !ref.Type.Restartable() {
		return errors.NewValidationError(fmt.Sprintf("%s: %s", constants.ErrNotRestartable, ref.Type.Name), nil)
	}
	return b.patch(ctx, ref, map[string]any{
		"spec": map[string]any{
			"template": map[string]any{
				"metadata": map[string]any{
					"annotations": map[string]any{
						RestartAnnotation: b.now().UTC().Format(time.RFC3339),
					},
				},
			},
		},
	})
}

func (b *Backend) Cordon(ctx context.Context, cluster, node string, unschedulable bool) error {
	c, err := b.factory.For(cluster)
	if err != nil {
		return err
	}
	data := fmt.Sprintf(`{"spec":{"unschedulable":%t}}`, unschedulable)
	_, err = c.Clientset.CoreV1().Nodes().Patch(ctx, node, types.MergePatchType, []byte(data), metav1.PatchOptions{})
	if err != nil {
		return errors.FromKubernetes(fmt.Sprintf("cordon node %s", node), err)
	}
	return nil
}

// Search lists the search types in every cluster and matches names by
// case-insensitive substring. Clusters that fail are skipped.
func (b *Backend) Search(ctx context.Context, q resources.SearchQuery) ([]resources.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	if needle == "" {
		return nil, nil
	}
	clusters := b.factory.Contexts()
	if q.Cluster != "" {
		clusters = []string{q.Cluster}
	}

	var (
		mu  sync.Mutex
		out []resources.SearchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, cluster := range clusters {
		for _, name := range searchTypes {
			rt := resources.MustLookup(name)
			g.Go(func() error {
				list, err := b.List(gctx, cluster, rt, resources.ListOptions{})
				if err != nil {
					log.Debug().Err(err).Str("cluster", cluster).Str("resource", rt.Name).Msg("Search skipped")
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				for _, item := range list.Items {
					if strings.Contains(strings.ToLower(item.GetName()), needle) {
						out = append(out, resources.SearchResult{
							Cluster:   cluster,
							Resource:  rt.Name,
							Kind:      rt.Kind,
							Namespace: item.GetNamespace(),
							Name:      item.GetName(),
						})
					}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if x.Cluster != y.Cluster {
			return x.Cluster < y.Cluster
		}
		if x.Resource != y.Resource {
			return x.Resource < y.Resource
		}
		if x.Namespace != y.Namespace {
			return x.Namespace < y.Namespace
		}
		return x.Name < y.Name
	})
	limit := q.Limit
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *Backend) Logs(ctx context.Context, ref resources.Ref, opts resources.LogOptions) (io.ReadCloser, error) {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return nil, err
	}
	podOpts := &corev1.PodLogOptions{
		Container:  opts.Container,
		Follow:     opts.Follow,
		Previous:   opts.Previous,
		Timestamps: opts.Timestamps,
	}
	if opts.TailLines > 0 {
		podOpts.TailLines = &opts.TailLines
	}
	if opts.SinceSeconds > 0 {
		podOpts.SinceSeconds = &opts.SinceSeconds
	}
	stream, err := c.Clientset.CoreV1().Pods(ref.Namespace).GetLogs(ref.Name, podOpts).Stream(ctx)
	if err != nil {
		return nil, errors.FromKubernetes(fmt.Sprintf("logs for %s", ref), err)
	}
	return stream, nil
}

func (b *Backend) NodeShell(ctx context.Context, cluster, node string) (resources.Session, error) {
	return nil, unsupported("node shell")
}

func (b *Backend) ListUsers(ctx context.Context) ([]resources.User, error) {
	return nil, unsupported("user management")
}

func (b *Backend) CreateUser(ctx context.Context, u resources.User) (*resources.User, error) {
	return nil, unsupported("user management")
}

func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	return unsupported("user management")
}

func (b *Backend) ListGroups(ctx context.Context) ([]resources.Group, error) {
	return nil, unsupported("group management")
}

func (b *Backend) GetAuditSettings(ctx context.Context) (*resources.AuditSettings, error) {
	return nil, unsupported("audit settings")
}

func (b *Backend) UpdateAuditSettings(ctx context.Context, s resources.AuditSettings) (*resources.AuditSettings, error) {
	return nil, unsupported("audit settings")
}

func unsupported(feature string) error {
	return errors.NewUnsupportedError(fmt.Sprintf("%s %s", feature, constants.ErrUnsupportedDirect))
}
