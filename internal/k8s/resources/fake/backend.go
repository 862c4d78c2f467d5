// Package fake provides an in-memory resources.Backend for tests.
package fake

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Backend stores objects per cluster and resource. Errors can be injected
// per verb ("list") or per verb and cluster ("list:prod").
type Backend struct {
	mu       sync.Mutex
	clusters []resources.Cluster
	objects  map[string]map[string]*unstructured.Unstructured
	Errors   map[string]error
	Calls    map[string]int
	LogText  map[string]string
	Users    []resources.User
	Groups   []resources.Group
	Audit    resources.AuditSettings
	Sessions map[string]*Session
	Scaled   map[string]int32
	Cordoned map[string]bool
	flaky    map[string]flakyErr
	// Block, when set, is waited on by List before returning
	Block chan struct{}
}

// NewBackend creates a backend with the named clusters. The first is the default.
func NewBackend(clusters ...string) *Backend {
	b := &Backend{
		objects:  make(map[string]map[string]*unstructured.Unstructured),
		Errors:   make(map[string]error),
		Calls:    make(map[string]int),
		LogText:  make(map[string]string),
		Sessions: make(map[string]*Session),
		Scaled:   make(map[string]int32),
		Cordoned: make(map[string]bool),
		flaky:    make(map[string]flakyErr),
	}
	for i, name := range clusters {
		b.clusters = append(b.clusters, resources.Cluster{Name: name, Version: "v1.30.0", Default: i == 0, Status: "Connected"})
	}
	return b
}

func bucket(cluster string, rt resources.ResourceType) string {
	return cluster + "|" + rt.Ref()
}

func objectKey(namespace, name string) string {
	return namespace + "/" + name
}

// Object builds an unstructured object of type rt
func Object(rt resources.ResourceType, namespace, name string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{}
	obj.SetAPIVersion(rt.APIVersion())
	obj.SetKind(rt.Kind)
	obj.SetName(name)
	if rt.Namespaced {
		obj.SetNamespace(namespace)
	}
	return obj
}

// Add stores objects for cluster
func (b *Backend) Add(cluster string, rt resources.ResourceType, objs ...*unstructured.Unstructured) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := bucket(cluster, rt)
	if b.objects[key] == nil {
		b.objects[key] = make(map[string]*unstructured.Unstructured)
	}
	for _, obj := range objs {
		b.objects[key][objectKey(obj.GetNamespace(), obj.GetName())] = obj.DeepCopy()
	}
}

// CallCount returns how often verb was called
func (b *Backend) CallCount(verb string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls[verb]
}

// SetError injects err for key, or clears it when err is nil
func (b *Backend) SetError(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.Errors, key)
		return
	}
	b.Errors[key] = err
}

// SetClusterStatus changes the status reported for a cluster
func (b *Backend) SetClusterStatus(name, status, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.clusters {
		if b.clusters[i].Name == name {
			b.clusters[i].Status = status
			b.clusters[i].Error = message
		}
	}
}

type flakyErr struct {
	remaining int
	err       error
}

// Flaky makes the next n calls of verb fail with err
func (b *Backend) Flaky(verb string, n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flaky[verb] = flakyErr{remaining: n, err: err}
}

func (b *Backend) record(verb, cluster string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls[verb]++
	if f, ok := b.flaky[verb]; ok && f.remaining > 0 {
		f.remaining--
		b.flaky[verb] = f
		return f.err
	}
	if err, ok := b.Errors[verb+":"+cluster]; ok && cluster != "" {
		return err
	}
	return b.Errors[verb]
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) ListClusters(ctx context.Context) ([]resources.Cluster, error) {
	if err := b.record("clusters", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]resources.Cluster, len(b.clusters))
	copy(out, b.clusters)
	return out, nil
}

func (b *Backend) List(ctx context.Context, cluster string, rt resources.ResourceType, opts resources.ListOptions) (*resources.List, error) {
	if b.Block != nil {
		select {
		case <-b.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := b.record("list", cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	list := &resources.List{}
	for _, obj := range b.objects[bucket(cluster, rt)] {
		if opts.Namespace != "" && obj.GetNamespace() != opts.Namespace {
			continue
		}
		list.Items = append(list.Items, *obj.DeepCopy())
	}
	sort.Slice(list.Items, func(i, j int) bool {
		return objectKey(list.Items[i].GetNamespace(), list.Items[i].GetName()) < objectKey(list.Items[j].GetNamespace(), list.Items[j].GetName())
	})
	return list, nil
}

func (b *Backend) Get(ctx context.Context, ref resources.Ref) (*unstructured.Unstructured, error) {
	if err := b.record("get", ref.Cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[bucket(ref.Cluster, ref.Type)][objectKey(ref.Namespace, ref.Name)]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("%s %q not found", ref.Type.Name, ref.Name))
	}
	return obj.DeepCopy(), nil
}

func (b *Backend) Create(ctx context.Context, cluster string, rt resources.ResourceType, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if err := b.record("create", cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := bucket(cluster, rt)
	if b.objects[key] == nil {
		b.objects[key] = make(map[string]*unstructured.Unstructured)
	}
	k := objectKey(obj.GetNamespace(), obj.GetName())
	if _, exists := b.objects[key][k]; exists {
		return nil, errors.FromStatus(409, fmt.Sprintf("%s %q already exists", rt.Name, obj.GetName()), nil)
	}
	b.objects[key][k] = obj.DeepCopy()
	return obj.DeepCopy(), nil
}

func (b *Backend) Update(ctx context.Context, ref resources.Ref, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if err := b.record("update", ref.Cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := bucket(ref.Cluster, ref.Type)
	k := objectKey(ref.Namespace, ref.Name)
	if _, ok := b.objects[key][k]; !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("%s %q not found", ref.Type.Name, ref.Name))
	}
	b.objects[key][k] = obj.DeepCopy()
	return obj.DeepCopy(), nil
}

func (b *Backend) Delete(ctx context.Context, ref resources.Ref) error {
	if err := b.record("delete", ref.Cluster); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := bucket(ref.Cluster, ref.Type)
	k := objectKey(ref.Namespace, ref.Name)
	if _, ok := b.objects[key][k]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("%s %q not found", ref.Type.Name, ref.Name))
	}
	delete(b.objects[key], k)
	return nil
}

func (b *Backend) Scale(ctx context.Context, ref resources.Ref, replicas int32) error {
	if err := b.record("scale", ref.Cluster); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Scaled[ref.String()] = replicas
	return nil
}

func (b *Backend) Restart(ctx context.Context, ref resources.Ref) error {
	return b.record("restart", ref.Cluster)
}

func (b *Backend) Cordon(ctx context.Context, cluster, node string, unschedulable bool) error {
	if err := b.record("cordon", cluster); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Cordoned[cluster+"/"+node] = unschedulable
	return nil
}

func (b *Backend) Search(ctx context.Context, q resources.SearchQuery) ([]resources.SearchResult, error) {
	if err := b.record("search", q.Cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []resources.SearchResult
	for key, objs := range b.objects {
		parts := strings.SplitN(key, "|", 2)
		if q.Cluster != "" && parts[0] != q.Cluster {
			continue
		}
		for _, obj := range objs {
			if strings.Contains(obj.GetName(), q.Query) {
				out = append(out, resources.SearchResult{
					Cluster: parts[0], Resource: parts[1], Kind: obj.GetKind(),
					Namespace: obj.GetNamespace(), Name: obj.GetName(),
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (b *Backend) Logs(ctx context.Context, ref resources.Ref, opts resources.LogOptions) (io.ReadCloser, error) {
	if err := b.record("logs", ref.Cluster); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return io.NopCloser(strings.NewReader(b.LogText[ref.Name])), nil
}

func (b *Backend) Exec(ctx context.Context, ref resources.Ref, opts resources.ExecOptions) (resources.Session, error) {
	if err := b.record("exec", ref.Cluster); err != nil {
		return nil, err
	}
	return b.session(ref.Name), nil
}

func (b *Backend) NodeShell(ctx context.Context, cluster, node string) (resources.Session, error) {
	if err := b.record("shell", cluster); err != nil {
		return nil, err
	}
	return b.session(node), nil
}

func (b *Backend) session(name string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := NewSession()
	b.Sessions[name] = s
	return s
}

func (b *Backend) ListUsers(ctx context.Context) ([]resources.User, error) {
	if err := b.record("users", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]resources.User(nil), b.Users...), nil
}

func (b *Backend) CreateUser(ctx context.Context, u resources.User) (*resources.User, error) {
	if err := b.record("createuser", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u.ID = fmt.Sprintf("u%d", len(b.Users)+1)
	b.Users = append(b.Users, u)
	return &u, nil
}

func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	if err := b.record("deleteuser", ""); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.Users {
		if u.ID == id {
			b.Users = append(b.Users[:i], b.Users[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("user not found")
}

func (b *Backend) ListGroups(ctx context.Context) ([]resources.Group, error) {
	if err := b.record("groups", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]resources.Group(nil), b.Groups...), nil
}

func (b *Backend) GetAuditSettings(ctx context.Context) (*resources.AuditSettings, error) {
	if err := b.record("audit", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.Audit
	return &s, nil
}

func (b *Backend) UpdateAuditSettings(ctx context.Context, s resources.AuditSettings) (*resources.AuditSettings, error) {
	if err := b.record("updateaudit", ""); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Audit = s
	return &s, nil
}

var _ resources.Backend = (*Backend)(nil)
