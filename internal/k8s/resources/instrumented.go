package resources

import (
	"context"
	"io"
	"time"

	"github.com/katyella/kconsole/internal/metrics"
	"github.com/rs/zerolog/log"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// InstrumentedBackend records metrics and debug logs for every call
type InstrumentedBackend struct {
	next Backend
}

// NewInstrumentedBackend wraps next
func NewInstrumentedBackend(next Backend) *InstrumentedBackend {
	return &InstrumentedBackend{next: next}
}

func (b *InstrumentedBackend) observe(verb, resource string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.ObserveRequest(b.next.Name(), verb, resource, err, elapsed)
	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("backend", b.next.Name()).Str("verb", verb).Str("resource", resource).Dur("elapsed", elapsed).Msg("backend call")
}

func (b *InstrumentedBackend) Name() string { return b.next.Name() }

func (b *InstrumentedBackend) ListClusters(ctx context.Context) ([]Cluster, error) {
	start := time.Now()
	out, err := b.next.ListClusters(ctx)
	b.observe("list", "clusters", start, err)
	return out, err
}

func (b *InstrumentedBackend) List(ctx context.Context, cluster string, rt ResourceType, opts ListOptions) (*List, error) {
	start := time.Now()
	out, err := b.next.List(ctx, cluster, rt, opts)
	b.observe("list", rt.Ref(), start, err)
	return out, err
}

func (b *InstrumentedBackend) Get(ctx context.Context, ref Ref) (*unstructured.Unstructured, error) {
	start := time.Now()
	out, err := b.next.Get(ctx, ref)
	b.observe("get", ref.Type.Ref(), start, err)
	return out, err
}

func (b *InstrumentedBackend) Create(ctx context.Context, cluster string, rt ResourceType, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	start := time.Now()
	out, err := b.next.Create(ctx, cluster, rt, obj)
	b.observe("create", rt.Ref(), start, err)
	return out, err
}

func (b *InstrumentedBackend) Update(ctx context.Context, ref Ref, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	start := time.Now()
	out, err := b.next.Update(ctx, ref, obj)
	b.observe("update", ref.Type.Ref(), start, err)
	return out, err
}

func (b *InstrumentedBackend) Delete(ctx context.Context, ref Ref) error {
	start := time.Now()
	err := b.next.Delete(ctx, ref)
	b.observe("delete", ref.Type.Ref(), start, err)
	return err
}

func (b *InstrumentedBackend) Scale(ctx context.Context, ref Ref, replicas int32) error {
	start := time.Now()
	err := b.next.Scale(ctx, ref, replicas)
	b.observe("scale", ref.Type.Ref(), start, err)
	return err
}

func (b *InstrumentedBackend) Restart(ctx context.Context, ref Ref) error {
	start := time.Now()
	err := b.next.Restart(ctx, ref)
	b.observe("restart", ref.Type.Ref(), start, err)
	return err
}

func (b *InstrumentedBackend) Cordon(ctx context.Context, cluster, node string, unschedulable bool) error {
	start := time.Now()
	err := b.next.Cordon(ctx, cluster, node, unschedulable)
	b.observe("cordon", "nodes", start, err)
	return err
}

func (b *InstrumentedBackend) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	start := time.Now()
	out, err := b.next.Search(ctx, q)
	b.observe("search", "", start, err)
	return out, err
}

func (b *InstrumentedBackend) Logs(ctx context.Context, ref Ref, opts LogOptions) (io.ReadCloser, error) {
	start := time.Now()
	out, err := b.next.Logs(ctx, ref, opts)
	b.observe("logs", "pods", start, err)
	return out, err
}

func (b *InstrumentedBackend) Exec(ctx context.Context, ref Ref, opts ExecOptions) (Session, error) {
	start := time.Now()
	out, err := b.next.Exec(ctx, ref, opts)
	b.observe("exec", "pods", start, err)
	return out, err
}

func (b *InstrumentedBackend) NodeShell(ctx context.Context, cluster, node string) (Session, error) {
	start := time.Now()
	out, err := b.next.NodeShell(ctx, cluster, node)
	b.observe("shell", "nodes", start, err)
	return out, err
}

func (b *InstrumentedBackend) ListUsers(ctx context.Context) ([]User, error) {
	start := time.Now()
	out, err := b.next.ListUsers(ctx)
	b.observe("list", "users", start, err)
	return out, err
}

func (b *InstrumentedBackend) CreateUser(ctx context.Context, u User) (*User, error) {
	start := time.Now()
	out, err := b.next.CreateUser(ctx, u)
	b.observe("create", "users", start, err)
	return out, err
}

func (b *InstrumentedBackend) DeleteUser(ctx context.Context, id string) error {
	start := time.Now()
	err := b.next.DeleteUser(ctx, id)
	b.observe("delete", "users", start, err)
	return err
}

func (b *InstrumentedBackend) ListGroups(ctx context.Context) ([]Group, error) {
	start := time.Now()
	out, err := b.next.ListGroups(ctx)
	b.observe("list", "groups", start, err)
	return out, err
}

func (b *InstrumentedBackend) GetAuditSettings(ctx context.Context) (*AuditSettings, error) {
	start := time.Now()
	out, err := b.next.GetAuditSettings(ctx)
	b.observe("get", "auditsettings", start, err)
	return out, err
}

func (b *InstrumentedBackend) UpdateAuditSettings(ctx context.Context, s AuditSettings) (*AuditSettings, error) {
	start := time.Now()
	out, err := b.next.UpdateAuditSettings(ctx, s)
	b.observe("update", "auditsettings", start, err)
	return out, err
}
