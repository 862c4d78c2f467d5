package resources

import (
	"context"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ResourceBackend reads and mutates cluster objects
type ResourceBackend interface {
	ListClusters(ctx context.Context) ([]Cluster, error)
	List(ctx context.Context, cluster string, rt ResourceType, opts ListOptions) (*List, error)
	Get(ctx context.Context, ref Ref) (*unstructured.Unstructured, error)
	Create(ctx context.Context, cluster string, rt ResourceType, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)
	Update(ctx context.Context, ref Ref, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, ref Ref) error

	// Actions
	Scale(ctx context.Context, ref Ref, replicas int32) error
	Restart(ctx context.Context, ref Ref) error
	Cordon(ctx context.Context, cluster, node string, unschedulable bool) error

	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
}

// SessionBackend opens streaming sessions
type SessionBackend interface {
	// Logs returns the pod log stream. With opts.Follow it stays open until
	// ctx is cancelled or the reader is closed.
	Logs(ctx context.Context, ref Ref, opts LogOptions) (io.ReadCloser, error)
	Exec(ctx context.Context, ref Ref, opts ExecOptions) (Session, error)
	NodeShell(ctx context.Context, cluster, node string) (Session, error)
}

// AdminBackend manages console users, groups and audit settings
type AdminBackend interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, u User) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	ListGroups(ctx context.Context) ([]Group, error)
	GetAuditSettings(ctx context.Context) (*AuditSettings, error)
	UpdateAuditSettings(ctx context.Context, s AuditSettings) (*AuditSettings, error)
}

// Backend is the full data source behind the console
type Backend interface {
	// Name identifies the backend in logs and metrics
	Name() string
	ResourceBackend
	SessionBackend
	AdminBackend
}

// Session is an interactive shell. Read returns combined stdout and stderr,
// Write sends stdin.
type Session interface {
	io.ReadWriteCloser
	Resize(cols, rows uint16) error
}
