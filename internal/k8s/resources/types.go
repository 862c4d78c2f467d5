package resources

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Cluster is one cluster known to the backend
type Cluster struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Default bool   `json:"default,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListOptions narrows a list request
type ListOptions struct {
	Namespace     string
	LabelSelector string
	FieldSelector string
	Limit         int64
	Continue      string
}

// Query encodes the options as console API query parameters. The namespace
// is part of the path and is not included.
func (o ListOptions) Query() url.Values {
	q := url.Values{}
	if o.LabelSelector != "" {
		q.Set("labelSelector", o.LabelSelector)
	}
	if o.FieldSelector != "" {
		q.Set("fieldSelector", o.FieldSelector)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.FormatInt(o.Limit, 10))
	}
	if o.Continue != "" {
		q.Set("continue", o.Continue)
	}
	return q
}

// Key is a stable cache key fragment
func (o ListOptions) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", o.Namespace, o.LabelSelector, o.FieldSelector, o.Limit, o.Continue)
}

// List is one page of objects
type List struct {
	Items           []unstructured.Unstructured
	Continue        string
	ResourceVersion string
}

// Ref identifies a single object
type Ref struct {
	Cluster   string
	Type      ResourceType
	Namespace string
	Name      string
}

// String renders the ref as cluster/resource/namespace/name
func (r Ref) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s/%s", r.Cluster, r.Type.Ref(), r.Name)
	}
	return fmt.Sprintf("%s/%s/%s/%s", r.Cluster, r.Type.Ref(), r.Namespace, r.Name)
}

// RefFor builds the ref of an object of type rt in cluster
func RefFor(cluster string, rt ResourceType, obj *unstructured.Unstructured) Ref {
	ref := Ref{Cluster: cluster, Type: rt, Name: obj.GetName()}
	if rt.Namespaced {
		ref.Namespace = obj.GetNamespace()
	}
	return ref
}

// LogOptions controls a pod log request
type LogOptions struct {
	Container    string
	TailLines    int64
	SinceSeconds int64
	Previous     bool
	Timestamps   bool
	Follow       bool
}

// Query encodes the options as console API query parameters
func (o LogOptions) Query() url.Values {
	q := url.Values{}
	if o.Container != "" {
		q.Set("container", o.Container)
	}
	if o.TailLines > 0 {
		q.Set("tailLines", strconv.FormatInt(o.TailLines, 10))
	}
	if o.SinceSeconds > 0 {
		q.Set("sinceSeconds", strconv.FormatInt(o.SinceSeconds, 10))
	}
	if o.Previous {
		q.Set("previous", "true")
	}
	if o.Timestamps {
		q.Set("timestamps", "true")
	}
	if o.Follow {
		q.Set("follow", "true")
	}
	return q
}

// ExecOptions controls a pod shell session
type ExecOptions struct {
	Container string
	Command   []string
	TTY       bool
}

// DefaultShell is used when no command is given
var DefaultShell = []string{"/bin/sh"}

// SearchQuery is a global search request
type SearchQuery struct {
	Query   string
	Cluster string
	Limit   int
}

// SearchResult is one matching object
type SearchResult struct {
	Cluster   string `json:"cluster"`
	Resource  string `json:"resource"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

// User is a console user account
type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Groups    []string  `json:"groups,omitempty"`
	Admin     bool      `json:"admin,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Group is a console user group
type Group struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// AuditSettings controls what the console backend records
type AuditSettings struct {
	Enabled       bool     `json:"enabled"`
	RetentionDays int      `json:"retentionDays"`
	LogReads      bool     `json:"logReads"`
	Resources     []string `json:"resources,omitempty"`
	ExcludedUsers []string `json:"excludedUsers,omitempty"`
}
