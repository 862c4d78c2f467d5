package resources

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Category groups resource types in the sidebar
type Category string

const (
	CategoryWorkloads     Category = "Workloads"
	CategoryNetwork       Category = "Network"
	CategoryConfig        Category = "Config"
	CategoryStorage       Category = "Storage"
	CategoryAccessControl Category = "Access Control"
	CategoryCluster       Category = "Cluster"
	CategoryExtensions    Category = "Extensions"
	CategoryCustom        Category = "Custom Resources"
)

// Categories lists categories in display order
var Categories = []Category{
	CategoryWorkloads,
	CategoryNetwork,
	CategoryConfig,
	CategoryStorage,
	CategoryAccessControl,
	CategoryCluster,
	CategoryExtensions,
}

// ResourceType describes one Kubernetes resource the console can list
type ResourceType struct {
	Name       string
	Singular   string
	Kind       string
	Group      string
	Version    string
	Namespaced bool
	ShortNames []string
	Category   Category
	Custom     bool
}

// GVR returns the group/version/resource triple
func (r ResourceType) GVR() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: r.Group, Version: r.Version, Resource: r.Name}
}

// APIVersion returns the apiVersion field value for objects of this type
func (r ResourceType) APIVersion() string {
	if r.Group == "" {
		return r.Version
	}
	return r.Group + "/" + r.Version
}

// Ref is the resource segment used in console API paths: the plural name for
// built-in types, plural.group for custom resources
func (r ResourceType) Ref() string {
	if r.Custom && r.Group != "" {
		return r.Name + "." + r.Group
	}
	return r.Name
}

// Scalable reports whether the type has a scale subresource the console drives
func (r ResourceType) Scalable() bool {
	switch r.Name {
	case "deployments", "statefulsets", "replicasets":
		return true
	}
	return false
}

// Restartable reports whether the type owns a pod template that can be rolled
func (r ResourceType) Restartable() bool {
	switch r.Name {
	case "deployments", "statefulsets", "daemonsets":
		return true
	}
	return false
}

// HasLogs reports whether logs and exec are available for the type
func (r ResourceType) HasLogs() bool {
	return r.Name == "pods"
}

var builtin = []ResourceType{
	{Name: "pods", Singular: "pod", Kind: "Pod", Version: "v1", Namespaced: true, ShortNames: []string{"po"}, Category: CategoryWorkloads},
	{Name: "deployments", Singular: "deployment", Kind: "Deployment", Group: "apps", Version: "v1", Namespaced: true, ShortNames: []string{"deploy"}, Category: CategoryWorkloads},
	{Name: "statefulsets", Singular: "statefulset", Kind: "StatefulSet", Group: "apps", Version: "v1", Namespaced: true, ShortNames: []string{"sts"}, Category: CategoryWorkloads},
	{Name: "daemonsets", Singular: "daemonset", Kind: "DaemonSet", Group: "apps", Version: "v1", Namespaced: true, ShortNames: []string{"ds"}, Category: CategoryWorkloads},
	{Name: "replicasets", Singular: "replicaset", Kind: "ReplicaSet", Group: "apps", Version: "v1", Namespaced: true, ShortNames: []string{"rs"}, Category: CategoryWorkloads},
	{Name: "jobs", Singular: "job", Kind: "Job", Group: "batch", Version: "v1", Namespaced: true, Category: CategoryWorkloads},
	{Name: "cronjobs", Singular: "cronjob", Kind: "CronJob", Group: "batch", Version: "v1", Namespaced: true, ShortNames: []string{"cj"}, Category: CategoryWorkloads},
	{Name: "horizontalpodautoscalers", Singular: "horizontalpodautoscaler", Kind: "HorizontalPodAutoscaler", Group: "autoscaling", Version: "v2", Namespaced: true, ShortNames: []string{"hpa"}, Category: CategoryWorkloads},
	{Name: "poddisruptionbudgets", Singular: "poddisruptionbudget", Kind: "PodDisruptionBudget", Group: "policy", Version: "v1", Namespaced: true, ShortNames: []string{"pdb"}, Category: CategoryWorkloads},

	{Name: "services", Singular: "service", Kind: "Service", Version: "v1", Namespaced: true, ShortNames: []string{"svc"}, Category: CategoryNetwork},
	{Name: "ingresses", Singular: "ingress", Kind: "Ingress", Group: "networking.k8s.io", Version: "v1", Namespaced: true, ShortNames: []string{"ing"}, Category: CategoryNetwork},
	{Name: "endpoints", Singular: "endpoints", Kind: "Endpoints", Version: "v1", Namespaced: true, ShortNames: []string{"ep"}, Category: CategoryNetwork},
	{Name: "networkpolicies", Singular: "networkpolicy", Kind: "NetworkPolicy", Group: "networking.k8s.io", Version: "v1", Namespaced: true, ShortNames: []string{"netpol"}, Category: CategoryNetwork},
	{Name: "routes", Singular: "route", Kind: "Route", Group: "route.openshift.io", Version: "v1", Namespaced: true, Category: CategoryNetwork},

	{Name: "configmaps", Singular: "configmap", Kind: "ConfigMap", Version: "v1", Namespaced: true, ShortNames: []string{"cm"}, Category: CategoryConfig},
	{Name: "secrets", Singular: "secret", Kind: "Secret", Version: "v1", Namespaced: true, Category: CategoryConfig},

	{Name: "persistentvolumes", Singular: "persistentvolume", Kind: "PersistentVolume", Version: "v1", ShortNames: []string{"pv"}, Category: CategoryStorage},
	{Name: "persistentvolumeclaims", Singular: "persistentvolumeclaim", Kind: "PersistentVolumeClaim", Version: "v1", Namespaced: true, ShortNames: []string{"pvc"}, Category: CategoryStorage},
	{Name: "storageclasses", Singular: "storageclass", Kind: "StorageClass", Group: "storage.k8s.io", Version: "v1", ShortNames: []string{"sc"}, Category: CategoryStorage},

	{Name: "serviceaccounts", Singular: "serviceaccount", Kind: "ServiceAccount", Version: "v1", Namespaced: true, ShortNames: []string{"sa"}, Category: CategoryAccessControl},
	{Name: "roles", Singular: "role", Kind: "Role", Group: "rbac.authorization.k8s.io", Version: "v1", Namespaced: true, Category: CategoryAccessControl},
	{Name: "rolebindings", Singular: "rolebinding", Kind: "RoleBinding", Group: "rbac.authorization.k8s.io", Version: "v1", Namespaced: true, Category: CategoryAccessControl},
	{Name: "clusterroles", Singular: "clusterrole", Kind: "ClusterRole", Group: "rbac.authorization.k8s.io", Version: "v1", Category: CategoryAccessControl},
	{Name: "clusterrolebindings", Singular: "clusterrolebinding", Kind: "ClusterRoleBinding", Group: "rbac.authorization.k8s.io", Version: "v1", Category: CategoryAccessControl},

	{Name: "nodes", Singular: "node", Kind: "Node", Version: "v1", ShortNames: []string{"no"}, Category: CategoryCluster},
	{Name: "namespaces", Singular: "namespace", Kind: "Namespace", Version: "v1", ShortNames: []string{"ns"}, Category: CategoryCluster},
	{Name: "events", Singular: "event", Kind: "Event", Version: "v1", Namespaced: true, ShortNames: []string{"ev"}, Category: CategoryCluster},
	{Name: "leases", Singular: "lease", Kind: "Lease", Group: "coordination.k8s.io", Version: "v1", Namespaced: true, Category: CategoryCluster},

	{Name: "customresourcedefinitions", Singular: "customresourcedefinition", Kind: "CustomResourceDefinition", Group: "apiextensions.k8s.io", Version: "v1", ShortNames: []string{"crd", "crds"}, Category: CategoryExtensions},
	{Name: "mutatingwebhookconfigurations", Singular: "mutatingwebhookconfiguration", Kind: "MutatingWebhookConfiguration", Group: "admissionregistration.k8s.io", Version: "v1", Category: CategoryExtensions},
	{Name: "validatingwebhookconfigurations", Singular: "validatingwebhookconfiguration", Kind: "ValidatingWebhookConfiguration", Group: "admissionregistration.k8s.io", Version: "v1", Category: CategoryExtensions},
	{Name: "clusterserviceversions", Singular: "clusterserviceversion", Kind: "ClusterServiceVersion", Group: "operators.coreos.com", Version: "v1alpha1", Namespaced: true, ShortNames: []string{"csv"}, Category: CategoryExtensions},
}

var index = buildIndex()

func buildIndex() map[string]int {
	idx := make(map[string]int)
	for i, rt := range builtin {
		idx[rt.Name] = i
		idx[rt.Singular] = i
		idx[strings.ToLower(rt.Kind)] = i
		for _, short := range rt.ShortNames {
			idx[short] = i
		}
	}
	return idx
}

// Lookup resolves a plural, singular, kind or short name. Names containing a
// dot are treated as custom resources.
func Lookup(name string) (ResourceType, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if i, ok := index[key]; ok {
		return builtin[i], true
	}
	if strings.Contains(key, ".") {
		rt, err := ParseCustom(key)
		if err == nil {
			return rt, true
		}
	}
	return ResourceType{}, false
}

// MustLookup is Lookup for names known to be registered
func MustLookup(name string) ResourceType {
	rt, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("resource type %q is not registered", name))
	}
	return rt
}

// ParseCustom parses "plural.group" or "plural.group/version". The version
// defaults to v1 and the resource is assumed namespaced.
func ParseCustom(ref string) (ResourceType, error) {
	version := "v1"
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		version = ref[i+1:]
		ref = ref[:i]
	}
	dot := strings.Index(ref, ".")
	if dot <= 0 || dot == len(ref)-1 || version == "" {
		return ResourceType{}, fmt.Errorf("custom resource %q must look like plural.group[/version]", ref)
	}
	plural, group := ref[:dot], ref[dot+1:]
	return ResourceType{
		Name:       plural,
		Singular:   plural,
		Group:      group,
		Version:    version,
		Namespaced: true,
		Category:   CategoryCustom,
		Custom:     true,
	}, nil
}

// All returns every built-in resource type in registry order
func All() []ResourceType {
	out := make([]ResourceType, len(builtin))
	copy(out, builtin)
	return out
}

// ByCategory groups built-in types by category
func ByCategory() map[Category][]ResourceType {
	out := make(map[Category][]ResourceType)
	for _, rt := range builtin {
		out[rt.Category] = append(out[rt.Category], rt)
	}
	return out
}

// Names returns every built-in plural name, sorted
func Names() []string {
	names := make([]string, 0, len(builtin))
	for _, rt := range builtin {
		names = append(names, rt.Name)
	}
	sort.Strings(names)
	return names
}
