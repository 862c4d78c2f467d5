// Package router maps console paths to named routes.
package router

import (
	"net/url"
	"strings"

	"github.com/katyella/kconsole/internal/k8s/resources"
)

// Route names
const (
	Home      = "home"
	Clusters  = "clusters"
	List      = "list"
	ListNS    = "list-ns"
	Detail    = "detail"
	DetailNS  = "detail-ns"
	Logs      = "logs"
	Exec      = "exec"
	NodeShell = "node-shell"
	Aggregate = "aggregate"
	Search    = "search"
	Users     = "users"
	Groups    = "groups"
	Audit     = "audit"
)

// Param names
const (
	ParamCluster   = "cluster"
	ParamNamespace = "namespace"
	ParamResource  = "resource"
	ParamName      = "name"
)

// Route is a named path pattern. Segments starting with ':' are parameters.
type Route struct {
	Name     string
	Pattern  string
	segments []string
}

// Match is the result of resolving a path
type Match struct {
	Route  string
	Params map[string]string
	Query  url.Values
}

// Param returns a path parameter or ""
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Resource resolves the resource parameter through the registry
func (m Match) Resource() (resources.ResourceType, bool) {
	name := m.Params[ParamResource]
	if name == "" {
		return resources.ResourceType{}, false
	}
	return resources.Lookup(name)
}

// Specific patterns come before the generic ones they overlap with.
var routes = compile([]Route{
	{Name: Home, Pattern: "/"},
	{Name: Clusters, Pattern: "/clusters"},
	{Name: Logs, Pattern: "/clusters/:cluster/namespaces/:namespace/pods/:name/logs"},
	{Name: Exec, Pattern: "/clusters/:cluster/namespaces/:namespace/pods/:name/exec"},
	{Name: NodeShell, Pattern: "/clusters/:cluster/nodes/:name/shell"},
	{Name: DetailNS, Pattern: "/clusters/:cluster/namespaces/:namespace/:resource/:name"},
	{Name: ListNS, Pattern: "/clusters/:cluster/namespaces/:namespace/:resource"},
	{Name: Detail, Pattern: "/clusters/:cluster/:resource/:name"},
	{Name: List, Pattern: "/clusters/:cluster/:resource"},
	{Name: Aggregate, Pattern: "/all/:resource"},
	{Name: Search, Pattern: "/search"},
	{Name: Users, Pattern: "/users"},
	{Name: Groups, Pattern: "/groups"},
	{Name: Audit, Pattern: "/audit/settings"},
})

func compile(rs []Route) []Route {
	for i := range rs {
		rs[i].segments = split(rs[i].Pattern)
	}
	return rs
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Routes returns the route table in match order
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Resolve maps path to the first route whose pattern fits. A resource
// parameter must name a known type; short names are normalized to the
// canonical reference.
func Resolve(path string) (Match, bool) {
	rawPath, rawQuery, _ := strings.Cut(path, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	segs := split(rawPath)

	for _, r := range routes {
		params, ok := r.match(segs)
		if !ok {
			continue
		}
		if name, has := params[ParamResource]; has {
			rt, found := resources.Lookup(name)
			if !found {
				continue
			}
			params[ParamResource] = rt.Ref()
		}
		return Match{Route: r.Name, Params: params, Query: query}, true
	}
	return Match{}, false
}

func (r Route) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(r.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, want := range r.segments {
		got, err := url.PathUnescape(segs[i])
		if err != nil || got == "" {
			return nil, false
		}
		if name, ok := strings.CutPrefix(want, ":"); ok {
			params[name] = got
			continue
		}
		if got != want {
			return nil, false
		}
	}
	return params, true
}

// Build renders the path of a named route. Unknown routes build "/".
func Build(name string, params map[string]string, query url.Values) string {
	var route *Route
	for i := range routes {
		if routes[i].Name == name {
			route = &routes[i]
			break
		}
	}
	if route == nil {
		return "/"
	}

	parts := make([]string, 0, len(route.segments))
	for _, seg := range route.segments {
		if p, ok := strings.CutPrefix(seg, ":"); ok {
			seg = url.PathEscape(params[p])
		}
		parts = append(parts, seg)
	}
	path := "/" + strings.Join(parts, "/")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path
}

// ListPath is the list route for a resource, namespaced when namespace is set
func ListPath(cluster, namespace, resource string) string {
	if namespace == "" {
		return Build(List, map[string]string{ParamCluster: cluster, ParamResource: resource}, nil)
	}
	return Build(ListNS, map[string]string{ParamCluster: cluster, ParamNamespace: namespace, ParamResource: resource}, nil)
}

// DetailPath is the detail route of one object
func DetailPath(cluster, namespace, resource, name string) string {
	params := map[string]string{ParamCluster: cluster, ParamResource: resource, ParamName: name}
	if namespace == "" {
		return Build(Detail, params, nil)
	}
	params[ParamNamespace] = namespace
	return Build(DetailNS, params, nil)
}
