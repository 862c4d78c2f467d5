// Package pages turns Kubernetes objects into table rows and detail fields,
// one Page per resource type.
package pages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/table"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// Field is one labelled value on a detail page
type Field struct {
	Section string
	Label   string
	Value   string
}

type cellsFunc func(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell

type overviewFunc func(obj *unstructured.Unstructured, now time.Time) []Field

// Page knows how to present one resource type
type Page struct {
	Resource string
	// Columns between NAME/NAMESPACE and AGE
	Columns  []table.Column
	cells    cellsFunc
	overview overviewFunc
	template string
}

var registry = map[string]*Page{}

func register(p *Page) {
	registry[p.Resource] = p
}

// For returns the page for rt, or a generic one
func For(rt resources.ResourceType) *Page {
	if p, ok := registry[rt.Name]; ok && !rt.Custom {
		return p
	}
	return &Page{Resource: rt.Name}
}

// Registered lists the resource names that have a dedicated page
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func col(key, title string, width int) table.Column {
	return table.Column{Key: key, Title: title, Width: width, Sortable: true}
}

func numCol(key, title string, width int) table.Column {
	return table.Column{Key: key, Title: title, Width: width, Sortable: true, Align: table.AlignRight}
}

// TableColumns returns the full column set: NAME, NAMESPACE when the type
// is namespaced, CLUSTER in multi-cluster views, the page columns, AGE
func (p *Page) TableColumns(namespaced, multiCluster bool) []table.Column {
	cols := []table.Column{col(table.KeyName, "NAME", 32)}
	if namespaced {
		cols = append(cols, col(table.KeyNamespace, "NAMESPACE", 16))
	}
	if multiCluster {
		cols = append(cols, col(table.KeyCluster, "CLUSTER", 14))
	}
	cols = append(cols, p.Columns...)
	return append(cols, numCol(table.KeyAge, "AGE", 6))
}

// Row builds the table row of obj
func (p *Page) Row(cluster string, obj *unstructured.Unstructured, now time.Time) table.Row {
	created := obj.GetCreationTimestamp().Time
	cells := map[string]table.Cell{
		table.KeyName:      table.Text(obj.GetName()),
		table.KeyNamespace: table.Text(obj.GetNamespace()),
		table.KeyCluster:   table.Text(cluster),
		// Older objects sort as larger ages
		table.KeyAge: {Text: format.FormatAge(created, now), Sort: -created.Unix()},
	}
	if p.cells != nil {
		for k, v := range p.cells(obj, now) {
			cells[k] = v
		}
	}
	return table.Row{
		ID:      rowID(cluster, obj),
		Cluster: cluster,
		Cells:   cells,
		Object:  obj,
	}
}

func rowID(cluster string, obj *unstructured.Unstructured) string {
	if uid := string(obj.GetUID()); uid != "" {
		return cluster + "/" + uid
	}
	return cluster + "/" + obj.GetNamespace() + "/" + obj.GetName()
}

// Rows builds rows for every item of a list
func (p *Page) Rows(cluster string, items []unstructured.Unstructured, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for i := range items {
		rows = append(rows, p.Row(cluster, &items[i], now))
	}
	return rows
}

// Overview returns the detail fields: metadata first, then the
// type specific sections
func (p *Page) Overview(obj *unstructured.Unstructured, now time.Time) []Field {
	fields := metadataFields(obj, now)
	if p.overview != nil {
		fields = append(fields, p.overview(obj, now)...)
	}
	return fields
}

func metadataFields(obj *unstructured.Unstructured, now time.Time) []Field {
	const section = "Metadata"
	fields := []Field{
		{section, "Name", obj.GetName()},
	}
	if ns := obj.GetNamespace(); ns != "" {
		fields = append(fields, Field{section, "Namespace", ns})
	}
	fields = append(fields,
		Field{section, "Kind", obj.GetKind()},
		Field{section, "API Version", obj.GetAPIVersion()},
		Field{section, "Created", fmt.Sprintf("%s (%s ago)", obj.GetCreationTimestamp().UTC().Format(time.RFC3339), format.FormatAge(obj.GetCreationTimestamp().Time, now))},
	)
	if uid := obj.GetUID(); uid != "" {
		fields = append(fields, Field{section, "UID", string(uid)})
	}
	if labels := obj.GetLabels(); len(labels) > 0 {
		fields = append(fields, Field{section, "Labels", joinMap(labels)})
	}
	if ann := obj.GetAnnotations(); len(ann) > 0 {
		fields = append(fields, Field{section, "Annotations", fmt.Sprintf("%d", len(ann))})
	}
	if owners := obj.GetOwnerReferences(); len(owners) > 0 {
		var parts []string
		for _, o := range owners {
			parts = append(parts, o.Kind+"/"+o.Name)
		}
		fields = append(fields, Field{section, "Owners", strings.Join(parts, ", ")})
	}
	return fields
}

// decode converts obj into a typed API struct
func decode[T any](obj *unstructured.Unstructured) (*T, bool) {
	var out T
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &out); err != nil {
		return nil, false
	}
	return &out, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinMap(m map[string]string) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}

func count(n int64) table.Cell {
	return table.Cell{Text: fmt.Sprintf("%d", n), Sort: n}
}

func ratio(a, b int64) table.Cell {
	return table.Cell{Text: fmt.Sprintf("%d/%d", a, b), Sort: a}
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

func timeCell(t time.Time, now time.Time) table.Cell {
	if t.IsZero() {
		return table.Cell{Text: "<none>"}
	}
	return table.Cell{Text: format.FormatAge(t, now), Sort: -t.Unix()}
}
