// Package table holds the data side of resource tables: sorting,
// filtering, pagination, column widths and selection.
package table

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Well known column keys
const (
	KeyName      = "name"
	KeyNamespace = "namespace"
	KeyCluster   = "cluster"
	KeyAge       = "age"
)

// Align is the horizontal alignment of a column
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column
type Column struct {
	Key      string
	Title    string
	Width    int
	MinWidth int
	Sortable bool
	Align    Align
}

// Cell is a rendered value plus the value it sorts by. Sort may be int64,
// float64, time.Time or string. A nil Sort sorts by Text.
type Cell struct {
	Text string
	Sort any
}

// Text builds a cell that sorts by its text
func Text(s string) Cell {
	return Cell{Text: s}
}

// Row is one table row
type Row struct {
	ID      string
	Cluster string
	Cells   map[string]Cell
	Object  *unstructured.Unstructured
}

// Text returns the text of the cell under key
func (r Row) Text(key string) string {
	return r.Cells[key].Text
}

// Name returns the object name
func (r Row) Name() string {
	if r.Object != nil {
		return r.Object.GetName()
	}
	return r.Cells[KeyName].Text
}

// Namespace returns the object namespace
func (r Row) Namespace() string {
	if r.Object != nil {
		return r.Object.GetNamespace()
	}
	return r.Cells[KeyNamespace].Text
}
