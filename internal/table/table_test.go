package table

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func podRow(cluster, namespace, name string, restarts int64, labels map[string]string) Row {
	obj := &unstructured.Unstructured{}
	obj.SetAPIVersion("v1")
	obj.SetKind("Pod")
	obj.SetName(name)
	obj.SetNamespace(namespace)
	obj.SetLabels(labels)
	_ = unstructured.SetNestedField(obj.Object, "Running", "status", "phase")
	return Row{
		ID:      cluster + "/" + namespace + "/" + name,
		Cluster: cluster,
		Object:  obj,
		Cells: map[string]Cell{
			KeyName:      Text(name),
			KeyNamespace: Text(namespace),
			"restarts":   {Text: fmt.Sprint(restarts), Sort: restarts},
		},
	}
}

func names(rows []Row) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Name())
	}
	return out
}

func TestCompare(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b Cell
		want int
	}{
		{name: "int64", a: Cell{Sort: int64(2)}, b: Cell{Sort: int64(10)}, want: -1},
		{name: "float", a: Cell{Sort: 2.5}, b: Cell{Sort: 1.5}, want: 1},
		{name: "time", a: Cell{Sort: now}, b: Cell{Sort: now}, want: 0},
		{name: "text is case-insensitive", a: Text("Beta"), b: Text("alpha"), want: 1},
		{name: "numbers as text", a: Text("10"), b: Text("9"), want: -1},
		{name: "mixed types fall back to text", a: Cell{Text: "b", Sort: int64(1)}, b: Cell{Text: "a", Sort: "x"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestSortRows_MissingLast(t *testing.T) {
	rows := []Row{
		{ID: "a", Cells: map[string]Cell{KeyName: Text("a")}},
		{ID: "b", Cells: map[string]Cell{KeyName: Text("b"), "x": {Sort: int64(2)}}},
		{ID: "c", Cells: map[string]Cell{KeyName: Text("c"), "x": {Sort: int64(1)}}},
	}
	SortRows(rows, "x", Ascending)
	assert.Equal(t, []string{"c", "b", "a"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	SortRows(rows, "x", Descending)
	assert.Equal(t, []string{"b", "c", "a"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestFilter(t *testing.T) {
	rows := []Row{
		podRow("dev", "shop", "checkout-api", 0, map[string]string{"app": "checkout", "tier": "web"}),
		podRow("dev", "shop", "checkout", 3, map[string]string{"app": "checkout"}),
		podRow("prod", "billing", "invoice-worker", 1, map[string]string{"app": "invoice"}),
	}

	tests := []struct {
		query string
		typ   FilterType
		want  []string
	}{
		{query: "", typ: FilterContains, want: []string{"checkout-api", "checkout", "invoice-worker"}},
		{query: "CHECK", typ: FilterContains, want: []string{"checkout-api", "checkout"}},
		{query: "billing", typ: FilterContains, want: []string{"invoice-worker"}},
		{query: "=checkout", typ: FilterExact, want: []string{"checkout"}},
		{query: "/-(api|worker)$/", typ: FilterRegex, want: []string{"checkout-api", "invoice-worker"}},
		{query: "l:app=checkout,tier=web", typ: FilterLabel, want: []string{"checkout-api"}},
		{query: "l:app!=checkout", typ: FilterLabel, want: []string{"invoice-worker"}},
		{query: `?cluster == "prod"`, typ: FilterCEL, want: []string{"invoice-worker"}},
		{query: `?ns == "shop" && name.startsWith("checkout-")`, typ: FilterCEL, want: []string{"checkout-api"}},
		{query: `?object.metadata.namespace == "billing"`, typ: FilterCEL, want: []string{"invoice-worker"}},
		{query: `?object.status.phase == "Running"`, typ: FilterCEL, want: []string{"checkout-api", "checkout", "invoice-worker"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := ParseFilter(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, f.Type())

			got, err := f.Apply(rows)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	tests := []string{
		"/([a-z/",
		"?name ==",
		`?name + "x"`,
		"l:app in (",
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			_, err := ParseFilter(q)
			assert.Error(t, err)
		})
	}
}

func TestFilter_CELEvaluationErrorExcludesRow(t *testing.T) {
	rows := []Row{podRow("dev", "shop", "api", 0, nil)}
	f, err := ParseFilter(`?object.spec.nodeName == "n1"`)
	require.NoError(t, err)

	got, err := f.Apply(rows)
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestPaginator(t *testing.T) {
	p := NewPaginator(10)
	assert.Equal(t, 1, p.TotalPages())

	p.SetTotal(25)
	assert.Equal(t, 3, p.TotalPages())
	p.Last()
	start, end := p.Range()
	assert.Equal(t, []int{20, 25}, []int{start, end})

	p.Next()
	assert.Equal(t, 2, p.Page())

	p.SetTotal(11)
	assert.Equal(t, 1, p.Page())

	p.SetSize(50)
	assert.Equal(t, 0, p.Page())

	p.First()
	p.Prev()
	assert.Equal(t, 0, p.Page())

	p.SetTotal(0)
	start, end = p.Range()
	assert.Equal(t, []int{0, 0}, []int{start, end})
}

func TestPaginator_CycleSize(t *testing.T) {
	p := NewPaginator(20)
	assert.Equal(t, 50, p.CycleSize())
	assert.Equal(t, 100, p.CycleSize())
	assert.Equal(t, 10, p.CycleSize())
}

func TestWidths(t *testing.T) {
	w := NewWidths([]Column{
		{Key: "name", Width: 30},
		{Key: "status", Width: 10, MinWidth: 8},
		{Key: "age", Width: 2},
	})
	assert.Equal(t, 4, w.Width("age"))
	assert.Equal(t, 30+10+4+2, w.Sum())

	assert.Equal(t, 8, w.Resize("status", -5))
	assert.Equal(t, 12, w.Resize("status", 4))
	assert.Equal(t, 0, w.Resize("missing", 1))

	w.Reset()
	assert.Equal(t, []int{30, 10, 4}, w.Slice())

	w.Fit(30)
	assert.Equal(t, 30, w.Sum())
	assert.Equal(t, []int{14, 10, 4}, w.Slice())

	w.Fit(5)
	assert.Equal(t, []int{4, 8, 4}, w.Slice())
}

func TestState(t *testing.T) {
	columns := []Column{
		{Key: KeyName, Title: "NAME", Width: 20, Sortable: true},
		{Key: "restarts", Title: "RESTARTS", Width: 8, Sortable: true},
	}
	s := NewState(columns, 10)

	var rows []Row
	for i := 0; i < 25; i++ {
		rows = append(rows, podRow("dev", "ns", fmt.Sprintf("pod-%02d", i), int64(i%5), nil))
	}
	s.SetRows(rows)
	assert.Len(t, s.Visible(), 10)
	assert.Equal(t, "pod-00", s.Visible()[0].Name())

	s.ToggleSort(KeyName)
	key, dir := s.Sort()
	assert.Equal(t, KeyName, key)
	assert.Equal(t, Descending, dir)
	assert.Equal(t, "pod-24", s.Visible()[0].Name())

	s.NextPage()
	s.NextPage()
	assert.Len(t, s.Visible(), 5)

	require.NoError(t, s.SetFilter("pod-1"))
	assert.Equal(t, 0, s.Pager().Page())
	assert.Len(t, s.Filtered(), 10)

	assert.Error(t, s.SetFilter("/(/"))
	assert.Equal(t, "pod-1", s.Filter().Raw())
}

func TestState_CursorFollowsSelection(t *testing.T) {
	s := NewState([]Column{{Key: KeyName, Width: 10}}, 10)
	s.SetRows([]Row{
		podRow("dev", "ns", "a", 0, nil),
		podRow("dev", "ns", "b", 0, nil),
		podRow("dev", "ns", "c", 0, nil),
	})
	s.MoveCursor(2)
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.Name())

	s.SetRows([]Row{
		podRow("dev", "ns", "0", 0, nil),
		podRow("dev", "ns", "c", 0, nil),
	})
	sel, ok = s.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.Name())

	s.SetRows(nil)
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Cursor())

	s.MoveCursor(5)
	assert.Equal(t, 0, s.Cursor())
}
