package table

import (
	"cmp"
	"sort"
	"strings"
	"time"
)

// Direction is a sort direction
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Indicator is the arrow shown next to the sorted column title
func (d Direction) Indicator() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}

// Compare orders two cells: negative when a sorts before b
func Compare(a, b Cell) int {
	switch av := a.Sort.(type) {
	case int64:
		if bv, ok := b.Sort.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case int:
		if bv, ok := b.Sort.(int); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.Sort.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.Sort.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.Sort.(string); ok {
			return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
		}
	}
	return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
}

// SortRows sorts rows in place by the cell under key. Rows without the
// cell go last in either direction.
func SortRows(rows []Row, key string, dir Direction) {
	if key == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Cells[key]
		b, bok := rows[j].Cells[key]
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		c := Compare(a, b)
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
}
