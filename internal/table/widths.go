package table

import "github.com/katyella/kconsole/internal/constants"

// Widths tracks user adjusted column widths
type Widths struct {
	order    []string
	defaults map[string]int
	min      map[string]int
	current  map[string]int
}

// NewWidths starts from each column's Width
func NewWidths(columns []Column) *Widths {
	w := &Widths{
		defaults: make(map[string]int, len(columns)),
		min:      make(map[string]int, len(columns)),
		current:  make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		minWidth := c.MinWidth
		if minWidth <= 0 {
			minWidth = constants.MinColumnWidth
		}
		width := c.Width
		if width < minWidth {
			width = minWidth
		}
		w.order = append(w.order, c.Key)
		w.defaults[c.Key] = width
		w.min[c.Key] = minWidth
		w.current[c.Key] = width
	}
	return w
}

// Width returns the current width of key
func (w *Widths) Width(key string) int {
	return w.current[key]
}

// Resize grows or shrinks key by delta, never below its minimum
func (w *Widths) Resize(key string, delta int) int {
	width, ok := w.current[key]
	if !ok {
		return 0
	}
	width += delta
	if width < w.min[key] {
		width = w.min[key]
	}
	w.current[key] = width
	return width
}

// Sum returns the total width including one separator between columns
func (w *Widths) Sum() int {
	total := 0
	for _, key := range w.order {
		total += w.current[key]
	}
	if len(w.order) > 1 {
		total += len(w.order) - 1
	}
	return total
}

// Fit shrinks the widest columns one cell at a time until the table fits
// in total or every column is at its minimum
func (w *Widths) Fit(total int) {
	for w.Sum() > total {
		widest := ""
		for _, key := range w.order {
			if w.current[key] <= w.min[key] {
				continue
			}
			if widest == "" || w.current[key] > w.current[widest] {
				widest = key
			}
		}
		if widest == "" {
			return
		}
		w.current[widest]--
	}
}

// Reset restores the default widths
func (w *Widths) Reset() {
	for key, width := range w.defaults {
		w.current[key] = width
	}
}

// Slice returns widths in column order
func (w *Widths) Slice() []int {
	out := make([]int, len(w.order))
	for i, key := range w.order {
		out[i] = w.current[key]
	}
	return out
}
