package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/table"
	"github.com/katyella/kconsole/internal/ui/styles"
)

// dataTable renders a table.State through the bubbles table and handles
// the shared list keys: movement, sort, paging and column resize
type dataTable struct {
	state  *table.State
	model  btable.Model
	styles *styles.StyleManager
	keys   KeyMap
	width  int
	height int
}

func newDataTable(columns []table.Column, pageSize int, sm *styles.StyleManager, keys KeyMap) *dataTable {
	d := &dataTable{
		state:  table.NewState(columns, pageSize),
		model:  btable.New(btable.WithFocused(true)),
		styles: sm,
		keys:   keys,
	}
	d.applyStyles()
	d.sync()
	return d
}

func (d *dataTable) applyStyles() {
	ls := d.styles.GetListStyles()
	s := btable.DefaultStyles()
	s.Header = ls.Header.Padding(0, 1, 0, 0)
	s.Cell = lipgloss.NewStyle().Padding(0, 1, 0, 0)
	s.Selected = ls.SelectedItem
	d.model.SetStyles(s)
}

// SetColumns swaps the column set, for example when CLUSTER appears
func (d *dataTable) SetColumns(columns []table.Column) {
	d.state.SetColumns(columns)
	d.fit()
	d.sync()
}

// SetRows replaces the data keeping the selection
func (d *dataTable) SetRows(rows []table.Row) {
	d.state.SetRows(rows)
	d.sync()
}

// SetFilter applies a filter query
func (d *dataTable) SetFilter(query string) error {
	if err := d.state.SetFilter(query); err != nil {
		return err
	}
	d.sync()
	return nil
}

// Selected returns the row under the cursor
func (d *dataTable) Selected() (table.Row, bool) {
	return d.state.Selected()
}

func (d *dataTable) SetSize(width, height int) {
	d.width, d.height = width, height
	d.fit()
	d.sync()
}

func (d *dataTable) fit() {
	if d.width > 0 {
		// one padding cell per column on top of the separator
		d.state.Widths().Fit(d.width - len(d.state.Columns()))
	}
}

// currentColumn is the sort column, which is also the one resized
func (d *dataTable) currentColumn() string {
	k, _ := d.state.Sort()
	return k
}

func (d *dataTable) nextSortColumn() {
	cols := d.state.Columns()
	current := d.currentColumn()
	start := 0
	for i, c := range cols {
		if c.Key == current {
			start = i + 1
			break
		}
	}
	for i := 0; i < len(cols); i++ {
		c := cols[(start+i)%len(cols)]
		if c.Sortable {
			d.state.ToggleSort(c.Key)
			return
		}
	}
}

func (d *dataTable) stepPageSize(delta int) {
	size := d.state.Pager().Size()
	idx := 0
	for i, s := range constants.PageSizes {
		if s >= size {
			idx = i
			break
		}
		idx = i
	}
	idx += delta
	if idx < 0 || idx >= len(constants.PageSizes) {
		return
	}
	d.state.SetPageSize(constants.PageSizes[idx])
}

// HandleKey applies a list key and reports whether it was consumed
func (d *dataTable) HandleKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, d.keys.Up):
		d.state.MoveCursor(-1)
	case key.Matches(msg, d.keys.Down):
		d.state.MoveCursor(1)
	case key.Matches(msg, d.keys.Top):
		d.state.SetCursor(0)
	case key.Matches(msg, d.keys.Bottom):
		d.state.SetCursor(len(d.state.Visible()) - 1)
	case key.Matches(msg, d.keys.NextPage):
		d.state.NextPage()
	case key.Matches(msg, d.keys.PrevPage):
		d.state.PrevPage()
	case key.Matches(msg, d.keys.SortNext):
		d.nextSortColumn()
	case key.Matches(msg, d.keys.SortFlip):
		d.state.ToggleSort(d.currentColumn())
	case key.Matches(msg, d.keys.PageSizeUp):
		d.stepPageSize(1)
	case key.Matches(msg, d.keys.PageSizeDown):
		d.stepPageSize(-1)
	case key.Matches(msg, d.keys.Widen):
		d.state.Widths().Resize(d.currentColumn(), constants.ColumnResizeStep)
	case key.Matches(msg, d.keys.Narrow):
		d.state.Widths().Resize(d.currentColumn(), -constants.ColumnResizeStep)
	default:
		return false
	}
	d.sync()
	return true
}

// sync pushes the visible page into the bubbles model
func (d *dataTable) sync() {
	sortKey, dir := d.state.Sort()
	widths := d.state.Widths()
	cols := d.state.Columns()

	bcols := make([]btable.Column, len(cols))
	for i, c := range cols {
		title := c.Title
		if c.Key == sortKey {
			title += dir.Indicator()
		}
		bcols[i] = btable.Column{Title: title, Width: widths.Width(c.Key)}
	}

	visible := d.state.Visible()
	brows := make([]btable.Row, len(visible))
	for i, r := range visible {
		row := make(btable.Row, len(cols))
		for j, c := range cols {
			text := r.Text(c.Key)
			if c.Align == table.AlignRight {
				text = fmt.Sprintf("%*s", widths.Width(c.Key), text)
			}
			row[j] = text
		}
		brows[i] = row
	}

	// Rows must shrink before columns do or the model indexes past them
	d.model.SetRows(nil)
	d.model.SetColumns(bcols)
	d.model.SetRows(brows)
	if d.height > 2 {
		d.model.SetHeight(d.height - 2)
	}
	if d.width > 0 {
		d.model.SetWidth(d.width)
	}
	d.model.SetCursor(d.state.Cursor())
}

// footer summarises paging, sort and filter
func (d *dataTable) footer() string {
	p := d.state.Pager()
	sortKey, dir := d.state.Sort()
	parts := []string{
		fmt.Sprintf("page %d/%d", p.Page()+1, p.TotalPages()),
		fmt.Sprintf("%d rows", p.Total()),
		fmt.Sprintf("%d per page", p.Size()),
		fmt.Sprintf("sort %s %s", sortKey, dir),
	}
	if f := d.state.Filter(); f != nil && f.Active() {
		parts = append(parts, fmt.Sprintf("filter %s %q", f.Type(), f.Raw()))
	}
	if err := d.state.FilterError(); err != nil {
		parts = append(parts, "filter error: "+err.Error())
	}
	return d.styles.GetListStyles().Muted.Render(strings.Join(parts, " · "))
}

func (d *dataTable) View() string {
	// Styles follow theme switches
	d.applyStyles()
	return lipgloss.JoinVertical(lipgloss.Left, d.model.View(), d.footer())
}
