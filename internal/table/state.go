package table

// State is the full table model behind a resource list: all rows, the
// active sort and filter, the paginator, column widths and the cursor.
type State struct {
	columns []Column
	rows    []Row

	sortKey string
	sortDir Direction
	filter  *Filter

	filtered  []Row
	filterErr error

	pager  *Paginator
	widths *Widths
	cursor int
}

// NewState creates a table state sorted by name
func NewState(columns []Column, pageSize int) *State {
	s := &State{
		columns: columns,
		sortKey: KeyName,
		pager:   NewPaginator(pageSize),
		widths:  NewWidths(columns),
	}
	s.filter, _ = ParseFilter("")
	return s
}

// Columns returns the column definitions
func (s *State) Columns() []Column { return s.columns }

// SetColumns replaces the columns and resets widths
func (s *State) SetColumns(columns []Column) {
	s.columns = columns
	s.widths = NewWidths(columns)
	if !s.hasColumn(s.sortKey) {
		s.sortKey = KeyName
		s.sortDir = Ascending
	}
	s.refresh()
}

func (s *State) hasColumn(key string) bool {
	for _, c := range s.columns {
		if c.Key == key {
			return true
		}
	}
	return false
}

// SetRows replaces the data. The cursor follows the selected row when it
// is still on the current page.
func (s *State) SetRows(rows []Row) {
	selected, had := s.Selected()
	s.rows = rows
	s.refresh()
	if had {
		s.selectID(selected.ID)
	}
}

// Rows returns all rows before filtering
func (s *State) Rows() []Row { return s.rows }

// SetFilter applies a new filter query and returns to the first page
func (s *State) SetFilter(query string) error {
	f, err := ParseFilter(query)
	if err != nil {
		return err
	}
	s.filter = f
	s.pager.First()
	s.cursor = 0
	s.refresh()
	return nil
}

// Filter returns the active filter
func (s *State) Filter() *Filter { return s.filter }

// FilterError is the first row evaluation error of the last filter pass
func (s *State) FilterError() error { return s.filterErr }

// ToggleSort sorts by key, flipping the direction when key is already the
// sort column
func (s *State) ToggleSort(key string) {
	if key == s.sortKey {
		if s.sortDir == Ascending {
			s.sortDir = Descending
		} else {
			s.sortDir = Ascending
		}
	} else {
		s.sortKey = key
		s.sortDir = Ascending
	}
	s.refresh()
}

// Sort returns the sort column and direction
func (s *State) Sort() (string, Direction) { return s.sortKey, s.sortDir }

func (s *State) refresh() {
	filtered, err := s.filter.Apply(s.rows)
	s.filterErr = err
	sorted := make([]Row, len(filtered))
	copy(sorted, filtered)
	SortRows(sorted, s.sortKey, s.sortDir)
	s.filtered = sorted
	s.pager.SetTotal(len(sorted))
	s.clampCursor()
}

// Filtered returns every row passing the filter, sorted
func (s *State) Filtered() []Row { return s.filtered }

// Visible returns the rows of the current page
func (s *State) Visible() []Row {
	start, end := s.pager.Range()
	return s.filtered[start:end]
}

// Pager exposes the paginator. Call Clamp after changing it directly.
func (s *State) Pager() *Paginator { return s.pager }

// Widths exposes the column widths
func (s *State) Widths() *Widths { return s.widths }

// NextPage moves to the next page and puts the cursor on its first row
func (s *State) NextPage() {
	s.pager.Next()
	s.cursor = 0
}

// PrevPage moves to the previous page
func (s *State) PrevPage() {
	s.pager.Prev()
	s.cursor = 0
}

// SetPageSize changes the page size keeping the selected row in view
func (s *State) SetPageSize(size int) {
	selected, had := s.Selected()
	s.pager.SetSize(size)
	s.clampCursor()
	if had {
		s.selectID(selected.ID)
	}
}

// Cursor is the selected index within the visible page
func (s *State) Cursor() int { return s.cursor }

// MoveCursor moves the selection by delta within the page
func (s *State) MoveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

// SetCursor moves the selection to index i of the page
func (s *State) SetCursor(i int) {
	s.cursor = i
	s.clampCursor()
}

// Clamp re-applies page and cursor bounds
func (s *State) Clamp() {
	s.pager.SetTotal(len(s.filtered))
	s.clampCursor()
}

func (s *State) clampCursor() {
	n := len(s.Visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Selected returns the row under the cursor
func (s *State) Selected() (Row, bool) {
	visible := s.Visible()
	if len(visible) == 0 {
		return Row{}, false
	}
	return visible[s.cursor], true
}

func (s *State) selectID(id string) {
	if id == "" {
		return
	}
	for i, row := range s.filtered {
		if row.ID == id {
			s.pager.SetPage(i / s.pager.Size())
			s.cursor = i % s.pager.Size()
			return
		}
	}
	s.clampCursor()
}
