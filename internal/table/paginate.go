package table

import "github.com/katyella/kconsole/internal/constants"

// Paginator tracks the current page over a number of items
type Paginator struct {
	page  int
	size  int
	total int
}

// NewPaginator creates a paginator with the given page size
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = constants.DefaultPageSize
	}
	return &Paginator{size: size}
}

// Page is the zero-based current page
func (p *Paginator) Page() int { return p.page }

// Size is the page size
func (p *Paginator) Size() int { return p.size }

// Total is the item count
func (p *Paginator) Total() int { return p.total }

// TotalPages is never less than one
func (p *Paginator) TotalPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.size - 1) / p.size
}

// SetTotal updates the item count and clamps the page
func (p *Paginator) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.total = n
	p.clamp()
}

// SetSize changes the page size and clamps the page
func (p *Paginator) SetSize(size int) {
	if size <= 0 {
		return
	}
	p.size = size
	p.clamp()
}

// CycleSize moves to the next entry of constants.PageSizes
func (p *Paginator) CycleSize() int {
	next := constants.PageSizes[0]
	for i, s := range constants.PageSizes {
		if s == p.size && i+1 < len(constants.PageSizes) {
			next = constants.PageSizes[i+1]
			break
		}
	}
	p.SetSize(next)
	return next
}

// SetPage jumps to page, clamped into range
func (p *Paginator) SetPage(page int) {
	p.page = page
	p.clamp()
}

func (p *Paginator) clamp() {
	if last := p.TotalPages() - 1; p.page > last {
		p.page = last
	}
	if p.page < 0 {
		p.page = 0
	}
}

func (p *Paginator) Next()  { p.SetPage(p.page + 1) }
func (p *Paginator) Prev()  { p.SetPage(p.page - 1) }
func (p *Paginator) First() { p.SetPage(0) }
func (p *Paginator) Last()  { p.SetPage(p.TotalPages() - 1) }

// Range returns the [start, end) item indexes of the current page
func (p *Paginator) Range() (int, int) {
	start := p.page * p.size
	if start > p.total {
		start = p.total
	}
	end := start + p.size
	if end > p.total {
		end = p.total
	}
	return start, end
}
