package screen

import (
	"errors"
	"fmt"
)

// ErrPageOutOfRange is returned by SetPage for a page outside [1, totalPages].
var ErrPageOutOfRange = errors.New("page out of range")

// Pagination holds the current page and the last known page count.
type Pagination struct {
	page       int
	totalPages int
	known      bool
}

func newPagination() Pagination {
	return Pagination{page: 1}
}

// Page returns the current page, starting at 1.
func (p *Pagination) Page() int { return p.page }

// TotalPages returns the last known page count and whether one is known.
func (p *Pagination) TotalPages() (int, bool) { return p.totalPages, p.known }

// Reset goes back to the first page.
func (p *Pagination) Reset() { p.page = 1 }

// Set moves to page n. Before any page count is known only n >= 1 is checked.
func (p *Pagination) Set(n int) error {
	last := max(p.totalPages, 1)
	if n < 1 || (p.known && n > last) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, n, last)
	}
	p.page = n
	return nil
}

func (p *Pagination) setTotal(n int) {
	p.totalPages, p.known = n, true
}
