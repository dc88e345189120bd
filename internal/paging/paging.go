// Package paging implements forgiving page-number pagination: a bad page
// number never errors, it is clamped to a page that exists.
package paging

import "strconv"

const (
	ListingsPerPage   = 9
	NeighboursPerPage = 12
	FavoritesPerPage  = 12
)

// Page describes the slice of a result set that should be returned.
type Page struct {
	Number int
	Size   int
	Total  int64
	Pages  int
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Bounds returns the [start, end) indexes of the page within a slice of Total items.
func (p Page) Bounds() (int, int) {
	start := p.Offset()
	end := start + p.Size
	if int64(end) > p.Total {
		end = int(p.Total)
	}
	if start > end {
		start = end
	}
	return start, end
}

// Resolve parses a raw page parameter against a result set of total items.
// Missing or non-numeric values select the first page; numbers below one or
// past the end select the last page. An empty set still has one page.
func Resolve(raw string, size int, total int64) Page {
	pages := 1
	if total > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}

	number := 1
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			number = n
		}
	}
	if number < 1 || number > pages {
		number = pages
	}

	return Page{Number: number, Size: size, Total: total, Pages: pages}
}
