package page

import "fmt"

// Page is a contiguous (skip, limit) window over an ordered result.
type Page struct {
	skip  int64
	limit int64
}

// New validates and creates a Page.
func New(skip, limit int64) (Page, error) {
	if skip < 0 {
		return Page{}, fmt.Errorf("skip must be non-negative, got %d", skip)
	}
	if limit <= 0 {
		return Page{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return Page{skip: skip, limit: limit}, nil
}

// FromNumber converts a 1-based page number and a page size into a window.
func FromNumber(number, size int64) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("page number must be >= 1, got %d", number)
	}
	if size <= 0 {
		return Page{}, fmt.Errorf("page size must be positive, got %d", size)
	}
	return New((number-1)*size, size)
}

// Skip returns the number of leading results to drop.
func (p Page) Skip() int64 { return p.skip }

// Limit returns the maximum number of results.
func (p Page) Limit() int64 { return p.limit }

func (p Page) String() string {
	return fmt.Sprintf("skip=%d limit=%d", p.skip, p.limit)
}
