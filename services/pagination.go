package services

import "strconv"

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// OutOfRange decides what an out-of-range page number resolves to.
type OutOfRange int

const (
	// FirstPage sends callers back to page 1 (search).
	FirstPage OutOfRange = iota
	// LastPage clamps to the final page (feed).
	LastPage
)

// ParsePage reads a page query value; anything that is not a positive
// integer becomes 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages is never below 1 so an empty result still has a first page.
func NumPages(total int64, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ResolvePage applies the out-of-range policy to a requested page.
func ResolvePage(requested int, total int64, size int, policy OutOfRange) int {
	last := NumPages(total, size)
	switch {
	case requested < 1:
		return 1
	case requested > last && policy == LastPage:
		return last
	case requested > last:
		return 1
	}
	return requested
}

func newPage[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := NumPages(total, size)
	return Page[T]{
		Items:       items,
		Page:        page,
		PageSize:    size,
		Total:       total,
		NumPages:    pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

// MapPage converts the items of p, keeping its position metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:       items,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Total:       p.Total,
		NumPages:    p.NumPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

func offset(page, size int) int {
	return (page - 1) * size
}
