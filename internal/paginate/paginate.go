// Package paginate slices filtered collections into fixed-size pages.
package paginate

import "fmt"

// DefaultPageSize is the number of jobs shown per page.
const DefaultPageSize = 9

// maxVisiblePages is the width of the page-number widget.
const maxVisiblePages = 5

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

func mustPositive(size int) {
	if size <= 0 {
		panic(fmt.Sprintf("paginate: page size must be positive, got %d", size))
	}
}

// TotalPages returns ceil(total/size). Zero items yield zero pages.
func TotalPages(total, size int) int {
	mustPositive(size)
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Clamp restricts page to [1, totalPages]. With no pages it returns 1.
func Clamp(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Page returns the 1-based page of items, i.e. items[(page-1)*size : page*size]
// bounded by the collection. Out of range pages yield an empty slice.
func Page[T any](items []T, page, size int) []T {
	mustPositive(size)
	if page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Range returns the 1-based positions of the first and last item shown on
// page, as in "Showing first to last of total". Both are zero when total is zero.
func Range(page, size, total int) (first, last int) {
	mustPositive(size)
	if total <= 0 {
		return 0, 0
	}
	page = Clamp(page, TotalPages(total, size))
	first = (page-1)*size + 1
	last = min(page*size, total)
	return first, last
}

// Window returns the page numbers to render for the current page, at most
// five entries wide. Ellipsis entries stand for skipped pages.
func Window(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if totalPages <= maxVisiblePages {
		pages := make([]int, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	current = Clamp(current, totalPages)
	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, Ellipsis, totalPages}
	case current >= totalPages-2:
		return []int{1, Ellipsis, totalPages - 3, totalPages - 2, totalPages - 1, totalPages}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, totalPages}
	}
}
