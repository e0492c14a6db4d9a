package models

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination is returned alongside list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PageWindow clamps a requested page and size: page starts at 1, size defaults to 20 and is
// capped at 100.
func PageWindow(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

// NewPagination builds pagination metadata for the clamped window.
func NewPagination(page, size, total int) *Pagination {
	page, size = PageWindow(page, size)
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
