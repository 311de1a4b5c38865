package models

// Pagination contains metadata for paginated responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination normalises page and size against a default size.
func NewPagination(page, size, total, defaultSize int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
