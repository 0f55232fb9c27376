package utils

import "strconv"

// AdminPageSize is the fixed page size for admin list views.
const AdminPageSize = 25

// Pagination describes one page of an admin list view.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// ParsePage parses a 1-indexed page parameter, clamping to 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// NewPagination computes total pages via ceiling division.
func NewPagination(page int, total int64) Pagination {
	pages := int((total + AdminPageSize - 1) / AdminPageSize)
	return Pagination{
		Page:    page,
		PerPage: AdminPageSize,
		Total:   total,
		Pages:   pages,
	}
}

// Offset returns the query offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
