package search

// Pagination is the page metadata returned alongside a result page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes page metadata from the window-aggregate total of
// the first returned row. TotalPages is floored to 1 so that an empty result
// still yields a navigable page range.
func NewPagination(page, limit int, total int64) Pagination {
	pages := (total + int64(limit) - 1) / int64(limit)
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
