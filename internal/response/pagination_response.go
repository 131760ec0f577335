package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewPagination normalizes page (1-based) and pageSize and computes the
// window over total items. From and To are 1-based and inclusive; both are
// zero for an empty page.
func NewPagination(page, pageSize, total int) *Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + pageSize - 1) / pageSize
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int64(totalPages),
		TotalItems: int64(total),
		HasMore:    page < totalPages,
	}
	start := (page - 1) * pageSize
	if start < total {
		p.From = start + 1
		p.To = min(start+pageSize, total)
	}
	return p
}

// Slice returns the items of s that fall on the page.
func Slice[T any](s []T, p *Pagination) []T {
	if p.From == 0 {
		return []T{}
	}
	return s[p.From-1 : p.To]
}
