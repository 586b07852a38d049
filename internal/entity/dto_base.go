package entity

// Meta carries pagination metadata.
type Meta struct {
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
	Total    int64 `json:"total"`
}

// BaseParams holds the common paging parameters.
type BaseParams struct {
	PageSize int64 `json:"page_size" form:"page_size" query:"page_size"`
	Page     int64 `json:"page" form:"page" query:"page"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging parameters into their allowed range.
func (p *BaseParams) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset of the current page.
func (p BaseParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return int((p.Page - 1) * p.PageSize)
}
