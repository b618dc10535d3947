package model

// PageMeta describes one page of a listing.
type PageMeta struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Page is one page of rows plus its position in the whole result.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPage builds a Page, computing the last page from total and perPage.
func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{Page: page, PerPage: perPage, Total: total, LastPage: last},
	}
}
