package types

// Page is one slice of an ordered collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// NewPage builds a page and derives TotalPages from total and pageSize.
// Items is never nil so an empty page encodes as [].
func NewPage[T any](items []T, pageNumber, pageSize, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
		Total:      total,
	}
}

// TotalPages returns ceil(total/pageSize), or 0 for an empty collection or non-positive size.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Offset converts a 1-based page number to a zero-based item offset.
func Offset(pageNumber, pageSize int) int {
	if pageNumber < 1 {
		return 0
	}
	return (pageNumber - 1) * pageSize
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.PageNumber < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.PageNumber > 1 }

// Beyond reports whether the page lies past the last page.
func (p Page[T]) Beyond() bool { return p.PageNumber > p.TotalPages }
