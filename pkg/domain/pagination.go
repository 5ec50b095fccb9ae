package domain

// PageRequest describes one page of a listing query.
type PageRequest struct {
	Page int // 1-based page index
	Size int
}

// Offset returns the row offset for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// NewPageRequest converts an absolute zero-based offset into a page request.
//
// The conversion uses truncating division, so an offset that is not aligned to
// a page boundary rounds down to the start of its page: from=5, size=10 behaves
// like from=0. Callers that need exact offsets must align from to multiples of
// size.
func NewPageRequest(from, size int) PageRequest {
	page := 0
	if from > 0 {
		page = from / size
	}
	return PageRequest{Page: page + 1, Size: size}
}
