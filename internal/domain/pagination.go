package domain

// PageRequest describes a page of results.
type PageRequest struct {
	MaxResults int
	PageToken  int
}

// Limit returns the page size, defaulting to 100 and capping at 1000.
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return 100
	case p.MaxResults > 1000:
		return 1000
	default:
		return p.MaxResults
	}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	if p.PageToken < 0 {
		return 0
	}
	return p.PageToken
}
