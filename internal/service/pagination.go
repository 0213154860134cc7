package service

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 100

// Page selects a 1-based page of Limit items.
type Page struct {
	Number int
	Limit  int
}

// Normalize fills in defaults and clamps out-of-range values.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Paged is one page of results plus the total number of matching rows.
type Paged[T any] struct {
	Count   int64
	Results []T
}
