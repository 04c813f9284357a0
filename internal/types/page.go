package types

import (
	"math"
	"strconv"
)

// DefaultPageSize is the number of recipes shown per listing page.
const DefaultPageSize = 12

// Page describes one window of a paginated listing.
type Page struct {
	Number int
	Size   int
	Offset int
}

// NewPage builds a Page for the given 1-based page number. Numbers below 1
// fall back to page 1. There is no upper bound; a page past the end of the
// data simply yields an empty result set.
// maxPageNumber keeps the offset multiplication below math.MaxInt. Pages
// this deep are far past any data, so clamping still yields an empty set.
const maxPageNumber = math.MaxInt / DefaultPageSize

func NewPage(number int) Page {
	if number < 1 {
		number = 1
	}
	if number > maxPageNumber {
		number = maxPageNumber
	}
	return Page{
		Number: number,
		Size:   DefaultPageSize,
		Offset: (number - 1) * DefaultPageSize,
	}
}

// ParsePage parses a raw "page" query value, failing closed to page 1 when
// the value is absent or not a number.
func ParsePage(raw string) Page {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return NewPage(1)
	}
	return NewPage(n)
}
