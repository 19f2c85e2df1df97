package shared

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

// MaxPage bounds page numbers so that page*perPage stays far below math.MaxInt.
const MaxPage = 1_000_000

// ErrPageOutOfRange rejects a page beyond MaxPage.
var ErrPageOutOfRange = fmt.Errorf("page out of range: %w", httpx.ErrValidation)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	page, perPage = normalizePage(page, perPage)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageParams reads page and perPage from a query string. Missing or
// malformed values fall back to the defaults; a page past MaxPage fails.
func PageParams(q url.Values) (page, perPage int, err error) {
	page, _ = strconv.Atoi(q.Get("page"))
	perPage, _ = strconv.Atoi(q.Get("perPage"))
	if page > MaxPage {
		return 0, 0, ErrPageOutOfRange
	}
	page, perPage = normalizePage(page, perPage)
	return page, perPage, nil
}

// Offset returns the SQL offset for page.
func Offset(page, perPage int) int {
	page, perPage = normalizePage(page, perPage)
	return (page - 1) * perPage
}

func normalizePage(page, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, perPage
}
