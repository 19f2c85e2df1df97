package audit

import (
	"context"
	"errors"

	"github.com/lumen-ngo/lumen/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// MaxExportRows caps a single CSV export.
	MaxExportRows = 10000
)

// Store is the persistence port of Service.
type Store interface {
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error)
}

// Service coordinates timeline reads.
type Service struct {
	store Store
}

// NewService builds a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Timeline returns one page of entries. It fetches one extra row to learn
// whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.store == nil {
		return Result{}, errors.New("audit: store not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	if page > shared.MaxPage {
		return Result{}, shared.ErrPageOutOfRange
	}
	rows, err := s.store.Window(ctx, filters, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching entry up to MaxExportRows.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.store == nil {
		return nil, errors.New("audit: store not configured")
	}
	return s.store.Window(ctx, filters, MaxExportRows, 0)
}
