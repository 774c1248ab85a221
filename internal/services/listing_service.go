package services

import (
	"context"
	"strings"

	"txdash/internal/domain"
	"txdash/internal/repos"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type ListingService struct {
	Store repos.RecordStore
}

func NewListingService(store repos.RecordStore) *ListingService {
	return &ListingService{Store: store}
}

// All returns every record, unpaginated.
func (s *ListingService) All(ctx context.Context) ([]domain.Record, error) {
	recs, err := s.Store.All(ctx)
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, err
}

// Page returns page (1-based) of perPage records matching search. Pages
// past the end are empty, not errors.
func (s *ListingService) Page(ctx context.Context, search string, page, perPage int) ([]domain.Record, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	offset := (page - 1) * perPage
	recs, err := s.Store.Page(ctx, strings.TrimSpace(search), perPage, offset)
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, err
}
