package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"alumnet/internal/models"
	"alumnet/internal/repository"
)

const (
	minSearchTermLength = 2
	maxSearchTermLength = 100
	searchPerType       = 5
	searchHistoryLimit  = 20
)

type SearchService struct {
	searchRepo repository.SearchRepository
}

func NewSearchService(searchRepo repository.SearchRepository) *SearchService {
	return &SearchService{searchRepo: searchRepo}
}

// Search matches users, career fairs, hackathons and jobs. A signed-in
// caller (userID != 0) gets the term recorded in their history.
func (s *SearchService) Search(ctx context.Context, userID uint, term string) ([]models.SearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < minSearchTermLength {
		return []models.SearchResult{}, nil
	}
	if utf8.RuneCountInString(term) > maxSearchTermLength {
		return nil, models.NewValidationError("Search term is too long")
	}

	results, err := s.searchRepo.Search(ctx, term, searchPerType)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		logBestEffort(ctx, "search history write", s.searchRepo.AddHistory(ctx, userID, term))
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}

func (s *SearchService) History(ctx context.Context, userID uint) ([]models.SearchHistory, error) {
	return s.searchRepo.History(ctx, userID, searchHistoryLimit)
}
