// Package service implements the search operations behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// mergePageSize is the upstream's list page length, used to derive the
// page count of the merged result.
const mergePageSize = 10

// Searcher is the upstream search dependency of SearchService.
type Searcher interface {
	Search(ctx context.Context, params *domain.CompanySearchParams) (*domain.SearchResult, error)
}

// SearchService searches both alternative-service categories and merges
// the results into one list. The upstream only accepts one service type
// per request, so an "all companies" view takes two requests.
type SearchService struct {
	searcher Searcher
	logger   logger.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(searcher Searcher, log logger.Logger) *SearchService {
	return &SearchService{
		searcher: searcher,
		logger:   log,
	}
}

// Search runs the industrial and professional searches in parallel and
// merges them. Companies are tagged with their category; duplicates
// (same code, or same name when the code is missing) keep the industrial
// entry. If either upstream request fails the whole search fails: a
// half-merged list would silently misreport totals.
func (s *SearchService) Search(ctx context.Context, params *domain.CompanySearchParams) (*domain.SearchResult, error) {
	categories := []struct {
		code     string
		category domain.ServiceCategory
	}{
		{domain.CategoryIndustrialCode, domain.CategoryIndustrial},
		{domain.CategoryProfessionalCode, domain.CategoryProfessional},
	}

	results := make([]*domain.SearchResult, len(categories))
	errs := make([]error, len(categories))

	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			categoryParams := params.WithServiceType(code)
			results[i], errs[i] = s.searcher.Search(ctx, &categoryParams)
		}(i, cat.code)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("search %s companies: %w", categories[i].category, err)
		}
	}

	merged := domain.EmptySearchResult()
	seen := make(map[string]struct{})
	for i, result := range results {
		for _, company := range result.Companies {
			company.ServiceType = categories[i].category
			key := company.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged.Companies = append(merged.Companies, company)
		}
	}

	merged.TotalCount = len(merged.Companies)
	merged.TotalPages = (merged.TotalCount + mergePageSize - 1) / mergePageSize
	if merged.TotalPages < 1 {
		merged.TotalPages = 1
	}
	if params.PageIndex > 0 {
		merged.CurrentPage = params.PageIndex
	}

	s.logger.Debug("Merged category searches",
		logger.Int("industrial", len(results[0].Companies)),
		logger.Int("professional", len(results[1].Companies)),
		logger.Int("merged", merged.TotalCount),
	)

	return merged, nil
}
