package bookshelf

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
)

// DefaultPageSize is used when a caller does not provide a page size
var DefaultPageSize = 20

// BookLister is the bulk-read surface the query engine consumes. Keeping it
// this narrow keeps filter/sort/paginate separate from persistence.
type BookLister interface {
	FindAll(ctx context.Context) ([]Book, error)
}

// SearchResult is one deterministic page of matches plus the size of the
// full match set.
type SearchResult struct {
	Records    []Book `json:"records"`
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// BookSearch matches and paginates catalog records
type BookSearch struct {
	store       BookLister
	maxPageSize int
	logger      Logger
}

// NewBookSearch creates a query engine over the given store
func NewBookSearch(store BookLister, cfg Config) *BookSearch {
	return &BookSearch{
		store:       store,
		maxPageSize: cfg.GetMaxPageSize(),
		logger:      defLogger{},
	}
}

func (s *BookSearch) WithLogger(logger Logger) *BookSearch {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Search returns the page of records whose title, author, or normalized
// ISBN contains query (case-insensitive). An empty query matches all
// records. Matches are ordered by id ascending before pagination so pages
// stay stable while the catalog grows: new rows take monotonically larger
// ids and only ever land at the tail. Pages past the end are empty, not an
// error, and TotalCount always reflects the full match set.
func (s *BookSearch) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	books, err := s.store.FindAll(ctx)
	if err != nil {
		s.logger.Error("Search bulk read failed: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read catalog")
	}

	needle := strings.ToLower(strings.TrimSpace(query))

	matches := books[:0:0]
	for _, b := range books {
		if needle == "" || bookMatches(&b, needle) {
			matches = append(matches, b)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID < matches[j].ID
	})

	result := &SearchResult{
		Records:    []Book{},
		TotalCount: len(matches),
		Page:       page,
		PageSize:   pageSize,
	}

	// Bound page before computing the offset: (page-1)*pageSize can wrap
	// around for huge page values, and a past-the-end page is an empty
	// result, not an error.
	totalPages := (len(matches) + pageSize - 1) / pageSize
	if page > totalPages {
		return result, nil
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(matches) {
		end = len(matches)
	}

	result.Records = matches[start:end]
	return result, nil
}

func bookMatches(b *Book, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Author), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(NormalizeISBN(b.ISBN)), needle)
}

// NormalizeISBN strips separators and upcases the check digit so lookups
// and stored values compare on the same form.
func NormalizeISBN(isbn string) string {
	var sb strings.Builder
	for _, r := range isbn {
		switch r {
		case ' ', '-':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return strings.ToUpper(sb.String())
}
