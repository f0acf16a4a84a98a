package domain

import "errors"

// Pagination defaults and bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
	// MaxPage keeps Offset far away from integer overflow.
	MaxPage = 1_000_000
)

// SortOrder is the direction of a list query.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Flashcard sort fields.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

var (
	ErrInvalidPage      = errors.New("page must be between 1 and 1000000")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 100")
	ErrInvalidSortBy    = errors.New("sort field must be created_at or updated_at")
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")
)

// Page describes one page of a list result.
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Offset returns the number of rows to skip for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPage applies defaults to page and pageSize and validates them.
// Zero means "use the default".
func NewPage(page, pageSize int) (Page, error) {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	var errs ValidationErrors
	if page < 1 || page > MaxPage {
		errs = append(errs, NewValidationError("page", "must be between 1 and 1000000", ErrInvalidPage))
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		errs = append(errs, NewValidationError("pageSize", "must be between 1 and 100", ErrInvalidPageSize))
	}
	if len(errs) > 0 {
		return Page{}, errs
	}
	return Page{Page: page, PageSize: pageSize}, nil
}

// ListFlashcardsOptions controls flashcard listing.
type ListFlashcardsOptions struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder SortOrder
	Source    *FlashcardSource
}

// Normalize fills in defaults and validates the options.
func (o ListFlashcardsOptions) Normalize() (ListFlashcardsOptions, error) {
	var errs ValidationErrors

	p, err := NewPage(o.Page, o.PageSize)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			errs = append(errs, verrs...)
		}
	}
	o.Page, o.PageSize = p.Page, p.PageSize

	switch o.SortBy {
	case "":
		o.SortBy = SortByCreatedAt
	case SortByCreatedAt, SortByUpdatedAt:
	default:
		errs = append(errs, NewValidationError("sortBy", "must be created_at or updated_at", ErrInvalidSortBy))
	}

	switch o.SortOrder {
	case "":
		o.SortOrder = SortDesc
	case SortAsc, SortDesc:
	default:
		errs = append(errs, NewValidationError("sortOrder", "must be asc or desc", ErrInvalidSortOrder))
	}

	if o.Source != nil && !IsValidSource(*o.Source) {
		errs = append(errs, NewValidationError("source", "must be one of manual, ai-full, ai-edited", ErrInvalidSource))
	}

	if len(errs) > 0 {
		return ListFlashcardsOptions{}, errs
	}
	return o, nil
}
