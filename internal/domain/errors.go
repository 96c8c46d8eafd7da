package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPostNotFound signals a missing blog post.
	ErrPostNotFound = fmt.Errorf("post %w", ErrNotFound)

	// ErrBadRequest signals client input that cannot be processed.
	ErrBadRequest = errors.New("bad request")
	// ErrMissingID signals an empty resource identifier.
	ErrMissingID = fmt.Errorf("%w: missing id", ErrBadRequest)
	// ErrInvalidRating signals a rating outside the accepted range.
	ErrInvalidRating = fmt.Errorf("%w: invalid rating", ErrBadRequest)
	// ErrInvalidSort signals an unparsable or unsupported sort specification.
	ErrInvalidSort = fmt.Errorf("%w: invalid sort", ErrBadRequest)
	// ErrEmptySearchTerm signals a blank search term.
	ErrEmptySearchTerm = fmt.Errorf("%w: empty search term", ErrBadRequest)
	// ErrSearchTermTooLong signals a search term with more words than can be matched.
	ErrSearchTermTooLong = fmt.Errorf("%w: search term too long", ErrBadRequest)
	// ErrInvalidCriteria signals inconsistent filter or paging parameters.
	ErrInvalidCriteria = fmt.Errorf("%w: invalid criteria", ErrBadRequest)
	// ErrInvalidBody signals a post body that violates size limits.
	ErrInvalidBody = fmt.Errorf("%w: invalid body", ErrBadRequest)
)
