package criteria

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/microblog/internal/domain"
	"github.com/kailas-cloud/microblog/internal/domain/search/filter"
	"github.com/kailas-cloud/microblog/internal/domain/search/sort"
)

// Page size limits used when the caller does not configure their own.
const (
	DefaultPageSize = 10000
	MaxPageSize     = 10000
)

// MaxResultWindow bounds offset+size, the deepest result a store will page to.
const MaxResultWindow = 10000

// Filter keys produced by Expression.
const (
	KeyUserID    = "userId"
	KeyTimestamp = "timestamp"
)

// Limits bounds paging.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultLimits returns the built-in paging limits.
func DefaultLimits() Limits {
	return Limits{DefaultSize: DefaultPageSize, MaxSize: MaxPageSize}
}

// Criteria selects, orders and pages a list of entities (immutable value object).
type Criteria struct {
	userIDs []string
	from    *time.Time
	to      *time.Time
	offset  int
	size    int
	sort    []sort.Column
}

// Params is the raw input for New. Zero values mean "not set".
type Params struct {
	UserIDs []string
	From    *time.Time
	To      *time.Time
	Offset  int
	Size    int
	Sort    []sort.Column
}

// New validates p against limits and creates Criteria.
// Size 0 falls back to limits.DefaultSize; larger sizes are capped at limits.MaxSize
// and at the room left in the result window after Offset.
func New(p Params, limits Limits) (Criteria, error) {
	if limits.DefaultSize <= 0 || limits.MaxSize <= 0 {
		limits = DefaultLimits()
	}
	if p.Offset < 0 {
		return Criteria{}, fmt.Errorf("%w: offset must be >= 0, got %d", domain.ErrInvalidCriteria, p.Offset)
	}
	if p.Size < 0 {
		return Criteria{}, fmt.Errorf("%w: size must be > 0, got %d", domain.ErrInvalidCriteria, p.Size)
	}
	if p.Offset >= MaxResultWindow {
		return Criteria{}, fmt.Errorf("%w: offset must be < %d, got %d",
			domain.ErrInvalidCriteria, MaxResultWindow, p.Offset)
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return Criteria{}, fmt.Errorf("%w: fromDateTime is after toDateTime", domain.ErrInvalidCriteria)
	}

	size := p.Size
	if size == 0 {
		size = limits.DefaultSize
	}
	size = min(size, limits.MaxSize, MaxResultWindow-p.Offset)

	var userIDs []string
	seen := make(map[string]struct{}, len(p.UserIDs))
	for _, id := range p.UserIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}

	return Criteria{
		userIDs: userIDs,
		from:    utcPtr(p.From),
		to:      utcPtr(p.To),
		offset:  p.Offset,
		size:    size,
		sort:    p.Sort,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// UserIDs returns the accepted authors (OR-matched), nil when unrestricted.
func (c Criteria) UserIDs() []string { return c.userIDs }

// From returns the inclusive lower time bound.
func (c Criteria) From() *time.Time { return c.from }

// To returns the inclusive upper time bound.
func (c Criteria) To() *time.Time { return c.to }

// Offset returns the number of results to skip.
func (c Criteria) Offset() int { return c.offset }

// Size returns the page size.
func (c Criteria) Size() int { return c.size }

// Sort returns the ordered sort columns.
func (c Criteria) Sort() []sort.Column { return c.sort }

// Expression converts the selection part to a filter expression.
// Timestamps are expressed as epoch milliseconds.
func (c Criteria) Expression() (filter.Expression, error) {
	var conds []filter.Condition
	if len(c.userIDs) > 0 {
		m, err := filter.NewMatchAny(KeyUserID, c.userIDs)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
		}
		conds = append(conds, m)
	}
	if c.from != nil || c.to != nil {
		r, err := filter.NewRangeFilter(millisPtr(c.from), millisPtr(c.to))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
		}
		rc, err := filter.NewRange(KeyTimestamp, r)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
		}
		conds = append(conds, rc)
	}
	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}
	return expr, nil
}

func millisPtr(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	v := float64(t.UnixMilli())
	return &v
}
