package filter

import "fmt"

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 16

// MaxValuesPerMatch is the maximum number of alternatives in an any-of match.
const MaxValuesPerMatch = 256

// Expression is a conjunction of conditions. Every condition must hold.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition is a single filter clause: either an any-of tag match or a numeric range.
type Condition struct {
	key       string
	anyOf     []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return NewMatchAny(key, []string{match})
}

// NewMatchAny creates a condition satisfied when the field equals any of values.
func NewMatchAny(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one match value is required for key %q", key)
	}
	if len(values) > MaxValuesPerMatch {
		return Condition{}, fmt.Errorf("too many match values for key %q (max %d)", key, MaxValuesPerMatch)
	}
	vals := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty match value for key %q", key)
		}
		vals = append(vals, v)
	}
	return Condition{key: key, anyOf: vals}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// AnyOf returns the accepted values of a match condition.
func (c Condition) AnyOf() []string { return c.anyOf }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return len(c.anyOf) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with inclusive boundaries. A nil bound is open.
type Range struct {
	gte *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required; gte must not exceed lte.
func NewRangeFilter(gte, lte *float64) (Range, error) {
	if gte == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gte != nil && lte != nil && *gte > *lte {
		return Range{}, fmt.Errorf("lower bound %v is greater than upper bound %v", *gte, *lte)
	}
	return Range{gte: gte, lte: lte}, nil
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
