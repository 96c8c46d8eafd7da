package sort

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/microblog/internal/domain"
)

// Separator splits a field from its direction in the compact form.
const Separator = ":"

// Direction is a sort order.
type Direction string

// Supported directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: direction %q, expected ASC or DESC", domain.ErrInvalidSort, s)
	}
}

// Column is one sort specification: a field and its direction.
type Column struct {
	field     string
	direction Direction
}

// NewColumn validates and creates a Column.
func NewColumn(field string, direction Direction) (Column, error) {
	if field == "" {
		return Column{}, fmt.Errorf("%w: field is required", domain.ErrInvalidSort)
	}
	if direction != Asc && direction != Desc {
		return Column{}, fmt.Errorf("%w: direction %q, expected ASC or DESC", domain.ErrInvalidSort, direction)
	}
	return Column{field: field, direction: direction}, nil
}

// Parse parses the compact "<field>:<direction>" form.
func Parse(s string) (Column, error) {
	if strings.TrimSpace(s) == "" {
		return Column{}, fmt.Errorf("%w: empty sort specification", domain.ErrInvalidSort)
	}
	parts := strings.Split(s, Separator)
	if len(parts) != 2 {
		return Column{}, fmt.Errorf("%w: %q is not in field%sdirection form", domain.ErrInvalidSort, s, Separator)
	}
	dir, err := ParseDirection(parts[1])
	if err != nil {
		return Column{}, err
	}
	return NewColumn(strings.TrimSpace(parts[0]), dir)
}

// ParseAll parses every specification, keeping order.
func ParseAll(specs []string) ([]Column, error) {
	cols := make([]Column, 0, len(specs))
	for _, s := range specs {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Field returns the column name.
func (c Column) Field() string { return c.field }

// Direction returns the sort order.
func (c Column) Direction() Direction { return c.direction }

// Descending reports whether the column sorts high to low.
func (c Column) Descending() bool { return c.direction == Desc }

// String renders the compact form.
func (c Column) String() string { return c.field + Separator + string(c.direction) }
