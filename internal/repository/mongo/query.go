package mongo

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/filter"
	"github.com/kailas-cloud/microblog/internal/domain/search/sort"
	"github.com/kailas-cloud/microblog/internal/domain/search/term"
)

// sortFields maps sortable post fields to document fields.
var sortFields = map[string]string{
	dompost.FieldID:        "_id",
	dompost.FieldUserID:    "userId",
	dompost.FieldTimestamp: "timestamp",
	dompost.FieldBody:      "body",
}

// buildFilter translates filter.Expression into a MongoDB filter document.
// Timestamp ranges arrive as epoch milliseconds and are compared as dates.
func buildFilter(expr filter.Expression) bson.D {
	out := bson.D{}
	for _, cond := range expr.Must() {
		switch {
		case cond.IsMatch():
			out = append(out, bson.E{Key: cond.Key(), Value: bson.D{{Key: "$in", Value: cond.AnyOf()}}})
		case cond.IsRange():
			out = append(out, bson.E{Key: cond.Key(), Value: buildRange(cond.Key(), *cond.Range())})
		}
	}
	return out
}

func buildRange(key string, r filter.Range) bson.D {
	bound := func(v float64) any {
		if key == criteria.KeyTimestamp {
			return time.UnixMilli(int64(v)).UTC()
		}
		return v
	}

	out := bson.D{}
	if r.GTE() != nil {
		out = append(out, bson.E{Key: "$gte", Value: bound(*r.GTE())})
	}
	if r.LTE() != nil {
		out = append(out, bson.E{Key: "$lte", Value: bound(*r.LTE())})
	}
	return out
}

// buildSort translates sort columns, keeping their order.
func buildSort(cols []sort.Column) (bson.D, error) {
	out := make(bson.D, 0, len(cols))
	for _, c := range cols {
		field, ok := sortFields[c.Field()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSort, c.Field())
		}
		dir := 1
		if c.Descending() {
			dir = -1
		}
		out = append(out, bson.E{Key: field, Value: dir})
	}
	return out, nil
}

// Word boundaries built from Unicode classes; \b is ASCII-only in PCRE.
const (
	wordStart = `(?:^|[^\p{L}\p{N}])`
	wordEnd   = `(?:$|[^\p{L}\p{N}])`
)

// buildTextFilter requires every token as a case-insensitive word in body;
// the last token may match a word prefix.
func buildTextFilter(t term.Term) bson.D {
	tokens := t.Tokens()
	clauses := make(bson.A, 0, len(tokens))
	for i, tok := range tokens {
		pattern := wordStart + regexp.QuoteMeta(tok)
		if i < len(tokens)-1 || !t.PrefixLast() {
			pattern += wordEnd
		}
		clauses = append(clauses, bson.D{{
			Key:   dompost.FieldBody,
			Value: primitive.Regex{Pattern: pattern, Options: "i"},
		}})
	}
	return bson.D{{Key: "$and", Value: clauses}}
}
