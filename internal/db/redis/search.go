package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/microblog/internal/db"
	"github.com/kailas-cloud/microblog/internal/domain/search/filter"
)

// jsonRoot is the JSONPath of a whole document.
const jsonRoot = "$"

// keyAttr is the pseudo attribute FT.AGGREGATE exposes for the document key.
const keyAttr = "@__key"

// Search runs a filtered, sorted and paged query.
//
// FT.SEARCH accepts a single SORTBY attribute, so queries with more than one
// sort key go through FT.AGGREGATE (which sorts by several attributes and
// returns keys only) followed by a pipelined JSON.GET of the matched documents.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr := buildQuery(q.Filters, q.Text)

	if len(q.SortBy) > 1 {
		return s.aggregate(ctx, q, queryStr)
	}

	args := []string{q.IndexName, queryStr, "RETURN", "1", jsonRoot}
	if len(q.SortBy) == 1 {
		args = append(args, "SORTBY", q.SortBy[0].Field, direction(q.SortBy[0]))
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseListResult(raw)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		if doc, ok := res.Entries[i].Fields[jsonRoot]; ok {
			res.Entries[i].Fields[jsonRoot] = unwrapJSONArray(doc)
		}
	}
	return res, nil
}

func (s *Store) aggregate(ctx context.Context, q *db.Query, queryStr string) (*db.SearchResult, error) {
	args := []string{q.IndexName, queryStr, "LOAD", "1", keyAttr}
	args = append(args, "SORTBY", strconv.Itoa(2*len(q.SortBy)))
	for _, k := range q.SortBy {
		args = append(args, "@"+k.Field, direction(k))
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	keys, err := parseAggregateKeys(raw)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return &db.SearchResult{}, nil
	}

	docs, err := s.JSONGetMulti(ctx, keys, jsonRoot)
	if err != nil {
		return nil, err
	}

	entries := make([]db.SearchEntry, 0, len(keys))
	for i, key := range keys {
		// Deleted between the aggregate and the fetch.
		if docs[i] == nil {
			continue
		}
		doc := unwrapJSONArray(string(docs[i]))
		if doc == "" {
			continue
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: map[string]string{jsonRoot: doc},
		})
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func direction(k db.SortKey) string {
	if k.Desc {
		return "DESC"
	}
	return "ASC"
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseAggregateKeys extracts __key from [total, [k, v, ...], [k, v, ...], ...] rows.
func parseAggregateKeys(raw []rueidis.RedisMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if _, err := raw[0].AsInt64(); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	keys := make([]string, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		if key, ok := parseFieldPairs(row)["__key"]; ok && key != "" {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// unwrapJSONArray turns the single-element array a "$" path returns ("[{...}]")
// into the element itself. Objects pass through unchanged.
func unwrapJSONArray(s string) string {
	t := strings.TrimSpace(s)
	if len(t) < 2 || t[0] != '[' || t[len(t)-1] != ']' {
		return s
	}
	return strings.TrimSpace(t[1 : len(t)-1])
}

// --- Query building ---

// buildQuery ANDs the filter expression with an optional text clause.
func buildQuery(expr filter.Expression, text string) string {
	parts := make([]string, 0, 2)
	if f := buildFilter(expr); f != "" {
		parts = append(parts, f)
	}
	if text != "" {
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildFilter translates filter.Expression into an FT query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsMatch() {
		return buildTagFilter(cond.Key(), cond.AnyOf())
	}
	if cond.IsRange() {
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	return ""
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GTE() != nil {
		minBound = formatNumber(*r.GTE())
	}
	if r.LTE() != nil {
		maxBound = formatNumber(*r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// formatNumber renders without exponent so epoch millis keep full precision.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	"\\", "\\\\",
	" ", "\\ ",
)
