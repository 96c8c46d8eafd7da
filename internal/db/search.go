package db

import "github.com/kailas-cloud/microblog/internal/domain/search/filter"

// SortKey orders results by an index attribute.
type SortKey struct {
	Field string
	Desc  bool
}

// Query is the input for a filtered, sorted and paged index query.
// Filters and Text are combined with AND; both empty matches every document.
type Query struct {
	IndexName string
	Filters   filter.Expression
	// Text is a pre-built full-text clause, e.g. "@body:(foo bar*)".
	Text   string
	SortBy []SortKey
	Offset int
	Limit  int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For JSON indexes Fields["$"] holds the serialized document.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
