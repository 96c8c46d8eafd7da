package post

import (
	"github.com/kailas-cloud/microblog/internal/db"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
)

// bodySortAttr is the non-tokenized copy of body used for ordering.
const bodySortAttr = "body_sort"

// sortAttrs maps sortable post fields to index attributes.
var sortAttrs = map[string]string{
	dompost.FieldID:        "id",
	dompost.FieldUserID:    "userId",
	dompost.FieldTimestamp: "timestamp",
	dompost.FieldBody:      bodySortAttr,
}

// buildIndex describes the post index. body is indexed twice: tokenized for
// full-text search and as a raw SORTABLE UNF attribute for ordering.
func buildIndex(keyPrefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName(keyPrefix)).
		OnJSON().
		Prefix(keyPrefix+keySegment).
		Tag("$.id").As("id").Sortable().
		TagWithOpts("$.userId", "", true).As("userId").Sortable().
		Numeric("$.timestamp").As("timestamp").Sortable().
		Text("$.body").As("body").
		Text("$.body").As(bodySortAttr).NoIndex().UNF().
		Build()
}
