package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/microblog/internal/db"
	"github.com/kailas-cloud/microblog/internal/domain"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/filter"
)

const (
	keySegment = "rating:"
	postIDAttr = "postId"
)

var _ domain.ChildRepository[domrating.Rating] = (*Repo)(nil)

// store is the consumer interface for ratings (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo stores ratings as JSON documents in Redis, looked up by parent post.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a rating repository. keyPrefix namespaces keys and the index.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// EnsureIndex creates the rating index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(indexName(r.keyPrefix)).
		OnJSON().
		Prefix(r.keyPrefix+keySegment).
		Tag("$.id").As("id").
		TagWithOpts("$.postId", "", true).As(postIDAttr).
		Tag("$.userId").As("userId").
		Numeric("$.rating").As("rating").Sortable().
		Build()
	if err != nil {
		return fmt.Errorf("build rating index: %w", err)
	}
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("index info %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	// a concurrent replica may win the FT.CREATE
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// GetAllByParentID returns every rating of a post.
func (r *Repo) GetAllByParentID(ctx context.Context, postID string) ([]domrating.Rating, error) {
	if postID == "" {
		return nil, domain.ErrMissingID
	}

	match, err := filter.NewMatch(postIDAttr, postID)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	expr, err := filter.NewExpression(match)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	idx := indexName(r.keyPrefix)
	result, err := r.store.Search(ctx, &db.Query{
		IndexName: idx,
		Filters:   expr,
		Limit:     criteria.MaxPageSize,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("search %s: %w", idx, err)
	}
	if result == nil {
		return nil, nil
	}

	ratings := make([]domrating.Rating, 0, len(result.Entries))
	for _, entry := range result.Entries {
		raw := entry.Fields["$"]
		if raw == "" {
			continue
		}
		rt, err := parseDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Key, err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, nil
}

// AddToParent stores rt under postID. postID wins over any post id rt carries.
func (r *Repo) AddToParent(ctx context.Context, postID string, rt domrating.Rating) (domrating.Rating, error) {
	if postID == "" || rt.ID() == "" {
		return domrating.Rating{}, domain.ErrMissingID
	}
	rt = rt.WithPostID(postID)

	key := r.docKey(rt.ID())
	data, err := json.Marshal(toDoc(&rt))
	if err != nil {
		return domrating.Rating{}, fmt.Errorf("marshal rating: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return domrating.Rating{}, fmt.Errorf("json.set %s: %w", key, err)
	}
	return rt, nil
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + keySegment + id
}

func indexName(keyPrefix string) string {
	return keyPrefix + keySegment + "idx"
}
