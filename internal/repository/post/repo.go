package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/microblog/internal/db"
	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/filter"
	"github.com/kailas-cloud/microblog/internal/domain/search/term"
)

const keySegment = "post:"

var errEmptyResult = errors.New("empty JSON.GET result")

var (
	_ domain.CrudRepository[dompost.Post, criteria.Criteria] = (*Repo)(nil)
	_ domain.TextSearcher[dompost.Post]                      = (*Repo)(nil)
)

// store is the consumer interface for posts (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo stores posts as JSON documents in Redis.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a post repository. keyPrefix namespaces keys and the index.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// EnsureIndex creates the post index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.keyPrefix)
	if err != nil {
		return fmt.Errorf("build post index: %w", err)
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

// GetByID returns a post by ID.
func (r *Repo) GetByID(ctx context.Context, id string) (dompost.Post, error) {
	key := r.docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dompost.Post{}, domain.ErrPostNotFound
		}
		return dompost.Post{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	p, err := parseDoc(raw)
	if errors.Is(err, errEmptyResult) {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return p, err
}

// GetAll returns posts matching c, ordered and paged as requested.
func (r *Repo) GetAll(ctx context.Context, c criteria.Criteria) ([]dompost.Post, error) {
	expr, err := c.Expression()
	if err != nil {
		return nil, err
	}

	sortBy := make([]db.SortKey, 0, len(c.Sort()))
	for _, col := range c.Sort() {
		attr, ok := sortAttrs[col.Field()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSort, col.Field())
		}
		sortBy = append(sortBy, db.SortKey{Field: attr, Desc: col.Descending()})
	}

	return r.search(ctx, &db.Query{
		IndexName: indexName(r.keyPrefix),
		Filters:   expr,
		SortBy:    sortBy,
		Offset:    c.Offset(),
		Limit:     c.Size(),
	})
}

// Search returns posts whose body contains every word of raw.
// The last word matches as a prefix.
func (r *Repo) Search(ctx context.Context, raw string) ([]dompost.Post, error) {
	t, err := term.Parse(raw)
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return nil, nil
	}

	empty, _ := filter.NewExpression()
	return r.search(ctx, &db.Query{
		IndexName: indexName(r.keyPrefix),
		Filters:   empty,
		Text:      buildTextClause(t),
		Limit:     criteria.MaxPageSize,
	})
}

// Create writes the full document.
func (r *Repo) Create(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	key := r.docKey(p.ID())
	data, err := json.Marshal(toDoc(&p))
	if err != nil {
		return dompost.Post{}, fmt.Errorf("marshal post: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return dompost.Post{}, fmt.Errorf("json.set %s: %w", key, err)
	}
	return p, nil
}

// Update replaces the body of an existing post and returns the stored post.
//
// The existence check and the write are separate commands: a delete that
// lands in between makes the write fail, which is reported as not found.
func (r *Repo) Update(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	key := r.docKey(p.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return dompost.Post{}, domain.ErrPostNotFound
	}

	body, err := json.Marshal(p.Body())
	if err != nil {
		return dompost.Post{}, fmt.Errorf("marshal body: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$.body", body); err != nil {
		if still, exErr := r.store.Exists(ctx, key); exErr == nil && !still {
			return dompost.Post{}, domain.ErrPostNotFound
		}
		return dompost.Post{}, fmt.Errorf("json.set %s: %w", key, err)
	}

	return r.GetByID(ctx, p.ID())
}

// Delete removes a post. Deleting an absent post is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.docKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) search(ctx context.Context, q *db.Query) ([]dompost.Post, error) {
	result, err := r.store.Search(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("search %s: %w", q.IndexName, err)
	}
	if result == nil {
		return nil, nil
	}

	posts := make([]dompost.Post, 0, len(result.Entries))
	for _, entry := range result.Entries {
		raw := entry.Fields["$"]
		if raw == "" {
			continue
		}
		p, err := parseDoc([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Key, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// buildTextClause renders "@body:(w1 w2 w3*)". Tokens hold only letters and
// digits, so no query escaping is needed.
func buildTextClause(t term.Term) string {
	tokens := t.Tokens()
	words := make([]string, len(tokens))
	copy(words, tokens)
	if t.PrefixLast() {
		words[len(words)-1] += "*"
	}
	return "@" + dompost.FieldBody + ":(" + strings.Join(words, " ") + ")"
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + keySegment + id
}

func indexName(keyPrefix string) string {
	return keyPrefix + keySegment + "idx"
}
