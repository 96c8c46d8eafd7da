package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/term"
)

var (
	_ domain.CrudRepository[dompost.Post, criteria.Criteria] = (*PostRepo)(nil)
	_ domain.TextSearcher[dompost.Post]                      = (*PostRepo)(nil)
)

// PostRepo stores posts in a MongoDB collection keyed by post id.
type PostRepo struct {
	coll *mongo.Collection
}

// NewPostRepo creates a post repository over coll.
func NewPostRepo(coll *mongo.Collection) *PostRepo {
	return &PostRepo{coll: coll}
}

// EnsureIndex creates secondary indexes for author and time filters.
func (r *PostRepo) EnsureIndex(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes %s: %w", r.coll.Name(), err)
	}
	return nil
}

// GetByID returns a post by ID.
func (r *PostRepo) GetByID(ctx context.Context, id string) (dompost.Post, error) {
	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dompost.Post{}, domain.ErrPostNotFound
		}
		return dompost.Post{}, fmt.Errorf("find post %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

// GetAll returns posts matching c, ordered and paged as requested.
func (r *PostRepo) GetAll(ctx context.Context, c criteria.Criteria) ([]dompost.Post, error) {
	expr, err := c.Expression()
	if err != nil {
		return nil, err
	}
	sortDoc, err := buildSort(c.Sort())
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSkip(int64(c.Offset())).
		SetLimit(int64(c.Size()))
	if len(sortDoc) > 0 {
		opts.SetSort(sortDoc)
	}

	return r.find(ctx, buildFilter(expr), opts)
}

// Search returns posts whose body contains every word of raw.
// The last word matches as a prefix.
func (r *PostRepo) Search(ctx context.Context, raw string) ([]dompost.Post, error) {
	t, err := term.Parse(raw)
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return nil, nil
	}
	return r.find(ctx, buildTextFilter(t), options.Find().SetLimit(criteria.MaxPageSize))
}

// Create inserts the full document.
func (r *PostRepo) Create(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	if _, err := r.coll.InsertOne(ctx, toPostDoc(&p)); err != nil {
		return dompost.Post{}, fmt.Errorf("insert post %s: %w", p.ID(), err)
	}
	return p, nil
}

// Update replaces the body of an existing post and returns the stored post.
func (r *PostRepo) Update(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	var doc postDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: p.ID()}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "body", Value: p.Body()}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dompost.Post{}, domain.ErrPostNotFound
		}
		return dompost.Post{}, fmt.Errorf("update post %s: %w", p.ID(), err)
	}
	return doc.toDomain(), nil
}

// Delete removes a post. Deleting an absent post is not an error.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

func (r *PostRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]dompost.Post, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]dompost.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts, nil
}
