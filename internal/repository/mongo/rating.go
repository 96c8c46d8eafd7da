package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/microblog/internal/domain"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
)

var _ domain.ChildRepository[domrating.Rating] = (*RatingRepo)(nil)

// RatingRepo stores ratings in a MongoDB collection, looked up by post id.
type RatingRepo struct {
	coll *mongo.Collection
}

// NewRatingRepo creates a rating repository over coll.
func NewRatingRepo(coll *mongo.Collection) *RatingRepo {
	return &RatingRepo{coll: coll}
}

// EnsureIndex creates the parent lookup index.
func (r *RatingRepo) EnsureIndex(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create indexes %s: %w", r.coll.Name(), err)
	}
	return nil
}

// GetAllByParentID returns every rating of a post.
func (r *RatingRepo) GetAllByParentID(ctx context.Context, postID string) ([]domrating.Rating, error) {
	if postID == "" {
		return nil, domain.ErrMissingID
	}

	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "postId", Value: postID}},
		options.Find().SetLimit(criteria.MaxPageSize),
	)
	if err != nil {
		return nil, fmt.Errorf("find ratings of %s: %w", postID, err)
	}

	var docs []ratingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}

	ratings := make([]domrating.Rating, 0, len(docs))
	for _, d := range docs {
		ratings = append(ratings, d.toDomain())
	}
	return ratings, nil
}

// AddToParent stores rt under postID. postID wins over any post id rt carries.
func (r *RatingRepo) AddToParent(ctx context.Context, postID string, rt domrating.Rating) (domrating.Rating, error) {
	if postID == "" || rt.ID() == "" {
		return domrating.Rating{}, domain.ErrMissingID
	}
	rt = rt.WithPostID(postID)

	if _, err := r.coll.InsertOne(ctx, toRatingDoc(&rt)); err != nil {
		return domrating.Rating{}, fmt.Errorf("insert rating %s: %w", rt.ID(), err)
	}
	return rt, nil
}
