package instrumented

import (
	"context"
	"time"

	"github.com/kailas-cloud/microblog/internal/domain"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

var _ domain.ChildRepository[domrating.Rating] = (*RatingRepo)(nil)

// RatingRepo decorates a rating repository.
type RatingRepo struct {
	next domain.ChildRepository[domrating.Rating]
	rec  recorder
}

// NewRatingRepo wraps next, labeling metrics with backend.
func NewRatingRepo(next domain.ChildRepository[domrating.Rating], backend string) *RatingRepo {
	return &RatingRepo{next: next, rec: recorder{backend: backend, entity: EntityRating}}
}

func (r *RatingRepo) GetAllByParentID(ctx context.Context, postID string) ([]domrating.Rating, error) {
	start := time.Now()
	out, err := r.next.GetAllByParentID(ctx, postID)
	r.rec.observe(ctx, "list", start, len(out), err)
	return out, err //nolint:wrapcheck // transparent decorator
}

func (r *RatingRepo) AddToParent(ctx context.Context, postID string, rt domrating.Rating) (domrating.Rating, error) {
	start := time.Now()
	out, err := r.next.AddToParent(ctx, postID, rt)
	r.rec.observe(ctx, "create", start, -1, err)
	return out, err //nolint:wrapcheck // transparent decorator
}
