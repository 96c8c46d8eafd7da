package rating

import (
	"context"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

// Repository defines the storage contract for ratings.
type Repository interface {
	domain.ChildRepository[domrating.Rating]
}

// PostReader checks that a rated post exists.
type PostReader interface {
	GetByID(ctx context.Context, id string) (dompost.Post, error)
}
