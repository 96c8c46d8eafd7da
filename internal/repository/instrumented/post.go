package instrumented

import (
	"context"
	"time"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
)

type postRepository interface {
	domain.CrudRepository[dompost.Post, criteria.Criteria]
	domain.TextSearcher[dompost.Post]
}

var _ postRepository = (*PostRepo)(nil)

// PostRepo decorates a post repository.
type PostRepo struct {
	next postRepository
	rec  recorder
}

// NewPostRepo wraps next, labeling metrics with backend.
func NewPostRepo(next postRepository, backend string) *PostRepo {
	return &PostRepo{next: next, rec: recorder{backend: backend, entity: EntityPost}}
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (dompost.Post, error) {
	start := time.Now()
	p, err := r.next.GetByID(ctx, id)
	r.rec.observe(ctx, "get", start, -1, err)
	return p, err //nolint:wrapcheck // transparent decorator
}

func (r *PostRepo) GetAll(ctx context.Context, c criteria.Criteria) ([]dompost.Post, error) {
	start := time.Now()
	posts, err := r.next.GetAll(ctx, c)
	r.rec.observe(ctx, "list", start, len(posts), err)
	return posts, err //nolint:wrapcheck // transparent decorator
}

func (r *PostRepo) Search(ctx context.Context, term string) ([]dompost.Post, error) {
	start := time.Now()
	posts, err := r.next.Search(ctx, term)
	r.rec.observe(ctx, "search", start, len(posts), err)
	return posts, err //nolint:wrapcheck // transparent decorator
}

func (r *PostRepo) Create(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	start := time.Now()
	out, err := r.next.Create(ctx, p)
	r.rec.observe(ctx, "create", start, -1, err)
	return out, err //nolint:wrapcheck // transparent decorator
}

func (r *PostRepo) Update(ctx context.Context, p dompost.Post) (dompost.Post, error) {
	start := time.Now()
	out, err := r.next.Update(ctx, p)
	r.rec.observe(ctx, "update", start, -1, err)
	return out, err //nolint:wrapcheck // transparent decorator
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.rec.observe(ctx, "delete", start, -1, err)
	return err //nolint:wrapcheck // transparent decorator
}
