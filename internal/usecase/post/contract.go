package post

import (
	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
)

// Repository defines the storage contract for posts.
type Repository interface {
	domain.CrudRepository[dompost.Post, criteria.Criteria]
	domain.TextSearcher[dompost.Post]
}
