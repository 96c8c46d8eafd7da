package rating

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/microblog/internal/domain"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

// Service handles rating operations.
type Service struct {
	repo          Repository
	posts         PostReader
	requireParent bool
	newID         func() string
}

// New creates a rating service. When requireParent is set, ratings
// for absent posts are rejected with domain.ErrPostNotFound.
func New(repo Repository, posts PostReader, requireParent bool) *Service {
	return &Service{
		repo:          repo,
		posts:         posts,
		requireParent: requireParent,
		newID:         uuid.NewString,
	}
}

// ListByPost returns all ratings of a post.
func (s *Service) ListByPost(ctx context.Context, postID string) ([]domrating.Rating, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, domain.ErrMissingID
	}
	ratings, err := s.repo.GetAllByParentID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// Add validates and stores a rating for a post.
func (s *Service) Add(ctx context.Context, postID string, value int, userID string) (domrating.Rating, error) {
	if strings.TrimSpace(postID) == "" {
		return domrating.Rating{}, domain.ErrMissingID
	}
	if err := domrating.ValidateValue(value); err != nil {
		return domrating.Rating{}, err
	}

	if s.requireParent {
		if _, err := s.posts.GetByID(ctx, postID); err != nil {
			return domrating.Rating{}, fmt.Errorf("check post: %w", err)
		}
	}

	r, err := domrating.New(s.newID(), postID, value, userID)
	if err != nil {
		return domrating.Rating{}, fmt.Errorf("validate rating: %w", err)
	}

	stored, err := s.repo.AddToParent(ctx, postID, r)
	if err != nil {
		return domrating.Rating{}, fmt.Errorf("add rating: %w", err)
	}
	return stored, nil
}
