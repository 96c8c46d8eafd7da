package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/sort"
	"github.com/kailas-cloud/microblog/internal/domain/search/term"
)

// ListParams are the raw listing inputs as bound from a request.
type ListParams struct {
	UserIDs []string
	From    *time.Time
	To      *time.Time
	Offset  int
	Size    int
	// Sort holds "<field>:<direction>" specs in priority order.
	Sort []string
}

// Service handles post operations.
type Service struct {
	repo   Repository
	limits criteria.Limits
	now    func() time.Time
	newID  func() string
}

// New creates a post service.
func New(repo Repository, limits criteria.Limits) *Service {
	return &Service{
		repo:   repo,
		limits: limits,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Get retrieves a post by ID.
func (s *Service) Get(ctx context.Context, id string) (dompost.Post, error) {
	if strings.TrimSpace(id) == "" {
		return dompost.Post{}, domain.ErrMissingID
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List returns posts matching the filters, sorted and paged.
func (s *Service) List(ctx context.Context, p ListParams) ([]dompost.Post, error) {
	cols, err := sort.ParseAll(p.Sort)
	if err != nil {
		return nil, err //nolint:wrapcheck // already classified as invalid sort
	}
	for _, c := range cols {
		if !dompost.IsSortable(c.Field()) {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSort, c.Field())
		}
	}

	c, err := criteria.New(criteria.Params{
		UserIDs: p.UserIDs,
		From:    p.From,
		To:      p.To,
		Offset:  p.Offset,
		Size:    p.Size,
		Sort:    cols,
	}, s.limits)
	if err != nil {
		return nil, err //nolint:wrapcheck // already classified as invalid criteria
	}

	posts, err := s.repo.GetAll(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Search returns posts whose body matches the raw search term.
func (s *Service) Search(ctx context.Context, raw string) ([]dompost.Post, error) {
	if _, err := term.Parse(raw); err != nil {
		return nil, err //nolint:wrapcheck // domain sentinel
	}
	posts, err := s.repo.Search(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

// Create stores a new post with a fresh ID and the current time.
func (s *Service) Create(ctx context.Context, body, userID string) (dompost.Post, error) {
	p, err := dompost.New(s.newID(), s.now(), body, userID)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("validate post: %w", err)
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update replaces the body of an existing post. Author and timestamp never change.
func (s *Service) Update(ctx context.Context, id, body string) (dompost.Post, error) {
	if strings.TrimSpace(id) == "" {
		return dompost.Post{}, domain.ErrMissingID
	}
	if err := dompost.ValidateBody(body); err != nil {
		return dompost.Post{}, err
	}

	// Repositories write only the body; identity fields come back from the store.
	updated, err := s.repo.Update(ctx, dompost.Reconstruct(id, time.Time{}, body, ""))
	if err != nil {
		return dompost.Post{}, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// Delete removes a post. Deleting an absent post succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
