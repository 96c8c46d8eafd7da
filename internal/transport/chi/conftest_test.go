package chi

import (
	"context"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	healthuc "github.com/kailas-cloud/microblog/internal/usecase/health"
	postuc "github.com/kailas-cloud/microblog/internal/usecase/post"
	ratinguc "github.com/kailas-cloud/microblog/internal/usecase/rating"
)

// memPosts is an in-memory post repository.
type memPosts struct {
	mu    sync.Mutex
	posts map[string]dompost.Post
	err   error
	last  criteria.Criteria
}

func newMemPosts() *memPosts { return &memPosts{posts: map[string]dompost.Post{}} }

func (m *memPosts) GetByID(_ context.Context, id string) (dompost.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return dompost.Post{}, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return p, nil
}

func (m *memPosts) GetAll(_ context.Context, c criteria.Criteria) ([]dompost.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = c
	if m.err != nil {
		return nil, m.err
	}
	out := make([]dompost.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if len(c.UserIDs()) > 0 && !slices.Contains(c.UserIDs(), p.UserID()) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b dompost.Post) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *memPosts) Search(_ context.Context, _ string) ([]dompost.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dompost.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	return out, m.err
}

func (m *memPosts) Create(_ context.Context, p dompost.Post) (dompost.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return dompost.Post{}, m.err
	}
	m.posts[p.ID()] = p
	return p, nil
}

func (m *memPosts) Update(_ context.Context, p dompost.Post) (dompost.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.posts[p.ID()]
	if !ok {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	updated := existing.WithBody(p.Body())
	m.posts[p.ID()] = updated
	return updated, nil
}

func (m *memPosts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return m.err
}

// memRatings is an in-memory rating repository.
type memRatings struct {
	mu      sync.Mutex
	ratings []domrating.Rating
}

func (m *memRatings) GetAllByParentID(_ context.Context, postID string) ([]domrating.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domrating.Rating
	for _, r := range m.ratings {
		if r.PostID() == postID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRatings) AddToParent(_ context.Context, postID string, r domrating.Rating) (domrating.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r = r.WithPostID(postID)
	m.ratings = append(m.ratings, r)
	return r, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	router  chi.Router
	posts   *memPosts
	ratings *memRatings
}

func newTestEnv() *testEnv {
	posts := newMemPosts()
	ratings := &memRatings{}

	srv := NewServer(
		postuc.New(posts, criteria.DefaultLimits()),
		ratinguc.New(ratings, posts, true),
		healthuc.New(stubPinger{}, "memory"),
	)
	r := chi.NewRouter()
	srv.Register(r)

	return &testEnv{router: r, posts: posts, ratings: ratings}
}
