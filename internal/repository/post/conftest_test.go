package post

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/microblog/internal/db"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
)

const testPrefix = "microblog:"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, key string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchFn      func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testPrefix), ms
}

var testTime = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func testPost(t *testing.T) dompost.Post {
	t.Helper()
	p, err := dompost.New("p-1", testTime, "Evil plans", "DrEvil")
	if err != nil {
		t.Fatalf("build post: %v", err)
	}
	return p
}

// memStore is a tiny in-memory JSON store for round-trip tests.
type memStore struct {
	mockStore
	docs map[string][]byte
}

func newMemStore() *memStore {
	m := &memStore{docs: make(map[string][]byte)}
	m.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if path != "$" {
			return nil
		}
		m.docs[key] = data
		return nil
	}
	m.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		d, ok := m.docs[key]
		if !ok {
			return nil, db.ErrKeyNotFound
		}
		return append(append([]byte("["), d...), ']'), nil
	}
	m.existsFn = func(_ context.Context, key string) (bool, error) {
		_, ok := m.docs[key]
		return ok, nil
	}
	m.delFn = func(_ context.Context, key string) error {
		delete(m.docs, key)
		return nil
	}
	return m
}
