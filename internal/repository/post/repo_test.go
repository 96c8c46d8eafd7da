package post

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/microblog/internal/db"
	"github.com/kailas-cloud/microblog/internal/domain"
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	"github.com/kailas-cloud/microblog/internal/domain/search/criteria"
	"github.com/kailas-cloud/microblog/internal/domain/search/sort"
	"github.com/kailas-cloud/microblog/internal/domain/search/term"
)

// --- EnsureIndex ---

func TestEnsureIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "microblog:post:idx" {
		t.Errorf("index name = %q", got.Name)
	}
	if got.StorageType != db.StorageJSON {
		t.Errorf("storage = %q, want JSON", got.StorageType)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "microblog:post:" {
		t.Errorf("prefixes = %v", got.Prefixes)
	}
	s := got.String()
	for _, want := range []string{
		"$.userId AS userId TAG SORTABLE",
		"$.timestamp AS timestamp NUMERIC SORTABLE",
		"$.body AS body TEXT",
		"$.body AS body_sort TEXT SORTABLE UNF NOINDEX",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("index %q missing %q", s, want)
		}
	}
}

func TestEnsureIndex_SkipsExisting(t *testing.T) {
	repo, ms := newTestRepo(t)
	var probed string
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		probed = name
		return true, nil
	}
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Fatal("FT.CREATE must not run for an existing index")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probed != "microblog:post:idx" {
		t.Errorf("probed index = %q", probed)
	}
}

func TestEnsureIndex_InfoError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) {
		return false, &db.Error{Op: db.OpIndexInfo, Err: errors.New("timeout")}
	}

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("existing index must be tolerated: %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return errors.New("boom") }

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- Create / GetByID ---

func TestCreate_WritesFullDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	p := testPost(t)

	var stored postDoc
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if key != "microblog:post:p-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if path != "$" {
			t.Errorf("unexpected path: %s", path)
		}
		return json.Unmarshal(data, &stored)
	}

	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "p-1" {
		t.Errorf("returned id = %q", got.ID())
	}
	if stored.ID != "p-1" || stored.Body != "Evil plans" || stored.UserID != "DrEvil" {
		t.Errorf("stored doc = %+v", stored)
	}
	if stored.Timestamp != testTime.UnixMilli() {
		t.Errorf("stored timestamp = %d, want %d", stored.Timestamp, testTime.UnixMilli())
	}
}

func TestCreate_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetFn = func(context.Context, string, string, []byte) error { return errors.New("OOM") }

	if _, err := repo.Create(context.Background(), testPost(t)); err == nil {
		t.Fatal("expected error on JSON.SET failure")
	}
}

func TestCreateThenGet_RoundTrip(t *testing.T) {
	ms := newMemStore()
	repo := New(ms, testPrefix)
	ctx := context.Background()

	created, err := repo.Create(ctx, testPost(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Body() != "Evil plans" || got.UserID() != "DrEvil" {
		t.Errorf("got %+v", got)
	}
	if !got.Timestamp().Equal(testTime) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp(), testTime)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found family, got %v", err)
	}
}

func TestGetByID_EmptyArray(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) { return []byte("[]"), nil }

	if _, err := repo.GetByID(context.Background(), "p-1"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestGetByID_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpJSONGet, Err: errors.New("timeout")}
	}

	_, err := repo.GetByID(context.Background(), "p-1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// --- Update ---

func TestUpdate_OnlyBodyChanges(t *testing.T) {
	ms := newMemStore()
	repo := New(ms, testPrefix)
	ctx := context.Background()

	if _, err := repo.Create(ctx, testPost(t)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// body-only writes go to $.body; emulate RedisJSON applying them.
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if path != "$.body" {
			t.Errorf("update must write $.body only, wrote %s", path)
			return nil
		}
		var doc postDoc
		_ = json.Unmarshal(ms.docs[key], &doc)
		_ = json.Unmarshal(data, &doc.Body)
		ms.docs[key], _ = json.Marshal(doc)
		return nil
	}

	incoming := dompost.Reconstruct("p-1", time.Unix(0, 0), "Even more evil plans", "Impostor")
	got, err := repo.Update(ctx, incoming)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Body() != "Even more evil plans" {
		t.Errorf("body = %q", got.Body())
	}
	if got.UserID() != "DrEvil" {
		t.Errorf("userId changed to %q", got.UserID())
	}
	if !got.Timestamp().Equal(testTime) {
		t.Errorf("timestamp changed to %v", got.Timestamp())
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetFn = func(context.Context, string, string, []byte) error {
		t.Fatal("must not write a missing post")
		return nil
	}

	_, err := repo.Update(context.Background(), testPost(t))
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

// The existence check and the body write are not atomic. A delete landing
// between them makes JSON.SET on $.body fail; that case surfaces as not found.
func TestUpdate_DeletedBetweenCheckAndWrite(t *testing.T) {
	repo, ms := newTestRepo(t)

	calls := 0
	ms.existsFn = func(context.Context, string) (bool, error) {
		calls++
		return calls == 1, nil
	}
	ms.jsonSetFn = func(context.Context, string, string, []byte) error {
		return &db.Error{Op: db.OpJSONSet, Err: errors.New("ERR new objects must be created at the root")}
	}

	_, err := repo.Update(context.Background(), testPost(t))
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected re-check after failed write, got %d exists calls", calls)
	}
}

func TestUpdate_WriteError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.jsonSetFn = func(context.Context, string, string, []byte) error { return errors.New("OOM") }

	_, err := repo.Update(context.Background(), testPost(t))
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// --- Delete ---

func TestDelete_Idempotent(t *testing.T) {
	ms := newMemStore()
	repo := New(ms, testPrefix)
	ctx := context.Background()

	if _, err := repo.Create(ctx, testPost(t)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "p-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDelete_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delFn = func(context.Context, string) error { return errors.New("READONLY") }

	if err := repo.Delete(context.Background(), "p-1"); err == nil {
		t.Fatal("expected error")
	}
}

// --- GetAll ---

func searchResult(docs ...postDoc) *db.SearchResult {
	res := &db.SearchResult{Total: len(docs)}
	for _, d := range docs {
		raw, _ := json.Marshal(d)
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:    testPrefix + keySegment + d.ID,
			Fields: map[string]string{"$": string(raw)},
		})
	}
	return res
}

func TestGetAll_FilterAndSort(t *testing.T) {
	repo, ms := newTestRepo(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	byUser, _ := sort.Parse("userId:ASC")
	byBody, _ := sort.Parse("body:DESC")
	c, err := criteria.New(criteria.Params{
		UserIDs: []string{"a", "b"},
		From:    &from,
		To:      &to,
		Offset:  10,
		Size:    5,
		Sort:    []sort.Column{byUser, byBody},
	}, criteria.DefaultLimits())
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}

	ms.searchFn = func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		if q.IndexName != "microblog:post:idx" {
			t.Errorf("index = %q", q.IndexName)
		}
		if q.Offset != 10 || q.Limit != 5 {
			t.Errorf("paging = %d/%d", q.Offset, q.Limit)
		}
		if len(q.Filters.Must()) != 2 {
			t.Errorf("expected 2 filter conditions, got %d", len(q.Filters.Must()))
		}
		if q.Text != "" {
			t.Errorf("filter-only query must not carry text, got %q", q.Text)
		}
		want := []db.SortKey{{Field: "userId"}, {Field: "body_sort", Desc: true}}
		if len(q.SortBy) != 2 || q.SortBy[0] != want[0] || q.SortBy[1] != want[1] {
			t.Errorf("sort = %+v, want %+v", q.SortBy, want)
		}
		return searchResult(
			postDoc{ID: "p-1", Timestamp: testTime.UnixMilli(), Body: "x", UserID: "a"},
			postDoc{ID: "p-2", Timestamp: testTime.UnixMilli(), Body: "y", UserID: "b"},
		), nil
	}

	posts, err := repo.GetAll(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID() != "p-1" || posts[1].UserID() != "b" {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestGetAll_NoFilters(t *testing.T) {
	repo, ms := newTestRepo(t)
	c, _ := criteria.New(criteria.Params{}, criteria.DefaultLimits())

	ms.searchFn = func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		if !q.Filters.IsEmpty() {
			t.Errorf("expected no filters, got %+v", q.Filters)
		}
		if len(q.SortBy) != 0 {
			t.Errorf("expected store default order, got %+v", q.SortBy)
		}
		if q.Limit != criteria.DefaultPageSize {
			t.Errorf("limit = %d", q.Limit)
		}
		return searchResult(postDoc{ID: "p-1"}), nil
	}

	posts, err := repo.GetAll(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
}

func TestGetAll_UnknownSortField(t *testing.T) {
	repo, _ := newTestRepo(t)
	col, _ := sort.Parse("rating:ASC")
	c, _ := criteria.New(criteria.Params{Sort: []sort.Column{col}}, criteria.DefaultLimits())

	_, err := repo.GetAll(context.Background(), c)
	if !errors.Is(err, domain.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestGetAll_IndexMissing(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.Query) (*db.SearchResult, error) { return nil, db.ErrIndexNotFound }
	c, _ := criteria.New(criteria.Params{}, criteria.DefaultLimits())

	posts, err := repo.GetAll(context.Background(), c)
	if err != nil {
		t.Fatalf("missing index must yield empty results, got %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}

func TestGetAll_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.Query) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("timeout")}
	}
	c, _ := criteria.New(criteria.Params{}, criteria.DefaultLimits())

	if _, err := repo.GetAll(context.Background(), c); err == nil {
		t.Fatal("expected error")
	}
}

// --- Search ---

func TestSearch_BuildsPrefixClause(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		if q.Text != "@body:(evil pla*)" {
			t.Errorf("text = %q", q.Text)
		}
		if !q.Filters.IsEmpty() {
			t.Errorf("unexpected filters: %+v", q.Filters)
		}
		return searchResult(postDoc{ID: "p-1", Body: "Evil plans"}), nil
	}

	posts, err := repo.Search(context.Background(), "Evil pla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 || posts[0].Body() != "Evil plans" {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestSearch_EmptyTerm(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.Query) (*db.SearchResult, error) {
		t.Fatal("store must not be queried")
		return nil, nil
	}

	_, err := repo.Search(context.Background(), "  ")
	if !errors.Is(err, domain.ErrEmptySearchTerm) {
		t.Fatalf("expected ErrEmptySearchTerm, got %v", err)
	}
}

func TestSearch_PunctuationOnly(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.Query) (*db.SearchResult, error) {
		t.Fatal("store must not be queried")
		return nil, nil
	}

	posts, err := repo.Search(context.Background(), "?!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}

func TestBuildTextClause(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello", "@body:(hello*)"},
		{"hello world", "@body:(hello world*)"},
		{"plan b", "@body:(plan b)"},
		{"C-3PO", "@body:(c 3po*)"},
	}
	for _, tc := range tests {
		tm, err := term.Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := buildTextClause(tm); got != tc.want {
			t.Errorf("buildTextClause(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
