package chi

import (
	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

// TimestampLayout renders post timestamps with millisecond precision and offset.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Post is the JSON representation of a blog post.
type Post struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body"`
	UserID    string `json:"userId,omitempty"`
}

// Rating is the JSON representation of a post rating.
type Rating struct {
	ID     string `json:"id"`
	PostID string `json:"postId"`
	Rating int    `json:"rating"`
	UserID string `json:"userId,omitempty"`
}

// CreatePostRequest is the body of POST /blogposts.
type CreatePostRequest struct {
	Body   string `json:"body"`
	UserID string `json:"userId"`
}

// UpdatePostRequest is the body of PUT /blogposts/{id}. Other fields are ignored.
type UpdatePostRequest struct {
	Body string `json:"body"`
}

// CreateRatingRequest is the body of POST /blogposts/{id}/ratings.
type CreateRatingRequest struct {
	Rating int    `json:"rating"`
	UserID string `json:"userId"`
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Backend string            `json:"backend"`
	Checks  map[string]string `json:"checks"`
}

func postToDTO(p *dompost.Post) Post {
	return Post{
		ID:        p.ID(),
		Timestamp: p.Timestamp().UTC().Format(TimestampLayout),
		Body:      p.Body(),
		UserID:    p.UserID(),
	}
}

func postsToDTO(posts []dompost.Post) []Post {
	out := make([]Post, len(posts))
	for i := range posts {
		out[i] = postToDTO(&posts[i])
	}
	return out
}

func ratingToDTO(r *domrating.Rating) Rating {
	return Rating{
		ID:     r.ID(),
		PostID: r.PostID(),
		Rating: r.Value(),
		UserID: r.UserID(),
	}
}

func ratingsToDTO(ratings []domrating.Rating) []Rating {
	out := make([]Rating, len(ratings))
	for i := range ratings {
		out[i] = ratingToDTO(&ratings[i])
	}
	return out
}
