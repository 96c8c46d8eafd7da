package post

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/microblog/internal/domain"
)

// MaxBodySize is the maximum post body size in bytes.
const MaxBodySize = 65536 // 64KB

// Post is a single blog post (immutable value object).
// Only the body may change after creation, through WithBody.
type Post struct {
	id        string
	timestamp time.Time
	body      string
	userID    string
}

// New validates and creates a Post. The body may be empty.
func New(id string, timestamp time.Time, body, userID string) (Post, error) {
	if id == "" {
		return Post{}, domain.ErrMissingID
	}
	if timestamp.IsZero() {
		return Post{}, fmt.Errorf("%w: timestamp is required", domain.ErrBadRequest)
	}
	if err := ValidateBody(body); err != nil {
		return Post{}, err
	}
	return Post{
		id:        id,
		timestamp: timestamp.UTC().Truncate(time.Millisecond),
		body:      body,
		userID:    userID,
	}, nil
}

// Reconstruct creates a Post without validation (storage hydration).
func Reconstruct(id string, timestamp time.Time, body, userID string) Post {
	return Post{id: id, timestamp: timestamp, body: body, userID: userID}
}

// ValidateBody checks the body size limit.
func ValidateBody(body string) error {
	if len(body) > MaxBodySize {
		return fmt.Errorf("%w: body too large (max %d bytes)", domain.ErrInvalidBody, MaxBodySize)
	}
	return nil
}

// ID returns the post identifier.
func (p *Post) ID() string { return p.id }

// Timestamp returns the creation time.
func (p *Post) Timestamp() time.Time { return p.timestamp }

// Body returns the post text.
func (p *Post) Body() string { return p.body }

// UserID returns the author identifier, empty when anonymous.
func (p *Post) UserID() string { return p.userID }

// WithBody returns a copy carrying the new body. Identity fields are kept.
func (p *Post) WithBody(body string) Post {
	return Post{id: p.id, timestamp: p.timestamp, body: body, userID: p.userID}
}

// Field names usable in filters and sort specifications.
const (
	FieldID        = "id"
	FieldUserID    = "userId"
	FieldTimestamp = "timestamp"
	FieldBody      = "body"
)

// IsSortable reports whether posts can be ordered by field.
func IsSortable(field string) bool {
	switch field {
	case FieldID, FieldUserID, FieldTimestamp, FieldBody:
		return true
	}
	return false
}
