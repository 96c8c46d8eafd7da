package rating

import (
	"fmt"

	"github.com/kailas-cloud/microblog/internal/domain"
)

// Accepted rating bounds (inclusive).
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a numeric score attached to a post (immutable value object).
// Ratings are append-only: there is no update or delete.
type Rating struct {
	id     string
	postID string
	value  int
	userID string
}

// New validates and creates a Rating.
func New(id, postID string, value int, userID string) (Rating, error) {
	if id == "" || postID == "" {
		return Rating{}, domain.ErrMissingID
	}
	if err := ValidateValue(value); err != nil {
		return Rating{}, err
	}
	return Rating{id: id, postID: postID, value: value, userID: userID}, nil
}

// Reconstruct creates a Rating without validation (storage hydration).
func Reconstruct(id, postID string, value int, userID string) Rating {
	return Rating{id: id, postID: postID, value: value, userID: userID}
}

// ValidateValue checks that value lies in [MinRating, MaxRating].
func ValidateValue(value int) error {
	if value < MinRating || value > MaxRating {
		return fmt.Errorf("%w: %d is outside [%d, %d]", domain.ErrInvalidRating, value, MinRating, MaxRating)
	}
	return nil
}

// ID returns the rating identifier.
func (r *Rating) ID() string { return r.id }

// PostID returns the parent post identifier.
func (r *Rating) PostID() string { return r.postID }

// Value returns the score.
func (r *Rating) Value() int { return r.value }

// UserID returns the rater, empty when anonymous.
func (r *Rating) UserID() string { return r.userID }

// WithPostID returns a copy attached to postID.
func (r *Rating) WithPostID(postID string) Rating {
	return Rating{id: r.id, postID: postID, value: r.value, userID: r.userID}
}
