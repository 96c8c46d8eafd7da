package mongo

import (
	"time"

	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

// Collection names.
const (
	PostsCollection   = "posts"
	RatingsCollection = "ratings"
)

type postDoc struct {
	ID        string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`
	Body      string    `bson:"body"`
	UserID    string    `bson:"userId"`
}

func toPostDoc(p *dompost.Post) postDoc {
	return postDoc{
		ID:        p.ID(),
		Timestamp: p.Timestamp(),
		Body:      p.Body(),
		UserID:    p.UserID(),
	}
}

func (d postDoc) toDomain() dompost.Post {
	return dompost.Reconstruct(d.ID, d.Timestamp.UTC(), d.Body, d.UserID)
}

type ratingDoc struct {
	ID     string `bson:"_id"`
	PostID string `bson:"postId"`
	Rating int    `bson:"rating"`
	UserID string `bson:"userId"`
}

func toRatingDoc(r *domrating.Rating) ratingDoc {
	return ratingDoc{
		ID:     r.ID(),
		PostID: r.PostID(),
		Rating: r.Value(),
		UserID: r.UserID(),
	}
}

func (d ratingDoc) toDomain() domrating.Rating {
	return domrating.Reconstruct(d.ID, d.PostID, d.Rating, d.UserID)
}
