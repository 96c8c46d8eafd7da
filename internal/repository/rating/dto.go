package rating

import (
	"encoding/json"
	"fmt"

	domrating "github.com/kailas-cloud/microblog/internal/domain/rating"
)

type ratingDoc struct {
	ID     string `json:"id"`
	PostID string `json:"postId"`
	Rating int    `json:"rating"`
	UserID string `json:"userId"`
}

func toDoc(r *domrating.Rating) ratingDoc {
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

func parseDoc(raw string) (domrating.Rating, error) {
	var doc ratingDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domrating.Rating{}, fmt.Errorf("unmarshal rating: %w", err)
	}
	return doc.toDomain(), nil
}
