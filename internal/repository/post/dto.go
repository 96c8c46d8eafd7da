package post

import (
	"encoding/json"
	"fmt"
	"time"

	dompost "github.com/kailas-cloud/microblog/internal/domain/post"
)

// postDoc is the stored JSON shape. timestamp is epoch milliseconds so the
// index can treat it as NUMERIC.
type postDoc struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Body      string `json:"body"`
	UserID    string `json:"userId"`
}

func toDoc(p *dompost.Post) postDoc {
	return postDoc{
		ID:        p.ID(),
		Timestamp: p.Timestamp().UnixMilli(),
		Body:      p.Body(),
		UserID:    p.UserID(),
	}
}

func (d postDoc) toDomain() dompost.Post {
	return dompost.Reconstruct(d.ID, time.UnixMilli(d.Timestamp).UTC(), d.Body, d.UserID)
}

// parseDoc decodes either a bare document or the single-element array
// JSON.GET returns for the "$" path.
func parseDoc(raw []byte) (dompost.Post, error) {
	trimmed := firstNonSpace(raw)
	if trimmed == '[' {
		var docs []postDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return dompost.Post{}, fmt.Errorf("unmarshal post: %w", err)
		}
		if len(docs) == 0 {
			return dompost.Post{}, errEmptyResult
		}
		return docs[0].toDomain(), nil
	}

	var doc postDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dompost.Post{}, fmt.Errorf("unmarshal post: %w", err)
	}
	return doc.toDomain(), nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}
