package domain

import "context"

// CrudRepository is the storage capability for top-level resources of type E
// queried with criteria of type F.
type CrudRepository[E any, F any] interface {
	GetByID(ctx context.Context, id string) (E, error)
	GetAll(ctx context.Context, criteria F) ([]E, error)
	Create(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, id string) error
}

// TextSearcher is the full-text lookup capability.
type TextSearcher[E any] interface {
	Search(ctx context.Context, term string) ([]E, error)
}

// ChildRepository stores resources scoped to a parent resource id.
type ChildRepository[C any] interface {
	GetAllByParentID(ctx context.Context, parentID string) ([]C, error)
	AddToParent(ctx context.Context, parentID string, child C) (C, error)
}
